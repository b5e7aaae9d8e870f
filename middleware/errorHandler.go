package middleware

import (
	"coursemaster/apperr"
	"coursemaster/logger"
	"errors"

	"github.com/gofiber/fiber/v2"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:   fiber.StatusUnprocessableEntity,
	apperr.KindBadRequest:   fiber.StatusBadRequest,
	apperr.KindUnauthorized: fiber.StatusUnauthorized,
	apperr.KindForbidden:    fiber.StatusForbidden,
	apperr.KindNotFound:     fiber.StatusNotFound,
	apperr.KindConflict:     fiber.StatusConflict,
	apperr.KindUpstream:     fiber.StatusBadGateway,
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind apperr.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler writes every error returned by a handler as the JSON envelope
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return JsonResponse(c, fe.Code, false, fe.Message, nil)
		}

		appErr, ok := apperr.As(err)
		if !ok {
			log.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
		}

		switch appErr.Kind {
		case apperr.KindValidation:
			return ValidationErrorResponse(c, appErr.Fields)
		case apperr.KindUpstream:
			log.Warn("upstream failure", "path", c.Path(), "error", err)
		}
		return JsonResponse(c, StatusFor(appErr.Kind), false, appErr.Message, nil)
	}
}
