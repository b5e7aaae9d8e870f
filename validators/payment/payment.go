package paymentValidator

import (
	"coursemaster/middleware"
	"coursemaster/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type SessionRequest struct {
	CourseID uint `json:"course_id" validate:"required,min=1"`
}

// ValidateRequest is the redirect-back query. Gateways name the transaction id differently.
type ValidateRequest struct {
	TransactionID string
	Params        map[string]string
}

func CreateSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SessionRequest)
		ok, err := validators.ParseBody(c, reqData, nil)
		if !ok {
			return err
		}
		c.Locals("validatedSession", reqData)
		return c.Next()
	}
}

func Validate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := c.Queries()
		reqData := &ValidateRequest{Params: params}
		for _, key := range []string{"transaction_id", "tran_id", "order_id"} {
			if v := strings.TrimSpace(params[key]); v != "" {
				reqData.TransactionID = v
				break
			}
		}
		if reqData.TransactionID == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"transaction_id": "transaction_id is required!"})
		}
		c.Locals("validatedPaymentValidate", reqData)
		return c.Next()
	}
}
