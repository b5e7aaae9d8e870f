package batchController

import (
	"coursemaster/middleware"
	"coursemaster/services"
	"coursemaster/validators"

	"github.com/gofiber/fiber/v2"
)

type BatchController struct {
	batches *services.BatchService
}

func NewBatchController(batches *services.BatchService) *BatchController {
	return &BatchController{batches: batches}
}

func (ctl *BatchController) Create(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	reqData := c.Locals("validatedBatch").(*services.BatchInput)
	batch, err := ctl.batches.Create(c.UserContext(), userID, role, validators.ID(c, "courseId"), *reqData)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Batch created successfully.", batch)
}

func (ctl *BatchController) List(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	batches, err := ctl.batches.List(c.UserContext(), userID, role, validators.ID(c, "courseId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batches fetched successfully.", batches)
}

func (ctl *BatchController) Update(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	reqData := c.Locals("validatedBatch").(*services.BatchInput)
	batch, err := ctl.batches.Update(c.UserContext(), userID, role, validators.ID(c, "courseId"), validators.ID(c, "batchId"), *reqData)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch updated successfully.", batch)
}

func (ctl *BatchController) Delete(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	if err := ctl.batches.Delete(c.UserContext(), userID, role, validators.ID(c, "courseId"), validators.ID(c, "batchId")); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch deleted successfully.", nil)
}

func (ctl *BatchController) Students(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	students, err := ctl.batches.Students(c.UserContext(), userID, role, validators.ID(c, "courseId"), validators.ID(c, "batchId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch students fetched successfully.", students)
}
