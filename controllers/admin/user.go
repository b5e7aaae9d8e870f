package adminController

import (
	"coursemaster/middleware"
	"coursemaster/services"
	"coursemaster/utils"
	"coursemaster/validators"
	userValidator "coursemaster/validators/user"

	"github.com/gofiber/fiber/v2"
)

func (ctl *AdminController) ListUsers(c *fiber.Ctx) error {
	filter := c.Locals("validatedUserFilter").(services.UserFilter)
	p := utils.GetPagination(c, reportPageSize)

	users, total, err := ctl.users.List(c.UserContext(), filter, p)
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Users fetched successfully.", users, p.Meta(total))
}

func (ctl *AdminController) UserDetails(c *fiber.Ctx) error {
	details, err := ctl.users.Details(c.UserContext(), validators.ID(c, "userId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully.", details)
}

func (ctl *AdminController) CreateUser(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*services.UserInput)
	user, err := ctl.users.Create(c.UserContext(), *reqData)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created successfully.", user)
}

func (ctl *AdminController) UpdateUser(c *fiber.Ctx) error {
	adminID, _ := middleware.Caller(c)
	reqData := c.Locals("validatedUser").(*services.UserInput)

	user, err := ctl.users.Update(c.UserContext(), adminID, validators.ID(c, "userId"), *reqData)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully.", user)
}

func (ctl *AdminController) DeleteUser(c *fiber.Ctx) error {
	adminID, _ := middleware.Caller(c)
	if err := ctl.users.Delete(c.UserContext(), adminID, validators.ID(c, "userId")); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully.", nil)
}

func (ctl *AdminController) ResetPassword(c *fiber.Ctx) error {
	reqData := c.Locals("validatedResetPassword").(*userValidator.ResetPasswordRequest)
	if err := ctl.users.ResetPassword(c.UserContext(), validators.ID(c, "userId"), reqData.Password); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password reset successfully.", nil)
}
