package catalogController

import (
	"coursemaster/middleware"
	"coursemaster/services"
	"coursemaster/utils"
	"coursemaster/validators"

	"github.com/gofiber/fiber/v2"
)

const catalogPageSize = 12

type CatalogController struct {
	courses *services.CourseService
}

func NewCatalogController(courses *services.CourseService) *CatalogController {
	return &CatalogController{courses: courses}
}

func (ctl *CatalogController) List(c *fiber.Ctx) error {
	filter := c.Locals("validatedCatalogFilter").(services.CatalogFilter)
	p := utils.GetPagination(c, catalogPageSize)

	courses, total, err := ctl.courses.List(c.UserContext(), filter, p)
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Courses fetched successfully.", courses, p.Meta(total))
}

func (ctl *CatalogController) Detail(c *fiber.Ctx) error {
	course, err := ctl.courses.Detail(c.UserContext(), validators.ID(c, "courseId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", course)
}
