package courseValidator

import (
	"coursemaster/middleware"
	"coursemaster/services"
	"coursemaster/validators"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var catalogSorts = map[string]bool{"": true, "newest": true, "price_asc": true, "price_desc": true}

// CatalogQuery validates the public catalog filters
func CatalogQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		errors := make(map[string]string)
		filter := services.CatalogFilter{
			Search:   strings.TrimSpace(c.Query("search")),
			Category: strings.TrimSpace(c.Query("category")),
			Sort:     strings.TrimSpace(c.Query("sort")),
		}

		parsePrice := func(key string) *float64 {
			raw := strings.TrimSpace(c.Query(key))
			if raw == "" {
				return nil
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 {
				errors[key] = "Price must be a non-negative number!"
				return nil
			}
			return &v
		}
		filter.MinPrice = parsePrice("min_price")
		filter.MaxPrice = parsePrice("max_price")

		if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
			errors["max_price"] = "Max price must not be lower than min price!"
		}
		if !catalogSorts[filter.Sort] {
			errors["sort"] = "Sort must be one of: newest, price_asc, price_desc!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCatalogFilter", filter)
		return c.Next()
	}
}

// Course validates the admin create and update body
func Course() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.CourseInput)
		ok, err := validators.ParseBody(c, reqData, func() {
			reqData.Title = strings.TrimSpace(reqData.Title)
			reqData.Description = strings.TrimSpace(reqData.Description)
			reqData.Category = strings.TrimSpace(reqData.Category)
			reqData.Currency = strings.TrimSpace(reqData.Currency)
			for i := range reqData.Lessons {
				reqData.Lessons[i].Title = strings.TrimSpace(reqData.Lessons[i].Title)
				reqData.Lessons[i].VideoURL = strings.TrimSpace(reqData.Lessons[i].VideoURL)
			}
			for i := range reqData.Batches {
				reqData.Batches[i].Name = strings.TrimSpace(reqData.Batches[i].Name)
			}
		})
		if !ok {
			return err
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// Batch validates a batch create or update body
func Batch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.BatchInput)
		ok, err := validators.ParseBody(c, reqData, func() {
			reqData.Name = strings.TrimSpace(reqData.Name)
		})
		if !ok {
			return err
		}

		c.Locals("validatedBatch", reqData)
		return c.Next()
	}
}
