package middleware

import (
	"learn-persona/internal/service"
	"learn-persona/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Locals keys written by ValidationMiddleware.
const (
	ValidatedLimitKey = "validated_limit"
	ValidatedDaysKey  = "validated_days"
	ValidatedTagsKey  = "validated_tags"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateIDParam rejects a path parameter that is not a ULID.
func (vm *ValidationMiddleware) ValidateIDParam(param, field string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if errs := vm.validator.ValidateID(field, c.Params(param)); errs.HasErrors() {
			return errs // This will be handled by ErrorHandler middleware
		}
		return c.Next()
	}
}

// ValidateDashboardQuery parses the optional limit and days query parameters.
func (vm *ValidationMiddleware) ValidateDashboardQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, errs := vm.validator.ValidatePositiveInt("limit", c.Query("limit"),
			service.DefaultActivityLimit, service.MaxActivityLimit)
		days, dayErrs := vm.validator.ValidatePositiveInt("days", c.Query("days"),
			service.DefaultTrendDays, service.MaxTrendDays)
		errs = append(errs, dayErrs...)
		if errs.HasErrors() {
			return errs
		}

		c.Locals(ValidatedLimitKey, limit)
		c.Locals(ValidatedDaysKey, days)
		return c.Next()
	}
}

// ValidateTagsQuery parses the optional comma separated tags filter.
func (vm *ValidationMiddleware) ValidateTagsQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tags, errs := vm.validator.ValidateTags(c.Query("tags"))
		if errs.HasErrors() {
			return errs
		}
		c.Locals(ValidatedTagsKey, tags)
		return c.Next()
	}
}
