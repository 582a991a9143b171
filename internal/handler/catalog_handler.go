package handler

import (
	"learn-persona/internal/middleware"
	"learn-persona/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves courses and learning strategies.
type CatalogHandler struct {
	service service.RecommendationService
}

func NewCatalogHandler(service service.RecommendationService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListCourses godoc
// @Summary List courses
// @Tags courses
// @Produce json
// @Param tags query string false "Comma separated tags, any match"
// @Success 200 {array} dto.CourseResponse
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *fiber.Ctx) error {
	tags, _ := c.Locals(middleware.ValidatedTagsKey).([]string)
	courses, err := h.service.ListCourses(c.UserContext(), tags)
	if err != nil {
		return err
	}
	return c.JSON(courses)
}

// GetCourse godoc
// @Summary Get a course
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} dto.CourseResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /courses/{id} [get]
func (h *CatalogHandler) GetCourse(c *fiber.Ctx) error {
	course, err := h.service.GetCourse(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(course)
}

// CoursesByPersona godoc
// @Summary Courses for a persona
// @Tags courses
// @Security ApiKeyAuth
// @Produce json
// @Param persona path string true "Persona key"
// @Success 200 {array} dto.CourseResponse
// @Failure 400 {object} middleware.ErrorResponse "Unknown persona"
// @Router /courses/persona/{persona} [get]
func (h *CatalogHandler) CoursesByPersona(c *fiber.Ctx) error {
	courses, err := h.service.CoursesByPersona(c.UserContext(), c.Params("persona"))
	if err != nil {
		return err
	}
	return c.JSON(courses)
}

// RecommendedCourses godoc
// @Summary Courses for my persona
// @Tags courses
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} dto.CourseResponse
// @Failure 400 {object} middleware.ErrorResponse "User has no persona defined"
// @Router /courses/recommended [get]
func (h *CatalogHandler) RecommendedCourses(c *fiber.Ctx) error {
	rec, err := h.service.Recommended(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(rec.Courses)
}

// ListStrategies godoc
// @Summary List learning strategies
// @Tags strategies
// @Produce json
// @Success 200 {array} dto.StrategyResponse
// @Router /strategies [get]
func (h *CatalogHandler) ListStrategies(c *fiber.Ctx) error {
	strategies, err := h.service.ListStrategies(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(strategies)
}

// GetStrategy godoc
// @Summary Get a learning strategy
// @Tags strategies
// @Produce json
// @Param id path string true "Strategy ID"
// @Success 200 {object} dto.StrategyResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /strategies/{id} [get]
func (h *CatalogHandler) GetStrategy(c *fiber.Ctx) error {
	strategy, err := h.service.GetStrategy(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(strategy)
}

// StrategiesByPersona godoc
// @Summary Strategies for a persona
// @Tags strategies
// @Security ApiKeyAuth
// @Produce json
// @Param persona path string true "Persona key"
// @Success 200 {array} dto.StrategyResponse
// @Router /strategies/persona/{persona} [get]
func (h *CatalogHandler) StrategiesByPersona(c *fiber.Ctx) error {
	strategies, err := h.service.StrategiesByPersona(c.UserContext(), c.Params("persona"))
	if err != nil {
		return err
	}
	return c.JSON(strategies)
}

// RecommendedStrategies godoc
// @Summary Strategies for my persona
// @Tags strategies
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} dto.StrategyResponse
// @Failure 400 {object} middleware.ErrorResponse "User has no persona defined"
// @Router /strategies/recommended [get]
func (h *CatalogHandler) RecommendedStrategies(c *fiber.Ctx) error {
	rec, err := h.service.Recommended(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(rec.Strategies)
}

// Recommendations godoc
// @Summary Courses and strategies for my persona
// @Tags courses
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.RecommendationResponse
// @Router /recommendations [get]
func (h *CatalogHandler) Recommendations(c *fiber.Ctx) error {
	rec, err := h.service.Recommended(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(rec)
}
