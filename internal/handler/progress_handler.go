package handler

import (
	"learn-persona/internal/dto"
	"learn-persona/internal/middleware"
	"learn-persona/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProgressHandler struct {
	service service.ProgressService
}

func NewProgressHandler(service service.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// StartCourse godoc
// @Summary Start a course
// @Description Creates a progress record at 0%. Starting a course twice returns the existing record.
// @Tags progress
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.StartCourseRequest true "Course to start"
// @Success 201 {object} dto.ProgressResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse "Course not found"
// @Router /progress/start [post]
func (h *ProgressHandler) StartCourse(c *fiber.Ctx) error {
	var req dto.StartCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	progress, err := h.service.StartCourse(c.UserContext(), middleware.CurrentUserID(c), req.CourseID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(progress)
}

// UpdateProgress godoc
// @Summary Update course progress
// @Description Progress is clamped to 0..100. Completing sets progress to 100.
// @Tags progress
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Progress ID"
// @Param request body dto.UpdateProgressRequest true "Fields to change"
// @Success 200 {object} dto.ProgressResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /progress/{id} [put]
func (h *ProgressHandler) UpdateProgress(c *fiber.Ctx) error {
	var req dto.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	progress, err := h.service.UpdateProgress(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(progress)
}

// ListProgress godoc
// @Summary My course progress
// @Tags progress
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.ProgressListResponse
// @Router /progress [get]
func (h *ProgressHandler) ListProgress(c *fiber.Ctx) error {
	list, err := h.service.ListProgress(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}
