package handler

import (
	"bytes"
	"fmt"

	"learn-persona/internal/dto"
	"learn-persona/internal/middleware"
	"learn-persona/internal/service"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler serves the L&D analytics panels.
type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(service service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// PersonaDistribution godoc
// @Summary Persona distribution by department
// @Tags dashboard
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} map[string]map[string]int
// @Failure 403 {object} middleware.ErrorResponse
// @Router /dashboard/personas [get]
func (h *DashboardHandler) PersonaDistribution(c *fiber.Ctx) error {
	dist, err := h.service.PersonaDistribution(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dist)
}

// ActivityTrends godoc
// @Summary Daily active users per persona
// @Tags dashboard
// @Security ApiKeyAuth
// @Produce json
// @Param days query int false "Window in days (1-90)" default(7)
// @Success 200 {object} map[string][]int
// @Router /dashboard/trends [get]
func (h *DashboardHandler) ActivityTrends(c *fiber.Ctx) error {
	trends, err := h.service.ActivityTrends(c.UserContext(), validatedInt(c, middleware.ValidatedDaysKey))
	if err != nil {
		return err
	}
	return c.JSON(trends)
}

// RecentActivity godoc
// @Summary Recent course starts and completions
// @Tags dashboard
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Number of items (1-100)" default(20)
// @Success 200 {array} dto.ActivityItemResponse
// @Router /dashboard/activity [get]
func (h *DashboardHandler) RecentActivity(c *fiber.Ctx) error {
	items, err := h.service.RecentActivity(c.UserContext(), validatedInt(c, middleware.ValidatedLimitKey))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewActivityItemResponses(items))
}

// Summary godoc
// @Summary Every dashboard panel in one response
// @Tags dashboard
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Activity items" default(20)
// @Param days query int false "Trend window" default(7)
// @Success 200 {object} dto.DashboardSummaryResponse
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext(),
		validatedInt(c, middleware.ValidatedLimitKey), validatedInt(c, middleware.ValidatedDaysKey))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDashboardSummaryResponse(summary))
}

// Export godoc
// @Summary Download the dashboard as a spreadsheet
// @Tags dashboard
// @Security ApiKeyAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param limit query int false "Activity items" default(20)
// @Param days query int false "Trend window" default(7)
// @Success 200 {file} file
// @Router /dashboard/export [get]
func (h *DashboardHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	err := h.service.ExportWorkbook(c.UserContext(), &buf,
		validatedInt(c, middleware.ValidatedLimitKey), validatedInt(c, middleware.ValidatedDaysKey))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="persona-dashboard-%s.xlsx"`,
		c.Context().Time().UTC().Format("20060102")))
	return c.Send(buf.Bytes())
}

// validatedInt reads a value stored by middleware.ValidateDashboardQuery.
// Zero lets the service apply its default.
func validatedInt(c *fiber.Ctx, key string) int {
	v, _ := c.Locals(key).(int)
	return v
}
