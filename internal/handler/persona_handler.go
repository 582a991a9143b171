package handler

import (
	"learn-persona/internal/domain"
	"learn-persona/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// PersonaHandler serves the static persona catalog.
type PersonaHandler struct{}

func NewPersonaHandler() *PersonaHandler {
	return &PersonaHandler{}
}

// ListPersonas godoc
// @Summary List personas
// @Description Returns the five learning personas in declaration order.
// @Tags personas
// @Produce json
// @Success 200 {array} dto.PersonaResponse
// @Router /personas [get]
func (h *PersonaHandler) ListPersonas(c *fiber.Ctx) error {
	personas := domain.AllPersonas()
	out := make([]dto.PersonaResponse, 0, len(personas))
	for _, p := range personas {
		out = append(out, dto.NewPersonaResponse(p))
	}
	return c.JSON(out)
}

// GetPersona godoc
// @Summary Get a persona
// @Description Accepts the persona key or its label.
// @Tags personas
// @Produce json
// @Param persona path string true "Persona key, e.g. explorer"
// @Success 200 {object} dto.PersonaResponse
// @Failure 400 {object} middleware.ErrorResponse "Unknown persona"
// @Router /personas/{persona} [get]
func (h *PersonaHandler) GetPersona(c *fiber.Ctx) error {
	raw := c.Params("persona")
	p, err := domain.ParsePersona(raw)
	if err != nil {
		return domain.NewInvalidPersonaError(raw)
	}
	return c.JSON(dto.NewPersonaResponse(p))
}
