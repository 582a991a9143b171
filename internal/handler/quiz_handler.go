package handler

import (
	"learn-persona/internal/dto"
	"learn-persona/internal/middleware"
	"learn-persona/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service: service,
	}
}

// GetQuestions godoc
// @Summary Get the persona quiz
// @Description Returns every question in display order. All of them must be answered.
// @Tags quiz
// @Produce json
// @Success 200 {object} dto.QuizQuestionsResponse
// @Router /quiz/questions [get]
func (h *QuizHandler) GetQuestions(c *fiber.Ctx) error {
	return c.JSON(h.service.GetQuestions())
}

// SubmitQuiz godoc
// @Summary Submit quiz answers
// @Description Classifies the answers and stores the resulting persona on the user.
// @Tags quiz
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.QuizSubmitRequest true "Question id to persona key"
// @Success 200 {object} dto.QuizResultResponse
// @Failure 400 {object} middleware.ErrorResponse "Please answer all questions"
// @Failure 401 {object} middleware.ErrorResponse
// @Router /quiz/submit [post]
func (h *QuizHandler) SubmitQuiz(c *fiber.Ctx) error {
	var req dto.QuizSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	result, err := h.service.SubmitQuiz(c.UserContext(), middleware.CurrentUserID(c), req.Answers)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetHistory godoc
// @Summary Quiz history
// @Tags quiz
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.QuizHistoryResponse
// @Router /quiz/history [get]
func (h *QuizHandler) GetHistory(c *fiber.Ctx) error {
	history, err := h.service.GetHistory(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(history)
}

// GetLatest godoc
// @Summary Latest quiz result
// @Tags quiz
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.QuizResultResponse
// @Failure 404 {object} middleware.ErrorResponse "No quiz result found"
// @Router /quiz/latest [get]
func (h *QuizHandler) GetLatest(c *fiber.Ctx) error {
	latest, err := h.service.GetLatest(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(latest)
}
