package dto

import "time"

// PersonaResponse describes one persona.
// @Description Learning persona with study tips
type PersonaResponse struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Strategies  []string `json:"strategies"`
}

type AnswerOptionResponse struct {
	Label   string `json:"label"`
	Persona string `json:"persona"`
}

// QuestionResponse is one quiz question with its options in display order.
type QuestionResponse struct {
	ID      string                 `json:"id"`
	Prompt  string                 `json:"prompt"`
	Options []AnswerOptionResponse `json:"options"`
}

// QuizQuestionsResponse lists every question a submission must answer.
type QuizQuestionsResponse struct {
	Questions []QuestionResponse `json:"questions"`
	Total     int                `json:"total"`
}

// QuizSubmitRequest maps question id to the selected persona key.
// @Description Request body for submitting the persona quiz
type QuizSubmitRequest struct {
	Answers map[string]string `json:"answers"`
}

// QuizResultResponse is the outcome of one submission.
// @Description Persona classification result
type QuizResultResponse struct {
	ID          string         `json:"id"`
	Persona     string         `json:"persona"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Strategies  []string       `json:"strategies"`
	Scores      map[string]int `json:"scores"`
	CompletedAt time.Time      `json:"completed_at"`
}

// QuizHistoryResponse lists a user's submissions, newest first.
type QuizHistoryResponse struct {
	Results []QuizResultResponse `json:"results"`
}
