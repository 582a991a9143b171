package dto

import "time"

// CourseResponse represents a course in the API response
// @Description Course information
type CourseResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	URL              string    `json:"url"`
	ImageURL         string    `json:"image_url,omitempty"`
	Provider         string    `json:"provider,omitempty"`
	Tags             []string  `json:"tags"`
	SuitablePersonas []string  `json:"suitable_personas"`
	Difficulty       string    `json:"difficulty,omitempty"`
	Duration         string    `json:"duration,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// StrategyResponse represents a learning strategy in the API response
type StrategyResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Content          string    `json:"content"`
	SuitablePersonas []string  `json:"suitable_personas"`
	Type             string    `json:"type,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// RecommendationResponse bundles everything suggested for a persona.
// @Description Courses and strategies recommended for the user's persona
type RecommendationResponse struct {
	Persona    string             `json:"persona"`
	Label      string             `json:"label"`
	Courses    []CourseResponse   `json:"courses"`
	Strategies []StrategyResponse `json:"strategies"`
}
