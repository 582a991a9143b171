package domain

import (
	"context"
	"strings"
	"time"
)

// Course is an external learning resource suited to some personas.
type Course struct {
	ID               string
	Title            string
	Description      string
	URL              string
	ImageURL         string
	Provider         string
	Tags             []string
	SuitablePersonas []Persona
	Difficulty       string
	Duration         string
	CreatedAt        time.Time
}

// NewCourse creates a new Course instance
func NewCourse(title, description, url, provider string) *Course {
	return &Course{
		Title:       title,
		Description: description,
		URL:         url,
		Provider:    provider,
		CreatedAt:   time.Now(),
	}
}

// Validate validates the course
func (c *Course) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, NewMissingFieldError("title"))
	}
	if strings.TrimSpace(c.URL) == "" {
		errs = append(errs, NewMissingFieldError("url"))
	}
	if len(c.SuitablePersonas) == 0 {
		errs = append(errs, NewMissingFieldError("suitable_personas"))
	}
	for _, p := range c.SuitablePersonas {
		if !p.IsValid() {
			errs = append(errs, NewInvalidFormatError("suitable_personas", p))
			break
		}
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

func (c *Course) SuitableFor(p Persona) bool {
	return containsPersona(c.SuitablePersonas, p)
}

// HasAnyTag matches case-insensitively. An empty filter matches everything.
func (c *Course) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, want := range tags {
		for _, have := range c.Tags {
			if strings.EqualFold(strings.TrimSpace(want), have) {
				return true
			}
		}
	}
	return false
}

// LearningStrategy is a study technique recommended to some personas.
type LearningStrategy struct {
	ID               string
	Title            string
	Description      string
	Content          string
	SuitablePersonas []Persona
	Type             string
	CreatedAt        time.Time
}

// Validate validates the strategy
func (s *LearningStrategy) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(s.Title) == "" {
		errs = append(errs, NewMissingFieldError("title"))
	}
	if strings.TrimSpace(s.Content) == "" {
		errs = append(errs, NewMissingFieldError("content"))
	}
	if len(s.SuitablePersonas) == 0 {
		errs = append(errs, NewMissingFieldError("suitable_personas"))
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

func (s *LearningStrategy) SuitableFor(p Persona) bool {
	return containsPersona(s.SuitablePersonas, p)
}

func containsPersona(list []Persona, p Persona) bool {
	for _, candidate := range list {
		if candidate == p {
			return true
		}
	}
	return false
}

// CourseRepository defines the interface for course persistence
type CourseRepository interface {
	CreateCourse(ctx context.Context, course *Course) error
	GetCourseByID(ctx context.Context, id string) (*Course, error)
	GetCourseByTitle(ctx context.Context, title string) (*Course, error)
	ListCourses(ctx context.Context) ([]*Course, error)
	ListCoursesByPersona(ctx context.Context, p Persona) ([]*Course, error)
}

// StrategyRepository defines the interface for learning strategy persistence
type StrategyRepository interface {
	CreateStrategy(ctx context.Context, strategy *LearningStrategy) error
	GetStrategyByID(ctx context.Context, id string) (*LearningStrategy, error)
	GetStrategyByTitle(ctx context.Context, title string) (*LearningStrategy, error)
	ListStrategies(ctx context.Context) ([]*LearningStrategy, error)
	ListStrategiesByPersona(ctx context.Context, p Persona) ([]*LearningStrategy, error)
}
