package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"learn-persona/internal/domain"
	"learn-persona/internal/logger"

	"go.uber.org/zap"
)

// DefaultSeedFile is relative to the repository root.
const DefaultSeedFile = "configs/seed_data/catalog.json"

// SeedCourse defines the structure for a course item in the JSON seed file.
type SeedCourse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	ImageURL    string   `json:"image_url"`
	Provider    string   `json:"provider"`
	Tags        []string `json:"tags"`
	Personas    []string `json:"personas"`
	Difficulty  string   `json:"difficulty"`
	Duration    string   `json:"duration"`
}

// SeedStrategy defines the structure for a learning strategy in the JSON seed file.
type SeedStrategy struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Personas    []string `json:"personas"`
	Type        string   `json:"type"`
}

type SeedData struct {
	Courses    []SeedCourse   `json:"courses"`
	Strategies []SeedStrategy `json:"strategies"`
}

// LoadSeedFile reads and decodes a catalog seed file.
func LoadSeedFile(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed file %s: %w", path, err)
	}
	return &data, nil
}

// Result counts what a seed or import run did.
type Result struct {
	Created int
	Skipped int
}

// Seeder writes catalog entries, skipping titles that already exist.
type Seeder struct {
	courses    domain.CourseRepository
	strategies domain.StrategyRepository
	txManager  domain.TransactionManager
}

func NewSeeder(courses domain.CourseRepository, strategies domain.StrategyRepository, txManager domain.TransactionManager) *Seeder {
	return &Seeder{courses: courses, strategies: strategies, txManager: txManager}
}

// Seed stores every course and strategy of data in one transaction. Nothing is
// written when any entry is invalid.
func (s *Seeder) Seed(ctx context.Context, data *SeedData) (courses Result, strategies Result, err error) {
	parsedCourses := make([]*domain.Course, 0, len(data.Courses))
	for i, sc := range data.Courses {
		c, err := sc.toDomain()
		if err != nil {
			return Result{}, Result{}, fmt.Errorf("course %d (%q): %w", i+1, sc.Title, err)
		}
		parsedCourses = append(parsedCourses, c)
	}
	parsedStrategies := make([]*domain.LearningStrategy, 0, len(data.Strategies))
	for i, ss := range data.Strategies {
		st, err := ss.toDomain()
		if err != nil {
			return Result{}, Result{}, fmt.Errorf("strategy %d (%q): %w", i+1, ss.Title, err)
		}
		parsedStrategies = append(parsedStrategies, st)
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var txErr error
		if courses, txErr = s.saveCourses(ctx, parsedCourses); txErr != nil {
			return txErr
		}
		strategies, txErr = s.saveStrategies(ctx, parsedStrategies)
		return txErr
	})
	if err != nil {
		return Result{}, Result{}, err
	}
	return courses, strategies, nil
}

// ImportCourses stores already-parsed courses in one transaction.
func (s *Seeder) ImportCourses(ctx context.Context, courses []*domain.Course) (Result, error) {
	var res Result
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var txErr error
		res, txErr = s.saveCourses(ctx, courses)
		return txErr
	})
	return res, err
}

func (s *Seeder) saveCourses(ctx context.Context, courses []*domain.Course) (Result, error) {
	log := logger.Get()
	var res Result
	for _, c := range courses {
		existing, err := s.courses.GetCourseByTitle(ctx, c.Title)
		if err != nil {
			return res, fmt.Errorf("error checking course %q: %w", c.Title, err)
		}
		if existing != nil {
			log.Info("Course exists, skipping", zap.String("title", c.Title), zap.String("id", existing.ID))
			res.Skipped++
			continue
		}
		if err := s.courses.CreateCourse(ctx, c); err != nil {
			return res, fmt.Errorf("failed to save course %q: %w", c.Title, err)
		}
		log.Info("Created course", zap.String("title", c.Title), zap.String("id", c.ID))
		res.Created++
	}
	return res, nil
}

func (s *Seeder) saveStrategies(ctx context.Context, strategies []*domain.LearningStrategy) (Result, error) {
	log := logger.Get()
	var res Result
	for _, st := range strategies {
		existing, err := s.strategies.GetStrategyByTitle(ctx, st.Title)
		if err != nil {
			return res, fmt.Errorf("error checking strategy %q: %w", st.Title, err)
		}
		if existing != nil {
			log.Info("Strategy exists, skipping", zap.String("title", st.Title))
			res.Skipped++
			continue
		}
		if err := s.strategies.CreateStrategy(ctx, st); err != nil {
			return res, fmt.Errorf("failed to save strategy %q: %w", st.Title, err)
		}
		res.Created++
	}
	return res, nil
}

func parsePersonas(values []string) ([]domain.Persona, error) {
	out := make([]domain.Persona, 0, len(values))
	for _, v := range values {
		p, err := domain.ParsePersona(v)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (sc SeedCourse) toDomain() (*domain.Course, error) {
	personas, err := parsePersonas(sc.Personas)
	if err != nil {
		return nil, err
	}
	c := &domain.Course{
		Title:            strings.TrimSpace(sc.Title),
		Description:      sc.Description,
		URL:              strings.TrimSpace(sc.URL),
		ImageURL:         sc.ImageURL,
		Provider:         sc.Provider,
		Tags:             sc.Tags,
		SuitablePersonas: personas,
		Difficulty:       sc.Difficulty,
		Duration:         sc.Duration,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (ss SeedStrategy) toDomain() (*domain.LearningStrategy, error) {
	personas, err := parsePersonas(ss.Personas)
	if err != nil {
		return nil, err
	}
	st := &domain.LearningStrategy{
		Title:            strings.TrimSpace(ss.Title),
		Description:      ss.Description,
		Content:          ss.Content,
		SuitablePersonas: personas,
		Type:             ss.Type,
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}
