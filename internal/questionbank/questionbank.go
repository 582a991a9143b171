// Package questionbank loads the persona quiz questions.
package questionbank

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"learn-persona/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var embeddedQuestions []byte

type bankFile struct {
	Questions []questionEntry `yaml:"questions"`
}

type questionEntry struct {
	ID      string        `yaml:"id"`
	Prompt  string        `yaml:"prompt"`
	Options []optionEntry `yaml:"options"`
}

type optionEntry struct {
	Persona string `yaml:"persona"`
	Label   string `yaml:"label"`
}

var (
	defaultOnce sync.Once
	defaultBank *domain.QuestionBank
	defaultErr  error
)

// Default returns the embedded bank, decoded once.
func Default() (*domain.QuestionBank, error) {
	defaultOnce.Do(func() {
		defaultBank, defaultErr = Parse(embeddedQuestions)
	})
	return defaultBank, defaultErr
}

// Load returns the bank at path, or the embedded one when path is empty.
func Load(path string) (*domain.QuestionBank, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open question bank %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes and validates a bank from r.
func Read(r io.Reader) (*domain.QuestionBank, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML into a validated bank. Option personas must be persona keys.
func Parse(data []byte) (*domain.QuestionBank, error) {
	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode question bank: %w", err)
	}

	bank := &domain.QuestionBank{Questions: make([]domain.Question, 0, len(file.Questions))}
	for _, q := range file.Questions {
		question := domain.Question{ID: q.ID, Prompt: q.Prompt}
		for _, o := range q.Options {
			p, err := domain.ParsePersona(o.Persona)
			if err != nil {
				return nil, fmt.Errorf("question %s: %w", q.ID, err)
			}
			question.Options = append(question.Options, domain.AnswerOption{Label: o.Label, Persona: p})
		}
		bank.Questions = append(bank.Questions, question)
	}

	if err := bank.Validate(); err != nil {
		return nil, err
	}
	return bank, nil
}
