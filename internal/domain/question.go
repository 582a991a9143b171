package domain

import (
	"fmt"
	"sort"
	"strings"
)

// AnswerOption is one selectable answer. Choosing it votes for Persona.
type AnswerOption struct {
	Label   string
	Persona Persona
}

// Question is a single quiz question with its ordered options.
type Question struct {
	ID      string
	Prompt  string
	Options []AnswerOption
}

// HasOption reports whether any option of q votes for p.
func (q Question) HasOption(p Persona) bool {
	for _, o := range q.Options {
		if o.Persona == p {
			return true
		}
	}
	return false
}

// QuestionBank is the fixed, ordered list of questions.
type QuestionBank struct {
	Questions []Question
}

// Validate checks the bank itself, not a submission.
func (b *QuestionBank) Validate() error {
	if len(b.Questions) == 0 {
		return fmt.Errorf("question bank is empty")
	}
	seen := make(map[string]struct{}, len(b.Questions))
	for i, q := range b.Questions {
		if strings.TrimSpace(q.ID) == "" {
			return fmt.Errorf("question %d has no id", i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate question id %s", q.ID)
		}
		seen[q.ID] = struct{}{}
		if len(q.Options) == 0 {
			return fmt.Errorf("question %s has no options", q.ID)
		}
		for j, o := range q.Options {
			if !o.Persona.IsValid() {
				return fmt.Errorf("question %s option %d maps to no persona", q.ID, j)
			}
		}
	}
	return nil
}

// Question looks up a question by id.
func (b *QuestionBank) Question(id string) (Question, bool) {
	for _, q := range b.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// ParseSubmission turns raw answers (question id -> persona key) into a typed
// submission. Every question must be answered with one of its own options and
// unknown question ids are rejected. On any failure the submission is nil.
func (b *QuestionBank) ParseSubmission(raw map[string]string) (QuizSubmission, ValidationErrors) {
	var errs ValidationErrors
	sub := make(QuizSubmission, len(b.Questions))

	for _, q := range b.Questions {
		value, ok := raw[q.ID]
		if !ok || strings.TrimSpace(value) == "" {
			errs = append(errs, NewMissingFieldError(q.ID))
			continue
		}
		p, err := ParsePersona(value)
		if err != nil || !q.HasOption(p) {
			errs = append(errs, NewInvalidAnswerError(q.ID, value))
			continue
		}
		sub[q.ID] = p
	}

	var unknown []string
	for id := range raw {
		if _, ok := b.Question(id); !ok {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		errs = append(errs, NewValidationError(id, CodeUnknownQuestion, fmt.Sprintf("unknown question %s", id)))
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return sub, nil
}
