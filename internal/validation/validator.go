package validation

import (
	"strconv"
	"strings"

	"learn-persona/internal/domain"
	"learn-persona/internal/util"
)

const (
	MaxTagCount  = 10
	MaxTagLength = 50
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateID checks that value is a ULID as issued by the repositories.
func (v *Validator) ValidateID(field, value string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(value) == "" {
		errors = append(errors, domain.NewMissingFieldError(field))
	} else if !util.IsULID(value) {
		errors = append(errors, domain.NewInvalidFormatError(field, value))
	}
	return errors
}

// ValidatePositiveInt parses an optional query value. Empty yields def; anything
// outside 1..max is rejected.
func (v *Validator) ValidatePositiveInt(field, raw string, def, max int) (int, domain.ValidationErrors) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ValidationErrors{domain.NewInvalidFormatError(field, raw)}
	}
	if n < 1 || n > max {
		return 0, domain.ValidationErrors{domain.NewOutOfRangeError(field, n, 1, max)}
	}
	return n, nil
}

// ValidateTags splits a comma separated tag filter.
func (v *Validator) ValidateTags(raw string) ([]string, domain.ValidationErrors) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if len(t) > MaxTagLength {
			return nil, domain.ValidationErrors{domain.NewOutOfRangeError("tags", len(t), 1, MaxTagLength)}
		}
		tags = append(tags, t)
	}
	if len(tags) > MaxTagCount {
		return nil, domain.ValidationErrors{domain.NewOutOfRangeError("tags", len(tags), 1, MaxTagCount)}
	}
	return tags, nil
}

// ValidateProgressValue checks the optional percentage of a progress update.
func (v *Validator) ValidateProgressValue(progress *int) domain.ValidationErrors {
	if progress == nil {
		return nil
	}
	if *progress < domain.MinProgress || *progress > domain.MaxProgress {
		return domain.ValidationErrors{domain.NewOutOfRangeError("progress", *progress, domain.MinProgress, domain.MaxProgress)}
	}
	return nil
}
