package domain

import "time"

// QuizSubmission maps a question ID to the persona implied by the chosen option.
// It is only built by QuestionBank.ParseSubmission, which guarantees one entry
// per question of the bank.
type QuizSubmission map[string]Persona

// PersonaScores holds how many answers pointed at each persona.
type PersonaScores map[Persona]int

// PersonaResult is the outcome of classifying one submission.
type PersonaResult struct {
	Persona    Persona
	Scores     PersonaScores
	ComputedAt time.Time
}

// Classifier picks the dominant persona of a submission. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	now func() time.Time
}

// NewClassifier returns a Classifier stamping results with the current UTC time.
func NewClassifier() *Classifier {
	return &Classifier{now: func() time.Time { return time.Now().UTC() }}
}

// NewClassifierWithClock is used by tests that need a fixed timestamp.
func NewClassifierWithClock(now func() time.Time) *Classifier {
	return &Classifier{now: now}
}

// Classify counts answers per persona and returns the one with the highest
// count. Ties go to the persona declared first; an empty submission yields
// PersonaExplorer. Input is assumed to be validated.
func (c *Classifier) Classify(sub QuizSubmission) PersonaResult {
	var counts [personaCount]int
	for _, p := range sub {
		if !p.IsValid() {
			continue
		}
		counts[p.index()]++
	}

	winner := orderedPersonas[0]
	best := counts[0]
	for i := 1; i < personaCount; i++ {
		if counts[i] > best {
			best = counts[i]
			winner = orderedPersonas[i]
		}
	}

	scores := make(PersonaScores, personaCount)
	for i, p := range orderedPersonas {
		scores[p] = counts[i]
	}

	return PersonaResult{
		Persona:    winner,
		Scores:     scores,
		ComputedAt: c.now(),
	}
}

var defaultClassifier = NewClassifier()

// Classify runs the package default classifier.
func Classify(sub QuizSubmission) PersonaResult {
	return defaultClassifier.Classify(sub)
}
