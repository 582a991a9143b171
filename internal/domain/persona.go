package domain

import (
	"fmt"
	"strings"
)

// Persona is a learning persona. The set is closed and its declaration order
// is significant: it breaks ties when classifying a quiz submission.
type Persona int

const (
	// PersonaUnset is the zero value, used for users that have not taken the quiz.
	PersonaUnset Persona = iota
	PersonaExplorer
	PersonaConnector
	PersonaSynthesizer
	PersonaThinker
	PersonaCreator
)

// personaCount is the number of real personas (PersonaUnset excluded).
const personaCount = 5

var orderedPersonas = [personaCount]Persona{
	PersonaExplorer,
	PersonaConnector,
	PersonaSynthesizer,
	PersonaThinker,
	PersonaCreator,
}

type personaInfo struct {
	key         string
	label       string
	description string
	strategies  []string
}

var personaCatalog = map[Persona]personaInfo{
	PersonaExplorer: {
		key:   "explorer",
		label: "The Explorer",
		description: "Explorers are curious and adventurous learners who thrive on discovering new concepts and ideas. " +
			"They enjoy variety and learn best when they can explore multiple resources and follow their interests where they lead.",
		strategies: []string{
			"Use varied learning resources (videos, books, podcasts) to keep engagement high",
			"Set up learning challenges that take you outside your comfort zone",
			"Allow time for 'learning detours' to explore interesting tangents",
			"Join communities where you can discover new ideas and perspectives",
			"Create a flexible learning schedule with variety built in",
		},
	},
	PersonaConnector: {
		key:   "connector",
		label: "The Connector",
		description: "Connectors are social learners who thrive on interaction and collaboration. " +
			"They learn best through discussion, teaching others, and collaborative projects.",
		strategies: []string{
			"Form or join study groups for collaborative learning",
			"Teach concepts to others to solidify your understanding",
			"Engage in discussions and debates about what you're learning",
			"Seek mentorship and be open to mentoring others",
			"Use social learning platforms and community-based resources",
		},
	},
	PersonaSynthesizer: {
		key:   "synthesizer",
		label: "The Synthesizer",
		description: "Synthesizers excel at seeing the big picture and identifying patterns across different domains. " +
			"They learn best when they can relate new information to what they already know.",
		strategies: []string{
			"Create mind maps or concept maps to visualize connections",
			"Look for interdisciplinary approaches to subjects",
			"Keep a learning journal to track insights and connections",
			"Ask 'how does this relate to X?' when learning something new",
			"Review and reorganize your knowledge periodically to strengthen connections",
		},
	},
	PersonaThinker: {
		key:   "thinker",
		label: "The Thinker",
		description: "Thinkers are analytical and methodical learners who value depth of understanding. " +
			"They learn best with clear, logical explanations and time to reflect on new information.",
		strategies: []string{
			"Allocate uninterrupted time for deep focused learning",
			"Develop hierarchical note-taking systems",
			"Question assumptions and look for evidence",
			"Master fundamentals before moving to advanced topics",
			"Explain complex topics in your own words to ensure understanding",
		},
	},
	PersonaCreator: {
		key:   "creator",
		label: "The Creator",
		description: "Creators are hands-on learners who learn by doing and making. " +
			"They prefer practical applications over theory and want to see tangible results from their learning.",
		strategies: []string{
			"Choose project-based learning opportunities",
			"Set up practical applications for theoretical knowledge",
			"Break learning into actionable experiments",
			"Build portfolios or tangible outputs from your learning",
			"Seek immediate opportunities to apply new skills",
		},
	},
}

// AllPersonas returns every persona in declaration order.
func AllPersonas() []Persona {
	out := make([]Persona, personaCount)
	copy(out, orderedPersonas[:])
	return out
}

// ParsePersona accepts either the key ("explorer") or the label ("The Explorer"),
// case-insensitively.
func ParsePersona(s string) (Persona, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, p := range orderedPersonas {
		info := personaCatalog[p]
		if needle == info.key || needle == strings.ToLower(info.label) {
			return p, nil
		}
	}
	return PersonaUnset, fmt.Errorf("unknown persona %q", s)
}

// IsValid reports whether p is one of the five personas.
func (p Persona) IsValid() bool {
	return p >= PersonaExplorer && p <= PersonaCreator
}

// Key is the stable wire and storage identifier.
func (p Persona) Key() string {
	if !p.IsValid() {
		return ""
	}
	return personaCatalog[p].key
}

// Label is the display name, e.g. "The Explorer".
func (p Persona) Label() string {
	if !p.IsValid() {
		return ""
	}
	return personaCatalog[p].label
}

func (p Persona) Description() string {
	return personaCatalog[p].description
}

// Strategies returns the persona's generic study tips.
func (p Persona) Strategies() []string {
	tips := personaCatalog[p].strategies
	out := make([]string, len(tips))
	copy(out, tips)
	return out
}

func (p Persona) String() string {
	if !p.IsValid() {
		return "unset"
	}
	return p.Key()
}

func (p Persona) index() int {
	return int(p) - 1
}

// MarshalText encodes the persona key. It lets Persona act as a JSON map key.
func (p Persona) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return []byte(""), nil
	}
	return []byte(p.Key()), nil
}

// UnmarshalText rejects anything outside the enumeration.
func (p *Persona) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = PersonaUnset
		return nil
	}
	parsed, err := ParsePersona(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Departments known to the organization dashboard.
var Departments = []string{
	"Marketing",
	"Engineering",
	"Sales",
	"HR",
	"Finance",
	"Product",
	"Leadership",
	"Operations",
}

// IsKnownDepartment matches case-sensitively against Departments.
func IsKnownDepartment(d string) bool {
	for _, known := range Departments {
		if known == d {
			return true
		}
	}
	return false
}
