package domain

import (
	"context"
	"strings"
	"time"
)

// Role controls which parts of the API a user can reach.
type Role string

const (
	RoleLearner        Role = "learner"
	RoleLDProfessional Role = "ld_professional"
)

// ParseRole accepts the stored value plus the "l&d_professional" spelling used by older clients.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(RoleLearner):
		return RoleLearner, true
	case string(RoleLDProfessional), "l&d_professional":
		return RoleLDProfessional, true
	}
	return "", false
}

// User represents a domain user object
type User struct {
	ID               string
	Username         string
	PasswordHash     string
	GoogleID         string
	Name             string
	Email            string
	Department       string
	Role             Role
	Persona          Persona
	StreakCount      int
	LastActive       *time.Time
	CompletedCourses int
	Progress         int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewUser creates a new learner without a persona.
func NewUser(username, name, email string) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Name:      name,
		Email:     email,
		Role:      RoleLearner,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the fields required on every stored user.
func (u *User) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(u.Name) == "" {
		errs = append(errs, NewMissingFieldError("name"))
	}
	if strings.TrimSpace(u.Email) == "" {
		errs = append(errs, NewMissingFieldError("email"))
	}
	if u.Username == "" && u.GoogleID == "" {
		errs = append(errs, NewMissingFieldError("username"))
	}
	if u.Department != "" && !IsKnownDepartment(u.Department) {
		errs = append(errs, NewInvalidFormatError("department", u.Department))
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

func (u *User) HasPersona() bool {
	return u.Persona.IsValid()
}

// AssignPersona overwrites any previous persona.
func (u *User) AssignPersona(p Persona, at time.Time) {
	u.Persona = p
	u.UpdatedAt = at
}

// TouchActivity records activity at now and maintains the daily streak:
// same calendar day keeps it, the following day extends it, anything later restarts at 1.
func (u *User) TouchActivity(now time.Time) {
	today := calendarDay(now, now.Location())
	switch {
	case u.LastActive == nil:
		u.StreakCount = 1
	default:
		last := calendarDay(*u.LastActive, now.Location())
		switch {
		case last.Equal(today):
			if u.StreakCount == 0 {
				u.StreakCount = 1
			}
		case last.AddDate(0, 0, 1).Equal(today):
			u.StreakCount++
		default:
			u.StreakCount = 1
		}
	}
	active := now
	u.LastActive = &active
	u.UpdatedAt = now
}

func calendarDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	// GetUserForUpdate reads a user inside a transaction, locking the row where
	// the driver supports it. Writers that derive values from the current row use it.
	GetUserForUpdate(ctx context.Context, userID string) (*User, error)
	// The writes below touch only the columns they name.
	SetPersona(ctx context.Context, userID string, persona Persona, at time.Time) error
	RecordActivity(ctx context.Context, userID string, streak int, lastActive time.Time) error
	UpdateCourseStats(ctx context.Context, userID string, completedDelta, progress int) error
	LinkGoogleAccount(ctx context.Context, userID, googleID, name string) error
	// PersonaCountsByDepartment returns department -> persona -> users, skipping
	// users missing either value.
	PersonaCountsByDepartment(ctx context.Context) (map[string]map[Persona]int, error)
	// CountActiveByPersona counts users with a persona whose last activity is at or after since.
	CountActiveByPersona(ctx context.Context, since time.Time) (map[Persona]int, error)
	// ResetStaleStreaks zeroes streaks of users inactive since before cutoff.
	ResetStaleStreaks(ctx context.Context, cutoff time.Time) (int64, error)
}
