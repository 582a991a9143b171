package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"learn-persona/internal/domain"
	"learn-persona/internal/logger"
	"learn-persona/internal/repository/models"
	"learn-persona/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const userColumns = `id, username, password_hash, google_id, name, email, department, user_role, persona,
	streak_count, last_active, completed_courses, progress, created_at, updated_at`

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db DBTX
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

// CreateUser inserts a new user, assigning an ID and timestamps when missing.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = util.NewULID()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = domain.RoleLearner
	}

	m := fromDomainUser(user)
	query := `INSERT INTO users (` + userColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, exec.Rebind(query),
		m.ID, m.Username, m.PasswordHash, m.GoogleID, m.Name, m.Email, m.Department, m.Role, m.Persona,
		m.StreakCount, m.LastActive, m.CompletedCourses, m.Progress, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.getUserBy(ctx, "id", userID)
}

func (r *sqlxUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUserBy(ctx, "username", username)
}

func (r *sqlxUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUserBy(ctx, "email", email)
}

func (r *sqlxUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.getUserBy(ctx, "google_id", googleID)
}

// GetUserForUpdate reads the user row and, on postgres and oracle, locks it
// until the surrounding transaction ends.
func (r *sqlxUserRepository) GetUserForUpdate(ctx context.Context, userID string) (*domain.User, error) {
	return r.getUserByLocked(ctx, "id", userID, true)
}

func (r *sqlxUserRepository) getUserBy(ctx context.Context, column, value string) (*domain.User, error) {
	return r.getUserByLocked(ctx, column, value, false)
}

// getUserByLocked returns (nil, nil) when no row matches. column is never user input.
func (r *sqlxUserRepository) getUserByLocked(ctx context.Context, column, value string, lock bool) (*domain.User, error) {
	var user models.User
	exec := GetExecutor(ctx, r.db)
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`
	if lock {
		query += lockClause(exec)
	}

	if err := exec.GetContext(ctx, &user, exec.Rebind(query), value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return toDomainUser(&user), nil
}

// UpdateUser writes every mutable column. It returns sql.ErrNoRows for an unknown id.
func (r *sqlxUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	m := fromDomainUser(user)

	query := `UPDATE users SET
	            username = ?,
	            password_hash = ?,
	            google_id = ?,
	            name = ?,
	            email = ?,
	            department = ?,
	            user_role = ?,
	            persona = ?,
	            streak_count = ?,
	            last_active = ?,
	            completed_courses = ?,
	            progress = ?,
	            updated_at = ?
	          WHERE id = ?`

	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, exec.Rebind(query),
		m.Username, m.PasswordHash, m.GoogleID, m.Name, m.Email, m.Department, m.Role, m.Persona,
		m.StreakCount, m.LastActive, m.CompletedCourses, m.Progress, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireOneRow(result)
}

// SetPersona writes only the persona column.
func (r *sqlxUserRepository) SetPersona(ctx context.Context, userID string, persona domain.Persona, at time.Time) error {
	query := `UPDATE users SET persona = ?, updated_at = ? WHERE id = ?`
	return r.exec(ctx, "set persona", query, util.StringToNullString(persona.Key()), at.UTC(), userID)
}

func (r *sqlxUserRepository) RecordActivity(ctx context.Context, userID string, streak int, lastActive time.Time) error {
	query := `UPDATE users SET streak_count = ?, last_active = ?, updated_at = ? WHERE id = ?`
	return r.exec(ctx, "record activity", query, streak, lastActive.UTC(), lastActive.UTC(), userID)
}

// UpdateCourseStats adds completedDelta to completed_courses, never going below
// zero, and stores the recomputed mean progress.
func (r *sqlxUserRepository) UpdateCourseStats(ctx context.Context, userID string, completedDelta, progress int) error {
	query := `UPDATE users SET
	            completed_courses = CASE WHEN completed_courses + ? < 0 THEN 0 ELSE completed_courses + ? END,
	            progress = ?,
	            updated_at = ?
	          WHERE id = ?`
	return r.exec(ctx, "update course stats", query, completedDelta, completedDelta, progress, time.Now().UTC(), userID)
}

func (r *sqlxUserRepository) LinkGoogleAccount(ctx context.Context, userID, googleID, name string) error {
	query := `UPDATE users SET google_id = ?, name = ?, updated_at = ? WHERE id = ?`
	return r.exec(ctx, "link google account", query, googleID, name, time.Now().UTC(), userID)
}

// exec runs a single-row update, returning sql.ErrNoRows for an unknown id.
func (r *sqlxUserRepository) exec(ctx context.Context, op, query string, args ...any) error {
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, exec.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return requireOneRow(result)
}

func (r *sqlxUserRepository) PersonaCountsByDepartment(ctx context.Context) (map[string]map[domain.Persona]int, error) {
	var rows []models.PersonaCount
	query := `SELECT department, persona, COUNT(*) AS total
	          FROM users
	          WHERE department IS NOT NULL AND persona IS NOT NULL
	          GROUP BY department, persona`

	exec := GetExecutor(ctx, r.db)
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query)); err != nil {
		return nil, fmt.Errorf("failed to count personas by department: %w", err)
	}

	out := make(map[string]map[domain.Persona]int)
	for _, row := range rows {
		p, err := domain.ParsePersona(row.Persona)
		if err != nil {
			logger.Get().Warn("Skipping unknown stored persona", zap.String("persona", row.Persona))
			continue
		}
		dept := row.Department.String
		if out[dept] == nil {
			out[dept] = make(map[domain.Persona]int)
		}
		out[dept][p] += row.Total
	}
	return out, nil
}

func (r *sqlxUserRepository) CountActiveByPersona(ctx context.Context, since time.Time) (map[domain.Persona]int, error) {
	var rows []models.PersonaCount
	query := `SELECT persona, COUNT(*) AS total
	          FROM users
	          WHERE persona IS NOT NULL AND last_active >= ?
	          GROUP BY persona`

	exec := GetExecutor(ctx, r.db)
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}

	out := make(map[domain.Persona]int, len(rows))
	for _, row := range rows {
		p, err := domain.ParsePersona(row.Persona)
		if err != nil {
			continue
		}
		out[p] += row.Total
	}
	return out, nil
}

func (r *sqlxUserRepository) ResetStaleStreaks(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE users SET streak_count = 0
	          WHERE streak_count > 0 AND (last_active IS NULL OR last_active < ?)`

	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, exec.Rebind(query), cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to reset streaks: %w", err)
	}
	return result.RowsAffected()
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	u := &domain.User{
		ID:               m.ID,
		Username:         m.Username.String,
		PasswordHash:     m.PasswordHash.String,
		GoogleID:         m.GoogleID.String,
		Name:             m.Name,
		Email:            m.Email,
		Department:       m.Department.String,
		Role:             domain.Role(m.Role),
		StreakCount:      m.StreakCount,
		LastActive:       util.NullTimeToPtr(m.LastActive),
		CompletedCourses: m.CompletedCourses,
		Progress:         m.Progress,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.Persona.Valid {
		if p, err := domain.ParsePersona(m.Persona.String); err == nil {
			u.Persona = p
		}
	}
	return u
}

func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	return &models.User{
		ID:               u.ID,
		Username:         util.StringToNullString(u.Username),
		PasswordHash:     util.StringToNullString(u.PasswordHash),
		GoogleID:         util.StringToNullString(u.GoogleID),
		Name:             u.Name,
		Email:            u.Email,
		Department:       util.StringToNullString(u.Department),
		Role:             string(u.Role),
		Persona:          util.StringToNullString(u.Persona.Key()),
		StreakCount:      u.StreakCount,
		LastActive:       util.PtrToNullTime(u.LastActive),
		CompletedCourses: u.CompletedCourses,
		Progress:         u.Progress,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
