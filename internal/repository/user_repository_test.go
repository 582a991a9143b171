package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"learn-persona/internal/domain"
	"learn-persona/internal/repository/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a new sqlx.DB instance backed by sqlmock.
func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

var userRowColumns = []string{
	"id", "username", "password_hash", "google_id", "name", "email", "department", "user_role", "persona",
	"streak_count", "last_active", "completed_courses", "progress", "created_at", "updated_at",
}

// --- Tests for Converter Functions ---

func TestToDomainUser(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	modelUser := &models.User{
		ID:          "user1",
		Username:    sql.NullString{String: "ada", Valid: true},
		Name:        "Ada",
		Email:       "ada@example.com",
		Department:  sql.NullString{String: "Engineering", Valid: true},
		Role:        "ld_professional",
		Persona:     sql.NullString{String: "thinker", Valid: true},
		StreakCount: 3,
		LastActive:  sql.NullTime{Time: now, Valid: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	u := toDomainUser(modelUser)
	require.NotNil(t, u)
	assert.Equal(t, "ada", u.Username)
	assert.Equal(t, domain.PersonaThinker, u.Persona)
	assert.Equal(t, domain.RoleLDProfessional, u.Role)
	assert.Equal(t, "Engineering", u.Department)
	require.NotNil(t, u.LastActive)
	assert.True(t, now.Equal(*u.LastActive))

	modelUser.Persona = sql.NullString{}
	modelUser.LastActive = sql.NullTime{}
	u = toDomainUser(modelUser)
	assert.Equal(t, domain.PersonaUnset, u.Persona)
	assert.Nil(t, u.LastActive)

	modelUser.Persona = sql.NullString{String: "Visual Learner", Valid: true}
	assert.Equal(t, domain.PersonaUnset, toDomainUser(modelUser).Persona)

	assert.Nil(t, toDomainUser(nil))
}

func TestFromDomainUser(t *testing.T) {
	u := &domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleLearner}

	m := fromDomainUser(u)
	require.NotNil(t, m)
	assert.False(t, m.Persona.Valid)
	assert.False(t, m.Username.Valid)
	assert.False(t, m.Department.Valid)
	assert.False(t, m.LastActive.Valid)

	u.Persona = domain.PersonaCreator
	u.Username = "ada"
	m = fromDomainUser(u)
	assert.Equal(t, sql.NullString{String: "creator", Valid: true}, m.Persona)
	assert.True(t, m.Username.Valid)

	assert.Nil(t, fromDomainUser(nil))
}

// --- Tests for Adapter Methods ---

func TestSQLXUserRepository_GetUserByID_Success(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("u1", "ada", "hash", nil, "Ada", "ada@example.com", "Engineering", "learner", "explorer",
			2, now, 1, 50, now, now)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).
		WithArgs("u1").
		WillReturnRows(rows)

	u, err := repo.GetUserByID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "ada", u.Username)
	assert.Equal(t, domain.PersonaExplorer, u.Persona)
	assert.Equal(t, 50, u.Progress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_GetUserByUsername_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)

	mock.ExpectQuery(`SELECT .* FROM users WHERE username = \?`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetUserByUsername(context.Background(), "ghost")
	assert.NoError(t, err, "not found is reported as (nil, nil)")
	assert.Nil(t, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_CreateUser(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)

	u := &domain.User{Username: "ada", Name: "Ada", Email: "ada@example.com"}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.CreateUser(context.Background(), u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, domain.RoleLearner, u.Role)
	assert.False(t, u.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_UpdateUser_NoRows(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateUser(context.Background(), &domain.User{ID: "missing", Name: "x", Email: "x@y"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_PersonaCountsByDepartment(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)

	rows := sqlmock.NewRows([]string{"department", "persona", "total"}).
		AddRow("Engineering", "thinker", 3).
		AddRow("Engineering", "creator", 1).
		AddRow("Sales", "connector", 2).
		AddRow("Sales", "Visual Learner", 9)
	mock.ExpectQuery(`SELECT department, persona, COUNT\(\*\) AS total`).WillReturnRows(rows)

	got, err := repo.PersonaCountsByDepartment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]map[domain.Persona]int{
		"Engineering": {domain.PersonaThinker: 3, domain.PersonaCreator: 1},
		"Sales":       {domain.PersonaConnector: 2},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_ResetStaleStreaks(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)

	cutoff := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET streak_count = 0`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.ResetStaleStreaks(context.Background(), cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_GetUserForUpdate_LocksOnPostgres(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "postgres")
	defer db.Close()
	repo := NewSQLXUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1 FOR UPDATE`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", "ada", "hash", nil, "Ada", "ada@example.com", nil, "learner", "creator",
				1, now, 0, 0, now, now))

	u, err := repo.GetUserForUpdate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.PersonaCreator, u.Persona)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_GetUserForUpdate_NoLockOnSQLite(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?$`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetUserForUpdate(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_TargetedWrites(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET persona = ?, updated_at = ? WHERE id = ?`)).
		WithArgs(sql.NullString{String: "thinker", Valid: true}, at, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetPersona(ctx, "u1", domain.PersonaThinker, at))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET streak_count = ?, last_active = ?, updated_at = ? WHERE id = ?`)).
		WithArgs(3, at, at, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RecordActivity(ctx, "u1", 3, at))

	mock.ExpectExec(`UPDATE users SET\s+completed_courses = CASE WHEN completed_courses \+ \? < 0 THEN 0 ELSE completed_courses \+ \? END`).
		WithArgs(-1, -1, 40, sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateCourseStats(ctx, "u1", -1, 40))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET google_id = ?, name = ?, updated_at = ? WHERE id = ?`)).
		WithArgs("g-1", "Grace", sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.LinkGoogleAccount(ctx, "missing", "g-1", "Grace"), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
