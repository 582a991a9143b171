package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GoogleUserInfo holds user information obtained from Google.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// RegisterRequest is the body of POST /api/auth/register.
// @Description Request body for creating an account
type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Role       string `json:"role,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse represents the response containing access and refresh tokens.
// @Description Response body for authentication tokens
type TokenResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	TokenType    string               `json:"token_type"`
	ExpiresIn    int64                `json:"expires_in"`
	User         *UserProfileResponse `json:"user,omitempty"`
}

// RefreshTokenRequest represents the request body for refreshing a token.
// @Description Request body for refreshing JWT tokens
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// MessageResponse represents a generic message response.
// @Description Generic message response
type MessageResponse struct {
	Message string `json:"message"`
}

// UserProfileResponse is the authenticated user's profile.
// @Description User profile including persona and learning stats
type UserProfileResponse struct {
	ID               string     `json:"id"`
	Username         string     `json:"username,omitempty"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Department       string     `json:"department,omitempty"`
	Role             string     `json:"role"`
	Persona          string     `json:"persona,omitempty"`
	PersonaLabel     string     `json:"persona_label,omitempty"`
	StreakCount      int        `json:"streak_count"`
	LastActive       *time.Time `json:"last_active,omitempty"`
	CompletedCourses int        `json:"completed_courses"`
	Progress         int        `json:"progress"`
	CreatedAt        time.Time  `json:"created_at"`
}
