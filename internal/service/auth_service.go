package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"learn-persona/internal/config"
	"learn-persona/internal/domain"
	"learn-persona/internal/dto"
	"learn-persona/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	tokenTypeAccess   = "access"
	tokenTypeRefresh  = "refresh"
	minPasswordLength = 6
)

var (
	ErrInvalidAuthState      = errors.New("invalid oauth state")
	ErrFailedToExchangeToken = errors.New("failed to exchange oauth token")
	ErrFailedToGetUserInfo   = errors.New("failed to get user info from google")
	ErrInvalidJWTToken       = errors.New("invalid jwt token")
	ErrGoogleOAuthDisabled   = errors.New("google oauth is not configured")
)

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error)
	GetGoogleLoginURL(state string) (string, error)
	HandleGoogleCallback(ctx context.Context, code, receivedState, expectedState string) (*dto.TokenResponse, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	CreateJWT(ctx context.Context, user *domain.User, ttl time.Duration, tokenType string) (string, error)
	RefreshToken(ctx context.Context, refreshTokenString string) (*dto.TokenResponse, error)
}

type authServiceImpl struct {
	userRepo     domain.UserRepository
	oauth2Config *oauth2.Config
	userInfoURL  string
	jwtCfg       config.JWTConfig
	now          func() time.Time
}

// NewAuthService creates a new instance of AuthService. Google login is only
// available when oauthCfg.Enabled is set.
func NewAuthService(userRepo domain.UserRepository, jwtCfg config.JWTConfig, oauthCfg config.GoogleOAuthConfig) (AuthService, error) {
	if jwtCfg.SecretKey == "" {
		return nil, errors.New("jwt secret key is not configured")
	}
	s := &authServiceImpl{
		userRepo:    userRepo,
		userInfoURL: googleUserInfoURL,
		jwtCfg:      jwtCfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
	if oauthCfg.Enabled {
		s.oauth2Config = &oauth2.Config{
			ClientID:     oauthCfg.ClientID,
			ClientSecret: oauthCfg.ClientSecret,
			RedirectURL:  oauthCfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}
	return s, nil
}

func validateRegistration(req dto.RegisterRequest) (domain.Role, domain.ValidationErrors) {
	var errs domain.ValidationErrors
	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, domain.NewMissingFieldError("username"))
	}
	if len(req.Password) < minPasswordLength {
		errs = append(errs, domain.NewValidationError("password", domain.CodeOutOfRange,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength)))
	}
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, domain.NewMissingFieldError("name"))
	}
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, domain.NewMissingFieldError("email"))
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, domain.NewInvalidFormatError("email", req.Email))
	}
	if req.Department != "" && !domain.IsKnownDepartment(req.Department) {
		errs = append(errs, domain.NewInvalidFormatError("department", req.Department))
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		errs = append(errs, domain.NewInvalidFormatError("role", req.Role))
	}
	return role, errs
}

func (s *authServiceImpl) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	role, errs := validateRegistration(req)
	if errs.HasErrors() {
		return nil, errs
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, domain.NewInternalError("Failed to check username", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError("Username is already taken").WithContext("field", "username")
	}
	existing, err = s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.NewInternalError("Failed to check email", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError("Email is already registered").WithContext("field", "email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("Failed to hash password", err)
	}

	user := domain.NewUser(req.Username, strings.TrimSpace(req.Name), req.Email)
	user.PasswordHash = string(hash)
	user.Department = req.Department
	user.Role = role
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, domain.NewInternalError("Failed to create user", err)
	}

	logger.Get().Info("User registered", zap.String("userID", user.ID), zap.String("role", string(user.Role)))
	return s.issueTokens(ctx, user)
}

func (s *authServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	invalid := domain.NewUnauthorizedError("Invalid username or password")

	user, err := s.userRepo.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, domain.NewInternalError("Failed to fetch user", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalid
	}

	now := s.now()
	user.TouchActivity(now)
	if err := s.userRepo.RecordActivity(ctx, user.ID, user.StreakCount, now); err != nil {
		return nil, domain.NewInternalError("Failed to update user activity", err)
	}
	return s.issueTokens(ctx, user)
}

func (s *authServiceImpl) GetGoogleLoginURL(state string) (string, error) {
	if s.oauth2Config == nil {
		return "", ErrGoogleOAuthDisabled
	}
	return s.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

func (s *authServiceImpl) HandleGoogleCallback(ctx context.Context, code, receivedState, expectedState string) (*dto.TokenResponse, error) {
	appLogger := logger.Get()
	if s.oauth2Config == nil {
		return nil, ErrGoogleOAuthDisabled
	}
	if receivedState == "" || receivedState != expectedState {
		return nil, ErrInvalidAuthState
	}

	googleToken, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToExchangeToken, err)
	}

	client := s.oauth2Config.Client(ctx, googleToken)
	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrFailedToGetUserInfo, resp.StatusCode)
	}

	var userInfo dto.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if userInfo.ID == "" || userInfo.Email == "" {
		return nil, fmt.Errorf("%w: incomplete profile", ErrFailedToGetUserInfo)
	}

	user, err := s.userRepo.GetUserByGoogleID(ctx, userInfo.ID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to fetch user by google id", err)
	}
	if user == nil {
		// An account registered with the same email is linked rather than duplicated.
		user, err = s.userRepo.GetUserByEmail(ctx, strings.ToLower(userInfo.Email))
		if err != nil {
			return nil, domain.NewInternalError("Failed to fetch user by email", err)
		}
	}

	now := s.now()
	if user == nil {
		user = domain.NewUser("", userInfo.Name, strings.ToLower(userInfo.Email))
		user.GoogleID = userInfo.ID
		if user.Name == "" {
			user.Name = user.Email
		}
		user.TouchActivity(now)
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			return nil, domain.NewInternalError("Failed to create user", err)
		}
		appLogger.Info("New user created via Google OAuth", zap.String("userID", user.ID))
	} else {
		user.GoogleID = userInfo.ID
		if userInfo.Name != "" {
			user.Name = userInfo.Name
		}
		if err := s.userRepo.LinkGoogleAccount(ctx, user.ID, user.GoogleID, user.Name); err != nil {
			return nil, domain.NewInternalError("Failed to link google account", err)
		}
		user.TouchActivity(now)
		if err := s.userRepo.RecordActivity(ctx, user.ID, user.StreakCount, now); err != nil {
			return nil, domain.NewInternalError("Failed to update user activity", err)
		}
		appLogger.Info("User logged in via Google OAuth", zap.String("userID", user.ID))
	}

	return s.issueTokens(ctx, user)
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *domain.User) (*dto.TokenResponse, error) {
	accessToken, err := s.CreateJWT(ctx, user, s.jwtCfg.AccessTTL, tokenTypeAccess)
	if err != nil {
		return nil, domain.NewInternalError("Failed to create access token", err)
	}
	refreshToken, err := s.CreateJWT(ctx, user, s.jwtCfg.RefreshTTL, tokenTypeRefresh)
	if err != nil {
		return nil, domain.NewInternalError("Failed to create refresh token", err)
	}
	profile := dto.NewUserProfileResponse(user)
	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtCfg.AccessTTL / time.Second),
		User:         &profile,
	}, nil
}

func (s *authServiceImpl) CreateJWT(ctx context.Context, user *domain.User, ttl time.Duration, tokenType string) (string, error) {
	now := s.now()
	claims := dto.AuthClaims{
		UserID:    user.ID,
		Role:      string(user.Role),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.SecretKey))
}

func tokenSnippet(token string) string {
	return token[:min(len(token), 20)] + "..."
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.SecretKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("JWT token expired", zap.String("token_snippet", tokenSnippet(tokenString)))
		} else {
			logger.Get().Warn("JWT validation failed", zap.Error(err), zap.String("token_snippet", tokenSnippet(tokenString)))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	if claims, ok := token.Claims.(*dto.AuthClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidJWTToken
}

// RefreshToken rotates both tokens. The user is reloaded so role changes take effect.
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshTokenString string) (*dto.TokenResponse, error) {
	claims, err := s.ValidateJWT(ctx, refreshTokenString)
	if err != nil {
		return nil, domain.NewError(domain.CodeUnauthorized, "Invalid refresh token", err)
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, domain.NewUnauthorizedError("Not a refresh token")
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to fetch user for refresh token", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("User %s not found for refresh token", claims.UserID))
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.Get().Info("JWT token refreshed", zap.String("userID", user.ID))
	return resp, nil
}
