package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"game_store_backend/internal/models"
	"game_store_backend/internal/notify"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

// --- Custom Service Errors ---
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidResetToken  = errors.New("reset link is invalid or has expired")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

const (
	minPasswordLength = 8
	resetTokenTTL     = time.Hour
)

// --- Data Transfer Objects (DTOs) ---

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
	Lang  string `json:"lang"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type OnboardingRequest struct {
	Completed           *bool `json:"onboarding_completed"`
	Step                *int  `json:"onboarding_step"`
	HelpTooltipsVisible *bool `json:"help_tooltips_visible"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresIn    int64        `json:"expires_in"`
}

// --- AuthService Interface ---
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
	ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error
	RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	UpdateOnboarding(ctx context.Context, userID int64, req OnboardingRequest) (*models.User, error)
}

// --- authService Implementation ---
type authService struct {
	repo     repositories.AuthRepository
	db       repositories.SQLExecutor
	tx       repositories.TxRunner
	tokens   *utils.TokenManager
	notifier notify.Notifier
	now      func() time.Time
}

func NewAuthService(
	repo repositories.AuthRepository,
	db repositories.SQLExecutor,
	tx repositories.TxRunner,
	tokens *utils.TokenManager,
	notifier notify.Notifier,
) AuthService {
	return &authService{
		repo:     repo,
		db:       db,
		tx:       tx,
		tokens:   tokens,
		notifier: notifier,
		now:      time.Now,
	}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *authService) issue(user *models.User) (*AuthResponse, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return &AuthResponse{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// Login handles user login and token generation.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		utils.LogWarn(err, "last login not recorded", map[string]interface{}{"user_id": user.ID})
	}
	return s.issue(user)
}

// Refresh re-reads the user so role changes and deactivation take effect.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, wrapNotFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	if !utils.IsValidPasswordLength(req.NewPassword, minPasswordLength) {
		return ErrWeakPassword
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return wrapNotFound(s.repo.UpdatePassword(ctx, s.db, userID, hashed), ErrUserNotFound)
}

// RequestPasswordReset answers the same way whether or not the email exists.
// The token handed to the notifier is "<row id>.<secret>"; only a bcrypt
// hash of the secret is stored.
func (s *authService) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.IsValidEmail(email) {
		return fmt.Errorf("%w: invalid email", ErrStaffValidation)
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.LogInfo("password reset requested for unknown email")
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	secret, err := randomHex(32)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	id, err := s.repo.CreateResetToken(ctx, s.db, user.ID, string(hashed), s.now().Add(resetTokenTTL))
	if err != nil {
		return err
	}

	lang := req.Lang
	if lang == "" {
		lang = "fr"
	}
	nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	err = s.notifier.PasswordReset(nctx, notify.PasswordReset{
		Email: user.Email,
		Lang:  lang,
		Token: strconv.FormatInt(id, 10) + "." + secret,
	})
	return notifyErr(nctx, err)
}

func parseResetToken(token string) (int64, string, error) {
	idPart, secret, ok := strings.Cut(token, ".")
	if !ok || secret == "" {
		return 0, "", ErrInvalidResetToken
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidResetToken
	}
	return id, secret, nil
}

func (s *authService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if !utils.IsValidPasswordLength(req.NewPassword, minPasswordLength) {
		return ErrWeakPassword
	}
	id, secret, err := parseResetToken(req.Token)
	if err != nil {
		return err
	}
	stored, err := s.repo.GetResetToken(ctx, id)
	if err != nil {
		return wrapNotFound(err, ErrInvalidResetToken)
	}
	if stored.UsedAt != nil || !s.now().Before(stored.ExpiresAt) {
		return ErrInvalidResetToken
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.TokenHash), []byte(secret)); err != nil {
		return ErrInvalidResetToken
	}

	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.repo.MarkResetTokenUsed(ctx, exec, stored.ID); err != nil {
			return wrapNotFound(err, ErrInvalidResetToken)
		}
		return wrapNotFound(s.repo.UpdatePassword(ctx, exec, stored.UserID, hashed), ErrUserNotFound)
	})
}

func (s *authService) UpdateOnboarding(ctx context.Context, userID int64, req OnboardingRequest) (*models.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Completed != nil {
		user.OnboardingCompleted = *req.Completed
	}
	if req.Step != nil {
		if *req.Step < 0 {
			return nil, fmt.Errorf("%w: onboarding step cannot be negative", ErrStaffValidation)
		}
		user.OnboardingStep = *req.Step
	}
	if req.HelpTooltipsVisible != nil {
		user.HelpTooltipsVisible = *req.HelpTooltipsVisible
	}
	err = s.repo.UpdateOnboarding(ctx, s.db, userID, user.OnboardingCompleted, user.OnboardingStep, user.HelpTooltipsVisible)
	if err != nil {
		return nil, wrapNotFound(err, ErrUserNotFound)
	}
	return user, nil
}
