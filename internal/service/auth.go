package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/sql-tutor/internal/domain"
	"github.com/Rrens/sql-tutor/internal/mailer"
	"github.com/Rrens/sql-tutor/internal/repository/redis"
	"github.com/Rrens/sql-tutor/internal/security"
)

const (
	maxVerifyAttempts = 5
	resendCooldown    = 60 * time.Second
)

// ErrCooldown is returned when a code was requested too soon after the last one
var ErrCooldown = errors.New("a code was sent recently, wait before requesting another")

// ErrInvalidCode covers expired, consumed, and wrong codes alike, so the
// response does not reveal which one it was.
var ErrInvalidCode = errors.New("invalid or expired code")

// AuthService handles email-OTP authentication
type AuthService struct {
	userRepo   domain.UserRepository
	otpStore   *redis.OTPStore
	jwtManager *security.JWTManager
	mailer     mailer.Mailer
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	otpStore *redis.OTPStore,
	jwtManager *security.JWTManager,
	m mailer.Mailer,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		otpStore:   otpStore,
		jwtManager: jwtManager,
		mailer:     m,
	}
}

// RequestCode issues a one-time code and mails it
func (s *AuthService) RequestCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.otpStore.Get(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check pending code: %w", err)
	}
	if existing != nil && time.Since(existing.IssuedAt) < resendCooldown {
		return ErrCooldown
	}

	code, err := security.GenerateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := security.HashOTP(code)
	if err != nil {
		return fmt.Errorf("failed to hash code: %w", err)
	}

	if err := s.otpStore.Save(ctx, email, hash); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		return fmt.Errorf("failed to send code: %w", err)
	}

	return nil
}

// VerifyCode checks and consumes a one-time code, returning a token pair
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (*domain.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	record, err := s.otpStore.Get(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up code: %w", err)
	}
	if record == nil {
		return nil, ErrInvalidCode
	}

	if record.Attempts >= maxVerifyAttempts {
		_ = s.otpStore.Delete(ctx, email)
		return nil, ErrInvalidCode
	}

	if !security.VerifyOTP(record.CodeHash, code) {
		if err := s.otpStore.IncrementAttempts(ctx, email, record); err != nil {
			return nil, fmt.Errorf("failed to record attempt: %w", err)
		}
		return nil, ErrInvalidCode
	}

	if err := s.otpStore.Delete(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to consume code: %w", err)
	}

	user, err := s.userRepo.UpsertByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	accessToken, refreshToken, expiresIn, err := s.jwtManager.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// Refresh rotates a token pair using a refresh token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	accessToken, newRefreshToken, expiresIn, err := s.jwtManager.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}
