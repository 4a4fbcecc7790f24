package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a learner identified by email
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// OTPRequest asks for a one-time code to be mailed
type OTPRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// OTPVerify exchanges a one-time code for a token pair
type OTPVerify struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// RefreshRequest rotates a token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair represents JWT token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
