package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	otpPrefix = "otp:"
	otpTTL    = 10 * time.Minute
)

// OTPRecord is the pending one-time code state for one email address
type OTPRecord struct {
	CodeHash string    `json:"code_hash"`
	Attempts int       `json:"attempts"`
	IssuedAt time.Time `json:"issued_at"`
}

// OTPStore keeps pending one-time codes in Redis with a TTL, so an
// unverified code expires on its own.
type OTPStore struct {
	client *Client
}

// NewOTPStore creates a new OTP store
func NewOTPStore(client *Client) *OTPStore {
	return &OTPStore{client: client}
}

// Save stores a fresh code record, replacing any pending one
func (s *OTPStore) Save(ctx context.Context, email, codeHash string) error {
	record := OTPRecord{
		CodeHash: codeHash,
		IssuedAt: time.Now(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal OTP record: %w", err)
	}

	key := otpPrefix + email
	return s.client.rdb.Set(ctx, key, data, otpTTL).Err()
}

// Get retrieves the pending record for an email, nil if none
func (s *OTPStore) Get(ctx context.Context, email string) (*OTPRecord, error) {
	data, err := s.client.rdb.Get(ctx, otpPrefix+email).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get OTP record: %w", err)
	}

	var record OTPRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal OTP record: %w", err)
	}

	return &record, nil
}

// IncrementAttempts bumps the failed-verify counter, preserving the TTL
func (s *OTPStore) IncrementAttempts(ctx context.Context, email string, record *OTPRecord) error {
	record.Attempts++

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal OTP record: %w", err)
	}

	key := otpPrefix + email
	return s.client.rdb.Set(ctx, key, data, redis.KeepTTL).Err()
}

// Delete consumes the pending record
func (s *OTPStore) Delete(ctx context.Context, email string) error {
	return s.client.rdb.Del(ctx, otpPrefix+email).Err()
}
