package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	otpPrefix = "otp:"
	otpTTL    = 5 * time.Minute
)

// OTPStore holds bcrypt hashes of one-time login codes keyed by phone.
// Redis gives TTL expiry for free; when no client is configured it falls
// back to an in-process map so local development works without Redis.
type OTPStore struct {
	Client *redis.Client

	mu    sync.Mutex
	local map[string]localOTP
}

type localOTP struct {
	hash    string
	expires time.Time
}

func otpKey(phone string) string {
	return fmt.Sprintf("%s%s", otpPrefix, phone)
}

// SaveCode stores the code hash, replacing any previous code for the phone.
func (s *OTPStore) SaveCode(ctx context.Context, phone, hash string) error {
	if s.Client == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.local == nil {
			s.local = map[string]localOTP{}
		}
		s.local[phone] = localOTP{hash: hash, expires: time.Now().Add(otpTTL)}
		return nil
	}
	return s.Client.Set(ctx, otpKey(phone), hash, otpTTL).Err()
}

// TakeCode returns the stored hash and deletes it, so each code is
// verifiable exactly once. Returns ("", nil) when no code is pending.
func (s *OTPStore) TakeCode(ctx context.Context, phone string) (string, error) {
	if s.Client == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		entry, ok := s.local[phone]
		delete(s.local, phone)
		if !ok || time.Now().After(entry.expires) {
			return "", nil
		}
		return entry.hash, nil
	}
	hash, err := s.Client.GetDel(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}
