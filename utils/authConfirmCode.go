package utils

import (
	"SalvadoDental/cache"
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// ConfirmationCodeExpiry is how long a sign-up confirmation code stays valid.
const ConfirmationCodeExpiry = 24 * time.Hour

// GenerateConfirmationCode generates a random 6-digit confirmation code.
func GenerateConfirmationCode() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

// ConfirmationCodeStore keeps pending sign-up confirmation codes in Redis.
type ConfirmationCodeStore struct {
	cache *cache.Cache
}

func NewConfirmationCodeStore(cache *cache.Cache) *ConfirmationCodeStore {
	return &ConfirmationCodeStore{cache: cache}
}

// Save stores the code for email, replacing any previous one.
func (s *ConfirmationCodeStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	return s.cache.Set(ctx, confirmationKey(email), code, ttl)
}

// Get returns the stored code, or "" if there is none.
func (s *ConfirmationCodeStore) Get(ctx context.Context, email string) (string, error) {
	return s.cache.Get(ctx, confirmationKey(email))
}

func (s *ConfirmationCodeStore) Delete(ctx context.Context, email string) error {
	return s.cache.Delete(ctx, confirmationKey(email))
}

func confirmationKey(email string) string {
	return "confirm_code:" + strings.ToLower(strings.TrimSpace(email))
}
