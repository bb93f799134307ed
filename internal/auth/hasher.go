// ABOUTME: bcrypt password hashing with a bounded number of concurrent computations
// ABOUTME: A weighted semaphore keeps slow hashes from starving unrelated requests

package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// ErrInvalidCost is returned when the configured bcrypt cost is out of range.
var ErrInvalidCost = errors.New("invalid bcrypt cost")

// PasswordHasher hashes and verifies plaintext passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewBcryptHasher creates a hasher with the given work factor. At most
// concurrency hashes run at once; a value <= 0 means GOMAXPROCS.
func NewBcryptHasher(cost, concurrency int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidCost, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &BcryptHasher{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(concurrency)),
	}, nil
}

// Hash returns a salted bcrypt hash of password. It waits for a free slot
// and returns the context error if ctx ends first.
func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for hash slot: %w", err)
	}
	defer h.sem.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. It returns false on mismatch,
// on a malformed hash, or if ctx ends while waiting for a slot.
func (h *BcryptHasher) Verify(ctx context.Context, password, hash string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
