// ABOUTME: Unit tests for the bcrypt password hasher
// ABOUTME: Covers round trips, mismatches, malformed hashes, and slot cancellation

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(bcrypt.MinCost, 2)
	require.NoError(t, err)
	return h
}

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"), "expected bcrypt hash, got %q", hash)

	assert.True(t, h.Verify(ctx, "secret1", hash))
	assert.False(t, h.Verify(ctx, "secret2", hash))
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	a, err := h.Hash(ctx, "secret1")
	require.NoError(t, err)
	b, err := h.Hash(ctx, "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := newTestHasher(t)
	assert.False(t, h.Verify(context.Background(), "secret1", "not-a-hash"))
	assert.False(t, h.Verify(context.Background(), "secret1", ""))
}

func TestNewBcryptHasher_InvalidCost(t *testing.T) {
	for _, cost := range []int{0, bcrypt.MinCost - 1, bcrypt.MaxCost + 1} {
		_, err := NewBcryptHasher(cost, 1)
		assert.True(t, errors.Is(err, ErrInvalidCost), "cost %d: got %v", cost, err)
	}
}

func TestNewBcryptHasher_DefaultConcurrency(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost, 0)
	require.NoError(t, err)
	assert.NotNil(t, h.sem)
}

func TestBcryptHasher_CancelledWhileWaiting(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost, 1)
	require.NoError(t, err)

	// Hold the only slot so the next caller has to wait.
	require.NoError(t, h.sem.Acquire(context.Background(), 1))
	defer h.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = h.Hash(ctx, "secret1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, h.Verify(ctx, "secret1", "$2a$04$abcdefghijklmnopqrstuu"))
}
