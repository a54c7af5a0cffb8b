package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "filters", []byte(`{"brands":["ResMed"]}`), time.Minute))
	got, err := s.Get(ctx, "filters")
	require.NoError(t, err)
	assert.JSONEq(t, `{"brands":["ResMed"]}`, string(got))

	now = now.Add(time.Minute)
	_, err = s.Get(ctx, "filters")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_ = s.Set(ctx, "a", []byte("1"), time.Hour)
	_ = s.Set(ctx, "b", []byte("2"), time.Hour)
	require.NoError(t, s.Delete(ctx, "a", "b", "c"))
	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestOpenFallsBackToMemory(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, isMem := Open(ctx, "").(*Memory)
	assert.True(t, isMem)
	_, isMem = Open(ctx, "not a url").(*Memory)
	assert.True(t, isMem)
}
