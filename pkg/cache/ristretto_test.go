package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRistretto_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, err := NewRistretto(RistrettoConfig{})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRistretto_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c, err := NewRistretto(RistrettoConfig{})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("abc"), time.Minute))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	got[0] = 'X'

	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestRistretto_TTLExpires(t *testing.T) {
	ctx := context.Background()
	c, err := NewRistretto(RistrettoConfig{})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 20*time.Millisecond))
	time.Sleep(50 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRistretto_NonPositiveTTLRemoves(t *testing.T) {
	ctx := context.Background()
	c, err := NewRistretto(RistrettoConfig{})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Set(ctx, "k", []byte("x"), 0))

	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRistretto_InvalidConfig(t *testing.T) {
	_, err := NewRistretto(RistrettoConfig{MaxCost: -1})
	assert.Error(t, err)
}
