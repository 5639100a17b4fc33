package freelist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_TakeReleaseLIFO(t *testing.T) {
	r := New()
	_, ok := r.Take(32)
	require.False(t, ok)

	r.Release(32, 100)
	r.Release(32, 200)
	r.Release(32, 300)

	off, ok := r.Take(32)
	require.True(t, ok)
	require.EqualValues(t, 300, off)

	off, ok = r.Take(32)
	require.True(t, ok)
	require.EqualValues(t, 200, off)

	r.Release(64, 500)
	off, ok = r.Take(32)
	require.True(t, ok)
	require.EqualValues(t, 100, off)

	_, ok = r.Take(32)
	require.False(t, ok)

	off, ok = r.Take(64)
	require.True(t, ok)
	require.EqualValues(t, 500, off)
}

func TestRegistry_ForgetAll(t *testing.T) {
	r := New()
	r.Release(16, 1)
	r.Release(32, 2)
	r.ForgetAll()

	_, ok := r.Take(16)
	require.False(t, ok)
	_, ok = r.Take(32)
	require.False(t, ok)
	require.Empty(t, r.Sizes())
}

func TestRegistry_NoCoalescing(t *testing.T) {
	r := New()
	r.Release(16, 0)
	r.Release(32, 16)
	require.Equal(t, 1, r.Len(16))
	require.Equal(t, 1, r.Len(32))
}
