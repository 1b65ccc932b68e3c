package profile

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryGet(t *testing.T) {
	t.Run("known model resolves", func(t *testing.T) {
		r := NewRegistry()
		prof, ok := r.Get("gemini-1.5-flash")
		require.True(t, ok)
		require.NotEmpty(t, prof.APIPath)
		require.Positive(t, prof.InputTokenLimit)
	})

	t.Run("unknown model misses", func(t *testing.T) {
		r := NewRegistry()
		_, ok := r.Get("gpt-4o")
		require.False(t, ok)
	})

	t.Run("zero limit falls back to default", func(t *testing.T) {
		r := NewRegistryWithProfiles(map[string]ModelProfile{
			"test-model": {APIPath: "models/test-model"},
		})
		prof, ok := r.Get("test-model")
		require.True(t, ok)
		require.Positive(t, prof.InputTokenLimit)
	})
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	require.NotEmpty(t, names)
	require.True(t, sort.StringsAreSorted(names))
	require.Contains(t, names, "gemini-1.5-flash")
}
