package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gamenight/planner-api/relay/adaptor/gemini"
)

func contentsOf(texts ...string) []gemini.Content {
	contents := make([]gemini.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, gemini.Content{
			Role:  "user",
			Parts: []gemini.Part{{Text: text}},
		})
	}
	return contents
}

func TestDeriveKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := DeriveKey(contentsOf("hello", "world"), "gemini-1.5-flash")
		b := DeriveKey(contentsOf("hello", "world"), "gemini-1.5-flash")
		require.Equal(t, a, b)
	})

	t.Run("prefix and hex body", func(t *testing.T) {
		key := DeriveKey(contentsOf("hello"), "gemini-1.5-flash")
		require.True(t, strings.HasPrefix(key, "cache-"))
		require.Len(t, strings.TrimPrefix(key, "cache-"), 64)
	})

	t.Run("order sensitive", func(t *testing.T) {
		a := DeriveKey(contentsOf("hello", "world"), "gemini-1.5-flash")
		b := DeriveKey(contentsOf("world", "hello"), "gemini-1.5-flash")
		require.NotEqual(t, a, b)
	})

	t.Run("model sensitive", func(t *testing.T) {
		a := DeriveKey(contentsOf("hello"), "gemini-1.5-flash")
		b := DeriveKey(contentsOf("hello"), "gemini-2.0-flash")
		require.NotEqual(t, a, b)
	})

	t.Run("empty contents still keyed by model", func(t *testing.T) {
		a := DeriveKey(nil, "gemini-1.5-flash")
		b := DeriveKey(nil, "gemini-2.0-flash")
		require.NotEqual(t, a, b)
	})
}
