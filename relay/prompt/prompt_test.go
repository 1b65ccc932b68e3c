package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gamenight/planner-api/dto"
)

func TestSystemPrompt(t *testing.T) {
	sp := SystemPrompt()
	require.Equal(t, "user", sp.Role)
	require.Len(t, sp.Parts, 1)
	require.True(t, strings.Contains(sp.Parts[0].Text, EventHeaderPrefix))

	// The text must be stable across calls; it feeds the cache key.
	require.Equal(t, sp, SystemPrompt())
}

func TestSystemPromptCarriesWorkedExample(t *testing.T) {
	text := SystemPrompt().Parts[0].Text

	t.Run("includes the full example plan", func(t *testing.T) {
		require.Contains(t, text, "**Example of a valid event plan response (entire output):**")
		require.Contains(t, text, "## Event: LAN Party Lockdown 🚀")
		require.Contains(t, text, "### 🕹️ Proposed Schedule:")
		require.Contains(t, text, "**Sleeping Bag** (Optional) 💤")
	})

	t.Run("includes emoji and layout guidance", func(t *testing.T) {
		require.Contains(t, text, "(🎲, 🎮, 🏆, 🎉)")
		require.Contains(t, text, "⚠️ **Do NOT overuse tables**")
		require.Contains(t, text, "✅ **Right indentation and layout are mandatory**")
	})

	t.Run("includes the rejection example", func(t *testing.T) {
		require.Contains(t, text, `"I specialize in planning game events 🎲.`)
	})
}

func TestFormatHistory(t *testing.T) {
	t.Run("preserves order and roles", func(t *testing.T) {
		contents, err := FormatHistory([]dto.Message{
			{Role: dto.RoleUser, Content: "plan a LAN party"},
			{Role: dto.RoleModel, Content: "## Event: LAN Party"},
			{Role: dto.RoleUser, Content: "make it longer"},
		})
		require.NoError(t, err)
		require.Len(t, contents, 3)
		require.Equal(t, "user", contents[0].Role)
		require.Equal(t, "model", contents[1].Role)
		require.Equal(t, "plan a LAN party", contents[0].Parts[0].Text)
		require.Equal(t, "make it longer", contents[2].Parts[0].Text)
	})

	t.Run("one text part per message", func(t *testing.T) {
		contents, err := FormatHistory([]dto.Message{{Role: dto.RoleUser, Content: "hi"}})
		require.NoError(t, err)
		require.Len(t, contents[0].Parts, 1)
	})

	t.Run("rejects unrecognized role", func(t *testing.T) {
		_, err := FormatHistory([]dto.Message{
			{Role: dto.RoleUser, Content: "hi"},
			{Role: "assistant", Content: "hello"},
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "assistant")
	})

	t.Run("empty history is allowed here", func(t *testing.T) {
		contents, err := FormatHistory(nil)
		require.NoError(t, err)
		require.Empty(t, contents)
	})
}
