package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/gamenight/planner-api/relay/adaptor/gemini"
)

// DeriveKey computes a deterministic cache identifier from the model identity
// and every text part of contents, in order. Reordering or editing any text
// part changes the key. Non-text parts do not contribute.
func DeriveKey(contents []gemini.Content, modelID string) string {
	hasher := sha256.New()
	hasher.Write([]byte(modelID))
	for _, content := range contents {
		for _, part := range content.Parts {
			if part.Text != "" {
				hasher.Write([]byte(part.Text))
			}
		}
	}
	return "cache-" + hex.EncodeToString(hasher.Sum(nil))
}
