package ai

import (
	"context"
)

// OrderParser defines the contract for turning free-form customer
// input into a structured item list.
// This interface allows for swapping different AI providers (Gemini, OpenAI, etc.) in the future.
type OrderParser interface {
	// ParseOrder extracts grocery items from free text. A best-effort
	// call: an empty slice means nothing was understood, which the
	// caller treats as a retry prompt, never an error surface.
	ParseOrder(ctx context.Context, text string) ([]ParsedItem, error)

	// TranscribeOrder does the same for a voice note. The audio bytes
	// come from the messaging provider's media download.
	TranscribeOrder(ctx context.Context, audio []byte, mimeType string) ([]ParsedItem, error)
}
