package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiParser implements OrderParser using Google's Gemini models.
type GeminiParser struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiParser initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiParser(ctx context.Context, apiKey string) (*GeminiParser, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Gemini 2.0 Flash: low latency, handles Hindi/Hinglish audio well.
	model := client.GenerativeModel("gemini-2.0-flash")

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.1)

	return &GeminiParser{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiParser) Close() {
	p.client.Close()
}

func (p *GeminiParser) ParseOrder(ctx context.Context, text string) ([]ParsedItem, error) {
	return p.generate(ctx, genai.Text(orderPrompt), genai.Text("Customer message: "+text))
}

func (p *GeminiParser) TranscribeOrder(ctx context.Context, audio []byte, mimeType string) ([]ParsedItem, error) {
	if mimeType == "" {
		mimeType = "audio/ogg"
	}
	return p.generate(ctx,
		genai.Text(orderPrompt),
		genai.Blob{MIMEType: mimeType, Data: audio},
	)
}

func (p *GeminiParser) generate(ctx context.Context, parts ...genai.Part) ([]ParsedItem, error) {
	resp, err := p.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	// Clean up potential markdown formatting (json mode should handle this, safety first).
	cleanJSON := cleanJSONString(responseText.String())
	return decodeItems(cleanJSON), nil
}

const orderPrompt = `Role: You are the order-intake parser for a small Indian grocery (kirana) shop on WhatsApp.
The customer speaks Hindi, Hinglish, or English, in text or a voice note.

TASK:
Extract every grocery item the customer asks for. For each item output:
- "name": the grocery item name, normalised (e.g. "आलू", "चीनी", "basmati rice").
- "quantity": the amount as a plain decimal string in kilograms or pieces
  (e.g. "2", "1.5", "0.5"). Use "" when the customer did not say an amount.
  Convert spoken amounts: "आधा किलो" -> "0.5", "डेढ़ किलो" -> "1.5",
  "do kilo" -> "2", "पाव भर" -> "0.25".
- "fragment": the exact words the item came from, verbatim.

RULES:
1. Items only. Ignore greetings, questions, and delivery instructions.
2. Never invent items that were not mentioned.
3. If nothing resembles a grocery item, output [].

Output JSON Schema (a JSON array, nothing else):
[{"name": "string", "quantity": "string", "fragment": "string"}]
`

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
