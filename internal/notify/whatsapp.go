// README: WhatsApp Cloud API client translating intents to the Graph wire format.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const graphVersion = "v22.0"

// WhatsAppClient sends messages through the Meta Graph API. It is the
// only egress for customer/owner/rider traffic.
type WhatsAppClient struct {
	token         string
	phoneNumberID string
	baseURL       string
	httpClient    *http.Client
}

func NewWhatsAppClient(token, phoneNumberID string) *WhatsAppClient {
	return &WhatsAppClient{
		token:         token,
		phoneNumberID: phoneNumberID,
		baseURL:       "https://graph.facebook.com/" + graphVersion,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *WhatsAppClient) Send(ctx context.Context, n Notification) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                n.recipient(),
	}
	switch v := n.(type) {
	case Text:
		payload["type"] = "text"
		payload["text"] = map[string]any{"body": v.Body}
	case Buttons:
		payload["type"] = "interactive"
		payload["interactive"] = map[string]any{
			"type":   "button",
			"body":   map[string]any{"text": v.Body},
			"action": map[string]any{"buttons": renderButtons(v.Choices)},
		}
	case List:
		payload["type"] = "interactive"
		payload["interactive"] = map[string]any{
			"type":   "list",
			"header": map[string]any{"type": "text", "text": v.Header},
			"body":   map[string]any{"text": v.Body},
			"action": map[string]any{
				"button":   v.Button,
				"sections": renderSections(v.Sections),
			},
		}
	case Media:
		payload["type"] = "image"
		payload["image"] = map[string]any{"link": v.URL, "caption": v.Caption}
	default:
		return fmt.Errorf("unknown notification type %T", n)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp send: status %d: %s", resp.StatusCode, raw)
	}
	return nil
}

// MediaURL resolves an inbound media id (voice note) to a short-lived
// download URL.
func (c *WhatsAppClient) MediaURL(ctx context.Context, mediaID string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+mediaID, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("whatsapp media lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("whatsapp media lookup: status %d", resp.StatusCode)
	}

	var out struct {
		URL      string `json:"url"`
		MimeType string `json:"mime_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	return out.URL, out.MimeType, nil
}

// Download fetches media bytes from a URL returned by MediaURL.
func (c *WhatsAppClient) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp media download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whatsapp media download: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 16<<20))
}

func renderButtons(choices []Choice) []map[string]any {
	out := make([]map[string]any, 0, len(choices))
	for _, ch := range choices {
		out = append(out, map[string]any{
			"type": "reply",
			"reply": map[string]any{
				"id":    ch.ID,
				"title": clip(ch.Label, 20),
			},
		})
	}
	return out
}

func renderSections(sections []ListSection) []map[string]any {
	out := make([]map[string]any, 0, len(sections))
	for _, sec := range sections {
		rows := make([]map[string]any, 0, len(sec.Rows))
		for _, r := range sec.Rows {
			rows = append(rows, map[string]any{
				"id":          r.ID,
				"title":       clip(r.Title, 24),
				"description": clip(r.Description, 72),
			})
			if len(rows) == 10 {
				break
			}
		}
		out = append(out, map[string]any{
			"title": clip(sec.Title, 24),
			"rows":  rows,
		})
	}
	return out
}

// clip truncates by runes so multibyte Hindi labels are not cut
// mid-character.
func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
