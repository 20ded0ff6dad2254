// README: WhatsApp webhook envelope parsing.
package http

import (
	"kirana/internal/bot"
	"kirana/internal/types"
)

// webhookEvent is the minimal slice of the Cloud API envelope the bot
// needs. Everything else in the payload is ignored.
type webhookEvent struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []inboundMessage `json:"messages"`
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Statuses []struct{} `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type inboundMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
	Interactive *struct {
		Type        string `json:"type"`
		ButtonReply *struct {
			ID string `json:"id"`
		} `json:"button_reply"`
		ListReply *struct {
			ID string `json:"id"`
		} `json:"list_reply"`
	} `json:"interactive"`
	Audio *struct {
		ID string `json:"id"`
	} `json:"audio"`
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

// contactName returns the sender's profile name, when present.
func (e *webhookEvent) contactName() string {
	for _, entry := range e.Entry {
		for _, ch := range entry.Changes {
			for _, c := range ch.Value.Contacts {
				if c.Profile.Name != "" {
					return c.Profile.Name
				}
			}
		}
	}
	return ""
}

// statusOnly reports whether the event carries delivery receipts and
// no messages; those are acknowledged and dropped.
func (e *webhookEvent) statusOnly() bool {
	for _, entry := range e.Entry {
		for _, ch := range entry.Changes {
			if len(ch.Value.Messages) > 0 {
				return false
			}
			if len(ch.Value.Statuses) > 0 {
				return true
			}
		}
	}
	return true
}

// messages reduces the envelope to normalized bot inputs. Messages
// with missing expected fields are skipped, not failed.
func (e *webhookEvent) messages() []bot.Inbound {
	var out []bot.Inbound
	for _, entry := range e.Entry {
		for _, ch := range entry.Changes {
			for _, m := range ch.Value.Messages {
				if m.From == "" {
					continue
				}
				out = append(out, reduceMessage(m))
			}
		}
	}
	return out
}

func reduceMessage(m inboundMessage) bot.Inbound {
	in := bot.Inbound{From: m.From, Kind: bot.KindOther}
	switch m.Type {
	case "text":
		if m.Text != nil {
			in.Kind = bot.KindText
			in.Text = m.Text.Body
		}
	case "interactive":
		if m.Interactive == nil {
			break
		}
		switch m.Interactive.Type {
		case "button_reply":
			if m.Interactive.ButtonReply != nil {
				in.Kind = bot.KindReply
				in.Text = m.Interactive.ButtonReply.ID
			}
		case "list_reply":
			if m.Interactive.ListReply != nil {
				in.Kind = bot.KindReply
				in.Text = m.Interactive.ListReply.ID
			}
		}
	case "audio":
		if m.Audio != nil {
			in.Kind = bot.KindAudio
			in.AudioID = m.Audio.ID
		}
	case "location":
		if m.Location != nil {
			in.Kind = bot.KindLocation
			in.Location = &types.Point{Lat: m.Location.Latitude, Lng: m.Location.Longitude}
		}
	}
	return in
}
