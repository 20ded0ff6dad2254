// README: Normalized inbound message handed to the engine by the webhook layer.
package bot

import "kirana/internal/types"

type Kind string

const (
	KindText     Kind = "text"
	KindReply    Kind = "reply"
	KindAudio    Kind = "audio"
	KindLocation Kind = "location"
	KindOther    Kind = "other"
)

// Inbound is one webhook message reduced to what the state machine
// needs: interactive replies arrive with their selection id in Text,
// audio with the provider media id, location with coordinates.
type Inbound struct {
	From     string
	Kind     Kind
	Text     string
	AudioID  string
	Location *types.Point
}
