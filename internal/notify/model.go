// README: Abstract outbound notification intents and the dispatcher contract.
package notify

import "context"

// Notification is one outbound message intent. Exactly one of the
// concrete types below is passed to the dispatcher; rendering to the
// provider wire format happens there, not in the bot core.
type Notification interface {
	recipient() string
}

type Text struct {
	To   string
	Body string
}

type Choice struct {
	ID    string
	Label string // provider truncates past 20 chars
}

type Buttons struct {
	To      string
	Body    string
	Choices []Choice
}

type Row struct {
	ID          string
	Title       string // ≤24 chars on the wire
	Description string // ≤72 chars on the wire
}

type ListSection struct {
	Title string // ≤24 chars on the wire
	Rows  []Row  // ≤10 rows per section
}

type List struct {
	To       string
	Header   string
	Body     string
	Button   string
	Sections []ListSection
}

type Media struct {
	To      string
	URL     string
	Caption string
}

func (t Text) recipient() string    { return t.To }
func (b Buttons) recipient() string { return b.To }
func (l List) recipient() string    { return l.To }
func (m Media) recipient() string   { return m.To }

// Dispatcher renders a notification intent to the messaging provider.
// Implementations guarantee an at-least-once delivery attempt and
// surface failures to the caller; they never swallow them.
type Dispatcher interface {
	Send(ctx context.Context, n Notification) error
}
