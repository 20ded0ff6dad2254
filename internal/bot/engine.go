// README: Conversation state machine; routes inbound messages by role and session state.
package bot

import (
	"context"
	"log"
	"strings"

	"kirana/internal/ai"
	"kirana/internal/config"
	"kirana/internal/maps"
	"kirana/internal/modules/catalog"
	"kirana/internal/modules/customer"
	"kirana/internal/modules/ledger"
	"kirana/internal/modules/pricing"
	"kirana/internal/modules/session"
	"kirana/internal/notify"
	"kirana/internal/types"
)

// Catalog is the read-only product lookup the engine needs.
type Catalog interface {
	ListActive(ctx context.Context) ([]catalog.Product, error)
	GetByID(ctx context.Context, id int64) (catalog.Product, error)
	GetByName(ctx context.Context, name string, fuzzy bool) (catalog.Product, error)
}

// Pricer renders and totals carts.
type Pricer interface {
	Compute(ctx context.Context, cart map[int64]types.Quantity) (pricing.Totals, error)
	Summary(ctx context.Context, cart map[int64]types.Quantity) (string, pricing.Totals, error)
}

// Ledger creates and advances orders.
type Ledger interface {
	Place(ctx context.Context, cust customer.Customer, cart map[int64]types.Quantity) (*ledger.Order, []ledger.Item, error)
	Advance(ctx context.Context, orderID int64, to ledger.Status) (*ledger.Order, error)
	AssignRider(ctx context.Context, orderID int64, r ledger.Rider) (*ledger.Order, error)
	RecordLocation(ctx context.Context, orderID int64, pt types.Point) error
	Items(ctx context.Context, orderID int64) ([]ledger.Item, error)
	OldestPlaced(ctx context.Context) (*ledger.Order, error)
	LatestActiveByRider(ctx context.Context, riderPhone string) (*ledger.Order, error)
	RecentByCustomer(ctx context.Context, phone string, limit int) ([]*ledger.Order, error)
}

// Customers persists customer identity collected during checkout.
type Customers interface {
	Get(ctx context.Context, phone string) (customer.Customer, error)
	GetOrCreate(ctx context.Context, phone string) (customer.Customer, error)
	SetName(ctx context.Context, phone, name string) error
	SetAddress(ctx context.Context, phone, address string) error
}

// OrderParser is the NLU boundary for voice/free-text intake.
// ai.GeminiParser satisfies it.
type OrderParser interface {
	ParseOrder(ctx context.Context, text string) ([]ai.ParsedItem, error)
	TranscribeOrder(ctx context.Context, audio []byte, mimeType string) ([]ai.ParsedItem, error)
}

// MediaFetcher downloads inbound voice notes from the provider.
type MediaFetcher interface {
	MediaURL(ctx context.Context, mediaID string) (url, mimeType string, err error)
	Download(ctx context.Context, url string) ([]byte, error)
}

type Deps struct {
	Sessions  session.Store
	Catalog   Catalog
	Pricer    Pricer
	Ledger    Ledger
	Customers Customers
	Notifier  notify.Dispatcher
	Parser    OrderParser
	Media     MediaFetcher
	Geocoder  maps.Geocoder
	Config    config.BotConfig
}

// Engine interprets one inbound message against the sender's session,
// mutates cart/order state, and fans out notifications. All handler
// paths follow the same discipline: commit ledger and session
// mutations first, then dispatch notifications best-effort.
type Engine struct {
	deps  Deps
	locks *phoneLocks
}

func NewEngine(deps Deps) *Engine {
	if deps.Geocoder == nil {
		deps.Geocoder = maps.NopGeocoder{}
	}
	return &Engine{deps: deps, locks: newPhoneLocks()}
}

// Handle processes one inbound message end to end. Role routing runs
// before any session lookup so the owner's or a rider's phone is never
// treated as a shopping customer.
func (e *Engine) Handle(ctx context.Context, in Inbound, contactName string) error {
	lock := e.locks.get(in.From)
	lock.Lock()
	defer lock.Unlock()

	text := normalize(in)

	if in.From == e.deps.Config.OwnerPhone {
		return e.handleOwner(ctx, text)
	}
	for _, rider := range e.deps.Config.RiderPhones {
		if in.From == rider {
			return e.handleRider(ctx, in.From, text)
		}
	}
	return e.handleCustomer(ctx, in, text, contactName)
}

// normalize trims and case-folds text input; interactive replies are
// already reduced to their selection id by the webhook layer.
func normalize(in Inbound) string {
	switch in.Kind {
	case KindText:
		return strings.ToLower(strings.TrimSpace(in.Text))
	case KindReply:
		return strings.TrimSpace(in.Text)
	default:
		return ""
	}
}

func (e *Engine) isResetKeyword(text string) bool {
	for _, kw := range e.deps.Config.ResetKeywords {
		if text == kw {
			return true
		}
	}
	return false
}

// send dispatches notifications after state has been committed. A
// delivery failure is logged and never rolls anything back; the
// customer can always re-query status.
func (e *Engine) send(ctx context.Context, out ...notify.Notification) {
	for _, n := range out {
		if n == nil {
			continue
		}
		if err := e.deps.Notifier.Send(ctx, n); err != nil {
			log.Printf("bot: notification dispatch failed: %v", err)
		}
	}
}
