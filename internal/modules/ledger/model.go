// README: Order aggregate and status definitions.
package ledger

import (
	"time"

	"kirana/internal/types"
)

type Status string

const (
	StatusPlaced         Status = "PLACED"
	StatusAccepted       Status = "ACCEPTED"
	StatusRiderAssigned  Status = "RIDER_ASSIGNED"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
)

// forward is the fixed fulfilment sequence. Orders only ever move one
// step ahead; nothing reverts or skips.
var forward = map[Status]Status{
	StatusPlaced:         StatusAccepted,
	StatusAccepted:       StatusRiderAssigned,
	StatusRiderAssigned:  StatusOutForDelivery,
	StatusOutForDelivery: StatusDelivered,
}

func CanTransition(from, to Status) bool {
	next, ok := forward[from]
	return ok && next == to
}

// Order is an immutable priced snapshot of a checkout. Only status,
// rider assignment, and the delivery pin mutate afterwards.
type Order struct {
	ID            int64
	CustomerPhone string
	Status        Status
	StatusVersion int
	ItemTotal     types.Money
	DeliveryFee   types.Money
	GrandTotal    types.Money
	Location      *types.Point
	RiderPhone    *string
	CreatedAt     time.Time
}

// Item freezes the product name and unit price at order time; later
// catalog edits do not touch past orders.
type Item struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Name      string
	UnitPrice types.Money
	Quantity  types.Quantity
}

type Rider struct {
	Phone string
	Name  string
}
