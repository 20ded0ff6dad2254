// README: Customer identity keyed by phone number.
package customer

import "errors"

var ErrNotFound = errors.New("customer not found")

// Customer is created on first contact; name and address fill in
// during checkout and are overwritten on every re-checkout.
type Customer struct {
	Phone   string
	Name    string
	Address string
}
