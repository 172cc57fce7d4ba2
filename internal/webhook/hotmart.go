// Package webhook parses purchase notifications from the payment platform.
package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Purchase events that trigger report delivery.
const (
	EventPurchaseApproved = "PURCHASE_APPROVED"
	EventPurchaseComplete = "PURCHASE_COMPLETE"
)

// ErrNoBuyerEmail is returned when a purchase event carries no buyer email.
var ErrNoBuyerEmail = errors.New("buyer email not found in webhook")

// Buyer is the purchasing customer.
type Buyer struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Data is the event payload. Older payload versions put the email at the top level.
type Data struct {
	Buyer *Buyer `json:"buyer,omitempty"`
	Email string `json:"email,omitempty"`
}

// Event is a webhook notification.
type Event struct {
	ID    string `json:"id,omitempty"`
	Event string `json:"event"`
	Data  Data   `json:"data"`
}

// Parse decodes an event from r.
func Parse(r io.Reader) (*Event, error) {
	var ev Event
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	return &ev, nil
}

// IsPurchase reports whether the event confirms a purchase.
func (e *Event) IsPurchase() bool {
	return e.Event == EventPurchaseApproved || e.Event == EventPurchaseComplete
}

// BuyerEmail returns data.buyer.email, falling back to data.email.
func (e *Event) BuyerEmail() (string, error) {
	if e.Data.Buyer != nil {
		if email := strings.TrimSpace(e.Data.Buyer.Email); email != "" {
			return email, nil
		}
	}
	if email := strings.TrimSpace(e.Data.Email); email != "" {
		return email, nil
	}
	return "", ErrNoBuyerEmail
}
