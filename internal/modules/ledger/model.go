package ledger

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType is a closed set; the stock engine has one effect handler
// per variant. Adding a type means adding a variant here and a case in
// Effects.
type TransactionType string

const (
	TypePurchase   TransactionType = "purchase"   // stock received into a location
	TypeShipment   TransactionType = "shipment"   // stock sold/shipped out of a location
	TypeTransfer   TransactionType = "transfer"   // stock moved between two locations
	TypeAdjustment TransactionType = "adjustment" // manual correction or initial seeding
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TypePurchase, TypeShipment, TypeTransfer, TypeAdjustment:
		return true
	}
	return false
}

// Transaction is one immutable, committed quantity-changing event.
// Corrections are new compensating transactions, never edits.
//
// Quantity is positive for purchases, shipments and transfers; the direction
// of the stock movement is implied by the type. Adjustments carry a signed
// delta ("shift by N"), matching how corrections and seeding are expressed.
type Transaction struct {
	ID             uuid.UUID       `json:"id"`
	Type           TransactionType `json:"type"`
	ProductID      uuid.UUID       `json:"product_id"`
	LocationID     uuid.UUID       `json:"location_id"`
	DestLocationID *uuid.UUID      `json:"dest_location_id,omitempty"` // transfers only
	Quantity       int             `json:"quantity"`
	Reference      string          `json:"reference,omitempty"`
	Note           string          `json:"note,omitempty"`
	ActorID        string          `json:"actor_id,omitempty"`
	RecordedAt     time.Time       `json:"recorded_at"`
}

// Effect is the signed change a transaction applies to one inventory row.
type Effect struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Delta      int
}

// Effects expands the transaction into its per-row signed deltas, one
// handler per type. A transfer yields two effects; they must be applied
// atomically or not at all.
func (t *Transaction) Effects() []Effect {
	switch t.Type {
	case TypePurchase:
		return []Effect{{t.ProductID, t.LocationID, t.Quantity}}
	case TypeShipment:
		return []Effect{{t.ProductID, t.LocationID, -t.Quantity}}
	case TypeTransfer:
		return []Effect{
			{t.ProductID, t.LocationID, -t.Quantity},
			{t.ProductID, *t.DestLocationID, t.Quantity},
		}
	case TypeAdjustment:
		return []Effect{{t.ProductID, t.LocationID, t.Quantity}}
	}
	return nil
}

// StockChange reports the before/after quantities at one affected row.
// WentNegative is set when negative inventory is allowed and the row
// dropped below zero.
type StockChange struct {
	ProductID    uuid.UUID `json:"product_id"`
	LocationID   uuid.UUID `json:"location_id"`
	Before       int       `json:"before"`
	After        int       `json:"after"`
	WentNegative bool      `json:"went_negative,omitempty"`
}

// Pair keys an inventory row.
type Pair struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
}

// Replay folds an ordered transaction log into per-row quantities, starting
// from zero. The stock engine maintains the same totals incrementally; the
// two must always agree.
func Replay(transactions []*Transaction) map[Pair]int {
	quantities := make(map[Pair]int)
	for _, t := range transactions {
		for _, e := range t.Effects() {
			quantities[Pair{e.ProductID, e.LocationID}] += e.Delta
		}
	}
	return quantities
}

// RecordRequest is the payload for recording a transaction. RequestID is an
// optional client-chosen key used to reject duplicate submissions.
type RecordRequest struct {
	Type           TransactionType `json:"type"`
	ProductID      string          `json:"product_id"`
	LocationID     string          `json:"location_id"`
	DestLocationID string          `json:"dest_location_id,omitempty"`
	Quantity       int             `json:"quantity"`
	Reference      string          `json:"reference,omitempty"`
	Note           string          `json:"note,omitempty"`
	RequestID      string          `json:"request_id,omitempty"`
	ActorID        string          `json:"-"`
	OccurredAt     *time.Time      `json:"-"` // simulation stamps the simulated day
}

// ListFilter narrows and pages a transaction listing.
type ListFilter struct {
	ProductID  string
	LocationID string
	Type       TransactionType
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}
