package warehouse

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a stocking point.
type Kind string

const (
	KindWarehouse    Kind = "warehouse"
	KindStore        Kind = "store"
	KindDistribution Kind = "distribution"
)

// Valid reports whether k is a known location kind.
func (k Kind) Valid() bool {
	switch k {
	case KindWarehouse, KindStore, KindDistribution:
		return true
	}
	return false
}

// Location is a physical stocking point holding inventory.
type Location struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
