
package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator produces lexicographically sortable IDs for wallets,
// balances, journal entries, and rate samples.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new ULID string.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
