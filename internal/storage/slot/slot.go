// Package slot keeps the created-coins list as one JSON array in a named slot,
// most recent first. It mirrors a browser local-storage entry: the whole list is
// read, modified and written back on every change.
package slot

import "context"

// DefaultName is the slot the created-coins list lives in.
const DefaultName = "createdCoins"

// Slot is a single named value.
type Slot interface {
	// Read returns the stored value, or nil when the slot was never written.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the stored value.
	Write(ctx context.Context, data []byte) error
}
