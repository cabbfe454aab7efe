// Package inventory supplies perishable item snapshots to the alert engine.
package inventory

import (
	"context"
	"time"

	"github.com/nixlim/pantry-alerts/internal/alerts"
)

// DateLayout is the civil-date format used for expiration dates.
const DateLayout = "2006-01-02"

// Source yields the current inventory on demand.
type Source interface {
	Snapshots(ctx context.Context) ([]alerts.InventorySnapshot, error)
}

// Item is one inventory row as stored on disk.
type Item struct {
	ItemID         string `json:"item_id"`
	Name           string `json:"name"`
	Category       string `json:"category,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
}

// StaticSource serves a fixed snapshot list.
type StaticSource []alerts.InventorySnapshot

func (s StaticSource) Snapshots(ctx context.Context) ([]alerts.InventorySnapshot, error) {
	out := make([]alerts.InventorySnapshot, len(s))
	copy(out, s)
	return out, nil
}

// ParseDate parses a YYYY-MM-DD expiration date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
