package domain

import "time"

// Position is a cached layout hint for one entity node
// Kept per owner so re-filtering the graph does not reshuffle unrelated nodes
type Position struct {
	EntityID  string
	OwnerID   string
	X         float64
	Y         float64
	UpdatedAt time.Time
}
