package domain

import "time"

// Link is a directed edge between two entities
// Invariants: SourceID != TargetID, unique on (SourceID, TargetID, Type)
type Link struct {
	ID        string
	SourceID  string
	TargetID  string
	Type      string // wikilink, tasklink, eventlink
	OwnerID   string
	CreatedAt time.Time
}

// Link type constants, derived from the target entity type
const (
	LinkTypeWiki  = "wikilink"
	LinkTypeTask  = "tasklink"
	LinkTypeEvent = "eventlink"
)

// LinkTypeForEntity maps a target entity type to the edge type
func LinkTypeForEntity(t EntityType) string {
	switch t {
	case EntityTypeTask:
		return LinkTypeTask
	case EntityTypeEvent:
		return LinkTypeEvent
	default:
		return LinkTypeWiki
	}
}
