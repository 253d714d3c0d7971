// Package domain defines domain models and interfaces
package domain

import "time"

// EntityType classifies an entity
type EntityType string

const (
	EntityTypeNote  EntityType = "note"
	EntityTypeTask  EntityType = "task"
	EntityTypeEvent EntityType = "event"
)

// IsValid reports whether the type is one of the known entity types
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeNote, EntityTypeTask, EntityTypeEvent:
		return true
	}
	return false
}

// RichText is a body payload with its source format
type RichText struct {
	Format string `json:"format"` // markdown or plain
	Text   string `json:"text"`
}

// Entity is a node in the knowledge graph
type Entity struct {
	ID        string
	Type      EntityType
	Title     string
	Body      RichText
	Tags      []string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasAnyTag reports whether the entity carries at least one of the given tags
// An empty filter set matches everything
func (e *Entity) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	set := make(map[string]bool, len(e.Tags))
	for _, t := range e.Tags {
		set[t] = true
	}
	for _, t := range tags {
		if set[t] {
			return true
		}
	}
	return false
}
