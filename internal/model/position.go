package model

import "github.com/haierkeys/knowledge-graph-service/pkg/timex"

const TableNamePosition = "graph_position"

// Position mapped from table <graph_position>
// One cached layout coordinate per (owner, entity)
type Position struct {
	EntityID  string     `gorm:"column:entity_id;primaryKey;size:36" json:"entityId" form:"entityId"`
	OwnerID   string     `gorm:"column:owner_id;primaryKey;size:64" json:"ownerId" form:"ownerId"`
	X         float64    `gorm:"column:x;not null" json:"x" form:"x"`
	Y         float64    `gorm:"column:y;not null" json:"y" form:"y"`
	UpdatedAt timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName Position's table name
func (*Position) TableName() string {
	return TableNamePosition
}
