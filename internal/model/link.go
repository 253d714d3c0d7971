package model

import "github.com/haierkeys/knowledge-graph-service/pkg/timex"

const TableNameLink = "link"

// Link mapped from table <link>
// Uniqueness on (source_id, target_id, type) keeps re-resolving idempotent
type Link struct {
	ID        string     `gorm:"column:id;primaryKey;size:36" json:"id" form:"id"`
	SourceID  string     `gorm:"column:source_id;not null;index:idx_source;uniqueIndex:uidx_edge,priority:1;size:36" json:"sourceId" form:"sourceId"`
	TargetID  string     `gorm:"column:target_id;not null;index:idx_target;uniqueIndex:uidx_edge,priority:2;size:36" json:"targetId" form:"targetId"`
	Type      string     `gorm:"column:type;not null;uniqueIndex:uidx_edge,priority:3;size:16" json:"type" form:"type"`
	OwnerID   string     `gorm:"column:owner_id;not null;index:idx_owner;size:64" json:"ownerId" form:"ownerId"`
	CreatedAt timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
}

// TableName Link's table name
func (*Link) TableName() string {
	return TableNameLink
}
