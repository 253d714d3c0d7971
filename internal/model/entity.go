package model

import (
	"github.com/haierkeys/knowledge-graph-service/pkg/timex"

	"gorm.io/datatypes"
)

const TableNameEntity = "entity"

// Entity mapped from table <entity>
type Entity struct {
	ID         string         `gorm:"column:id;primaryKey;size:36" json:"id" form:"id"`
	Type       string         `gorm:"column:type;not null;index:idx_owner_type,priority:2;size:16" json:"type" form:"type"`
	Title      string         `gorm:"column:title;not null;index:idx_owner_title,priority:2" json:"title" form:"title"`
	TitleLower string         `gorm:"column:title_lower;not null;index:idx_owner_title_lower,priority:2" json:"-"`
	BodyFormat string         `gorm:"column:body_format;default:markdown;size:16" json:"bodyFormat" form:"bodyFormat"`
	BodyText   string         `gorm:"column:body_text;type:text" json:"bodyText" form:"bodyText"`
	Tags       datatypes.JSON `gorm:"column:tags" json:"tags" form:"tags"`
	OwnerID    string         `gorm:"column:owner_id;not null;index:idx_owner_type,priority:1;index:idx_owner_title,priority:1;index:idx_owner_title_lower,priority:1;size:64" json:"ownerId" form:"ownerId"`
	CreatedAt  timex.Time     `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt  timex.Time     `gorm:"column:updated_at;type:datetime;default:NULL;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName Entity's table name
func (*Entity) TableName() string {
	return TableNameEntity
}
