// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/haierkeys/knowledge-graph-service/internal/domain"
	"github.com/haierkeys/knowledge-graph-service/pkg/timex"
)

// EntityDTO Entity data transfer object
// EntityDTO 实体数据传输对象
type EntityDTO struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Body      domain.RichText `json:"body"`
	Tags      []string        `json:"tags"`
	CreatedAt timex.Time      `json:"createdAt"`
	UpdatedAt timex.Time      `json:"updatedAt"`
}

// EntityBrief Lightweight entity view embedded in link results
// EntityBrief 链接结果中内嵌的轻量实体视图
type EntityBrief struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// EntityModifyRequest Request parameters for creating or modifying an entity
// 用于创建或修改实体的请求参数
type EntityModifyRequest struct {
	ID         string   `json:"id" form:"id"`
	Type       string   `json:"type" form:"type" binding:"required,entitytype"`
	Title      string   `json:"title" form:"title" binding:"required"`
	BodyFormat string   `json:"bodyFormat" form:"bodyFormat"`
	BodyText   string   `json:"bodyText" form:"bodyText"`
	Tags       []string `json:"tags" form:"tags"`
}

// EntityGetRequest Request parameters for fetching one entity
type EntityGetRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// EntityDeleteRequest Request parameters for deleting an entity
type EntityDeleteRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// EntityListRequest Request parameters for listing entities
// 用于分页列出实体的请求参数
type EntityListRequest struct {
	Type    string `json:"type" form:"type" binding:"omitempty,entitytype"`
	Keyword string `json:"keyword" form:"keyword"`
}

// EntitySaveResult Result of a save, carries the reconcile outcome
// EntitySaveResult 保存结果，附带本次协调的结果
type EntitySaveResult struct {
	Entity    *EntityDTO       `json:"entity"`
	Reconcile *ReconcileResult `json:"reconcile,omitempty"`
}

// ToEntityDTO converts a domain entity to its DTO
func ToEntityDTO(e *domain.Entity) *EntityDTO {
	if e == nil {
		return nil
	}
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return &EntityDTO{
		ID:        e.ID,
		Type:      string(e.Type),
		Title:     e.Title,
		Body:      e.Body,
		Tags:      tags,
		CreatedAt: timex.Time(e.CreatedAt),
		UpdatedAt: timex.Time(e.UpdatedAt),
	}
}

// ToEntityBrief converts a domain entity to its brief view
func ToEntityBrief(e *domain.Entity) *EntityBrief {
	if e == nil {
		return nil
	}
	return &EntityBrief{ID: e.ID, Title: e.Title, Type: string(e.Type)}
}
