package model

import (
	"time"

	"github.com/google/uuid"
)

// Item is a catalog entry owned by exactly one node. Items are removed
// together with their owner (FK cascade).
type Item struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NodeID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_items_node_name_model,priority:1"`
	Node        *Node     `gorm:"foreignKey:NodeID;constraint:OnDelete:CASCADE"`
	Name        string    `gorm:"not null;uniqueIndex:idx_items_node_name_model,priority:2"`
	Model       string    `gorm:"not null;uniqueIndex:idx_items_node_name_model,priority:3"`
	ReleaseDate time.Time `gorm:"type:date;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Item) TableName() string { return "items" }
