package models

import (
	"time"
)

// Artwork represents one inventory record of the gallery catalog.
//
// The website fields (titles, year, type, dimensions, materials, duration,
// source/thumbnail URLs) are the only fields the import pipeline is allowed
// to write. Everything below the curator marker is operator-owned and must
// never be touched by an import.
type Artwork struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Website fields
	TitleEN      string `json:"title_en" gorm:"index"`
	TitleCN      string `json:"title_cn,omitempty"`
	Year         string `json:"year,omitempty"`
	Type         string `json:"type,omitempty" gorm:"index"`
	Dimensions   string `json:"dimensions,omitempty"`
	Materials    string `json:"materials,omitempty"`
	Duration     string `json:"duration,omitempty"`
	SourceURL    string `json:"source_url,omitempty" gorm:"uniqueIndex;size:1024"`
	ThumbnailURL string `json:"thumbnail_url,omitempty" gorm:"type:text"`

	// Curator-owned fields
	Status       string `json:"status,omitempty" gorm:"index"` // e.g. available, on_loan, sold
	Location     string `json:"location,omitempty"`
	Price        string `json:"price,omitempty"`
	SaleInfo     string `json:"sale_info,omitempty" gorm:"type:text"`
	InventoryNum string `json:"inventory_num,omitempty" gorm:"index"`
	Notes        string `json:"notes,omitempty" gorm:"type:text"`
}

// TableName sets the explicit table name for GORM.
func (Artwork) TableName() string {
	return "artworks"
}
