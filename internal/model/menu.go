package model

import (
	"time"

	"github.com/google/uuid"
)

// UserMenuOrder is one user's explicit position for one page
type UserMenuOrder struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_page" json:"user_id"`
	PageID    uint      `gorm:"not null;uniqueIndex:idx_user_page" json:"page_id"`
	Page      *Page     `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE" json:"-"`
	SortOrder int       `gorm:"not null" json:"sort_order"`
	Timestamps
}

// UserMenuPreference decides whether UserMenuOrder rows are consulted at all
type UserMenuPreference struct {
	UserID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	UsePersonalOrder bool      `gorm:"not null;default:false" json:"use_personal_order"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PageOrder is a requested position for a page in a personal menu
type PageOrder struct {
	PageID    uint `json:"pageId" validate:"required,gt=0"`
	SortOrder int  `json:"sortOrder" validate:"gte=0"`
}

// MenuEntry is one page as rendered in a user's menu
type MenuEntry struct {
	PageID      uint   `json:"pageId"`
	PageName    string `json:"pageName"`
	PagePath    string `json:"pagePath"`
	PageTitleEn string `json:"pageTitleEn,omitempty"`
	PageTitleKm string `json:"pageTitleKm,omitempty"`
	Icon        string `json:"icon,omitempty"`
	SortOrder   int    `json:"sortOrder"`
}
