package model

import (
	"time"

	"github.com/Nixie-Tech-LLC/marquee/internal/membership"
)

// ItemKind tags which content feed an item or display event belongs to.
type ItemKind string

const (
	MenuItem ItemKind = "MenuItem"
	NewsItem ItemKind = "NewsItem"
)

// Valid reports whether k is one of the known feeds.
func (k ItemKind) Valid() bool {
	return k == MenuItem || k == NewsItem
}

// ContentItem is a menu or news item. Both feeds share one shape.
//
// The Target*IDs columns hold the raw encoded membership text; the decoded
// sets are filled in by the engine and are never persisted from here.
type ContentItem struct {
	ID                  int       `db:"id"                    json:"id"`
	Kind                ItemKind  `db:"-"                     json:"kind"`
	Title               string    `db:"title"                 json:"title"`
	Body                string    `db:"body"                  json:"body"`
	CreatedAt           time.Time `db:"created_at"            json:"created_at"`
	LastUpdatedAt       time.Time `db:"last_updated_at"       json:"last_updated_at"`
	ExpiresAt           time.Time `db:"expires_at"            json:"expires_at"`
	IsActive            bool      `db:"is_active"             json:"is_active"`
	OwnerAdminID        int       `db:"owner_admin_id"        json:"owner_admin_id"`
	TargetDepartmentIDs string    `db:"target_department_ids" json:"-"`
	TargetScreenIDs     string    `db:"target_screen_ids"     json:"-"`
	TargetLocationIDs   string    `db:"target_location_ids"   json:"-"`

	Departments membership.Set `db:"-" json:"-"`
	Screens     membership.Set `db:"-" json:"-"`
	Locations   membership.Set `db:"-" json:"-"`
}
