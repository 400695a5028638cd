package model

import "time"

// DisplayEvent records that a screen rendered an item. Immutable.
type DisplayEvent struct {
	ID          int       `db:"id"           json:"id"`
	ScreenID    int       `db:"screen_id"    json:"screen_id"`
	ItemType    ItemKind  `db:"item_type"    json:"item_type"`
	ItemID      int       `db:"item_id"      json:"item_id"`
	DisplayedAt time.Time `db:"displayed_at" json:"displayed_at"`
}

// DisplayInput is one impression as submitted by a screen.
// ScreenID is accepted for compatibility and always overwritten.
type DisplayInput struct {
	ItemType ItemKind
	ItemID   int
	ScreenID *int
}

// RecentDisplay is a display event joined with the item title.
type RecentDisplay struct {
	DisplayedAt time.Time `db:"displayed_at" json:"displayed_at"`
	ItemType    ItemKind  `db:"item_type"    json:"item_type"`
	ItemID      int       `db:"item_id"      json:"item_id"`
	ItemTitle   string    `db:"item_title"   json:"item_title"`
}
