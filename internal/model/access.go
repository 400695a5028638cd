package model

import "time"

// AccessRecord binds a network address to a screen at a point in time.
// Records are appended on every identification and never rewritten.
type AccessRecord struct {
	ID             int       `db:"id"               json:"id"`
	ScreenID       int       `db:"screen_id"        json:"screen_id"`
	NetworkAddress string    `db:"network_address"  json:"network_address"`
	UserAgent      string    `db:"user_agent"       json:"user_agent"`
	LastAccessTime time.Time `db:"last_access_time" json:"last_access_time"`
	IsActive       bool      `db:"is_active"        json:"is_active"`
}
