package model

import "time"

// Screen represents a display device in the system.
type Screen struct {
	ID              int        `db:"id"                 json:"id"`
	Name            string     `db:"name"               json:"name"`
	MacAddress      string     `db:"mac_address"        json:"mac_address"`
	LocationID      int        `db:"location_id"        json:"location_id"`
	DepartmentID    *int       `db:"department_id"      json:"department_id"`
	AgencyID        int        `db:"agency_id"          json:"agency_id"`
	IsOnline        bool       `db:"is_online"          json:"is_online"`
	LastCheckedInAt *time.Time `db:"last_checked_in_at" json:"last_checked_in_at"`
	CreatedBy       int        `db:"created_by"         json:"created_by"`
	CreatedAt       time.Time  `db:"created_at"         json:"created_at"`
}

// ScreenSummary is what an identified screen learns about itself.
type ScreenSummary struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	LocationID   int    `json:"location_id"`
	DepartmentID *int   `json:"department_id"`
	AgencyID     int    `json:"agency_id"`
}

// Summary flattens a Screen for the identification response.
func (s Screen) Summary() ScreenSummary {
	return ScreenSummary{
		ID:           s.ID,
		Name:         s.Name,
		LocationID:   s.LocationID,
		DepartmentID: s.DepartmentID,
		AgencyID:     s.AgencyID,
	}
}
