package model

import "time"

// ItemDisplayStat aggregates display events of one item.
type ItemDisplayStat struct {
	ItemID        int       `db:"item_id"        json:"item_id"`
	Title         string    `db:"title"          json:"title"`
	DisplayCount  int       `db:"display_count"  json:"display_count"`
	LastDisplayed time.Time `db:"last_displayed" json:"last_displayed"`
}

// ScreenDisplayStat is the raw per-screen aggregate as read from the store.
type ScreenDisplayStat struct {
	ScreenID        int        `db:"screen_id"`
	ScreenName      string     `db:"screen_name"`
	LocationName    *string    `db:"location_name"`
	DepartmentName  *string    `db:"department_name"`
	AgencyName      *string    `db:"agency_name"`
	IsOnline        bool       `db:"is_online"`
	LastCheckedInAt *time.Time `db:"last_checked_in_at"`
	TotalDisplays   int        `db:"total_displays"`
	LastDisplayed   *time.Time `db:"last_displayed"`
}

// DashboardData is everything the aggregator needs, read in one snapshot.
type DashboardData struct {
	TotalScreens   int
	ActiveScreens  int
	TotalMenuItems int
	TotalNewsItems int
	MenuStats      []ItemDisplayStat
	NewsStats      []ItemDisplayStat
	Screens        []ScreenDisplayStat
}

// ScreenActivity is the per-screen row of the dashboard.
//
// IsOnline is the stored flag; IsCurrentlyActive is derived from recency.
// The two are kept apart on purpose.
type ScreenActivity struct {
	ScreenID          int        `json:"screen_id"`
	ScreenName        string     `json:"screen_name"`
	LocationName      string     `json:"location_name"`
	DepartmentName    string     `json:"department_name"`
	AgencyName        string     `json:"agency_name"`
	TotalDisplays     int        `json:"total_displays"`
	LastActive        *time.Time `json:"last_active"`
	IsOnline          bool       `json:"is_online"`
	IsCurrentlyActive bool       `json:"is_currently_active"`
}

// Dashboard is the operator-facing analytics summary.
type Dashboard struct {
	TotalScreens     int               `json:"total_screens"`
	ActiveScreens    int               `json:"active_screens"`
	TotalMenuItems   int               `json:"total_menu_items"`
	TotalNewsItems   int               `json:"total_news_items"`
	TopMenuItems     []ItemDisplayStat `json:"top_menu_items"`
	TopNewsItems     []ItemDisplayStat `json:"top_news_items"`
	ScreenActivities []ScreenActivity  `json:"screen_activities"`
	GeneratedAt      time.Time         `json:"generated_at"`
}
