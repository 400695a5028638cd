package packets

// RESPONSES FOR /api/admin/analytics/*

type ItemStatResponse struct {
	ItemID        int    `json:"item_id"`
	Title         string `json:"title"`
	DisplayCount  int    `json:"display_count"`
	LastDisplayed string `json:"last_displayed"`
}

type ScreenActivityResponse struct {
	ScreenID          int     `json:"screen_id"`
	ScreenName        string  `json:"screen_name"`
	LocationName      string  `json:"location_name"`
	DepartmentName    string  `json:"department_name"`
	AgencyName        string  `json:"agency_name"`
	TotalDisplays     int     `json:"total_displays"`
	LastActive        *string `json:"last_active"`
	IsOnline          bool    `json:"is_online"`
	IsCurrentlyActive bool    `json:"is_currently_active"`
}

type DashboardResponse struct {
	TotalScreens     int                      `json:"total_screens"`
	ActiveScreens    int                      `json:"active_screens"`
	TotalMenuItems   int                      `json:"total_menu_items"`
	TotalNewsItems   int                      `json:"total_news_items"`
	TopMenuItems     []ItemStatResponse       `json:"top_menu_items"`
	TopNewsItems     []ItemStatResponse       `json:"top_news_items"`
	ScreenActivities []ScreenActivityResponse `json:"screen_activities"`
	GeneratedAt      string                   `json:"generated_at"`
}

type ExportResponse struct {
	Location string `json:"location"`
}
