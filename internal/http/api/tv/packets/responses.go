package packets

// RESPONSES FOR /api/tv/*

type ScreenResponse struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	LocationID   int    `json:"location_id"`
	DepartmentID *int   `json:"department_id"`
	AgencyID     int    `json:"agency_id"`
}

// ContentItemResponse mirrors model.ContentItem but flattens times to RFC3339
// and exposes the decoded target sets.
type ContentItemResponse struct {
	ID                  int    `json:"id"`
	Kind                string `json:"kind"`
	Title               string `json:"title"`
	Body                string `json:"body"`
	CreatedAt           string `json:"created_at"`
	LastUpdatedAt       string `json:"last_updated_at"`
	ExpiresAt           string `json:"expires_at"`
	TargetScreenIDs     []int  `json:"target_screen_ids"`
	TargetDepartmentIDs []int  `json:"target_department_ids"`
	TargetLocationIDs   []int  `json:"target_location_ids"`
}

type RecentDisplayResponse struct {
	DisplayedAt string `json:"displayed_at"`
	ItemType    string `json:"item_type"`
	ItemID      int    `json:"item_id"`
	ItemTitle   string `json:"item_title"`
}

type RecordDisplaysResponse struct {
	PersistedCount int  `json:"persisted_count"`
	Duplicate      bool `json:"duplicate"`
}

type CheckInResponse struct {
	ScreenID       int    `json:"screen_id"`
	NetworkAddress string `json:"network_address"`
	CheckedInAt    string `json:"checked_in_at"`
}
