package packets

// REQUESTS FOR /api/tv/*

// DisplayEventRequest is one impression. screen_id is accepted for older
// players and ignored; the authenticated screen is always used.
type DisplayEventRequest struct {
	ItemType string `json:"item_type" binding:"required"`
	ItemID   *int   `json:"item_id" binding:"required"`
	ScreenID *int   `json:"screen_id"`
}

type RecordDisplaysRequest struct {
	Events []DisplayEventRequest `json:"events" binding:"dive"`
}
