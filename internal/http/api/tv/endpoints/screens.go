package endpoints

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/http/api"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/marquee/internal/model"
	"github.com/Nixie-Tech-LLC/marquee/internal/signage"
)

// Engine is the part of the signage service the screen-facing API uses.
type Engine interface {
	IdentifyByAddress(ctx context.Context, networkAddress, userAgent string) (model.ScreenSummary, error)
	EligibleItems(ctx context.Context, screenID int, kind model.ItemKind) ([]model.ContentItem, error)
	RecentActivity(ctx context.Context, screenID, limit int) ([]model.RecentDisplay, error)
	RecordDisplays(ctx context.Context, screenID int, events []model.DisplayInput, key string) (signage.RecordResult, error)
	CheckIn(ctx context.Context, screenID int, networkAddress, userAgent string) (model.AccessRecord, error)
}

type TvController struct {
	engine Engine
}

func newTvController(engine Engine) *TvController {
	return &TvController{engine: engine}
}

// ScreenModule mounts the read-only endpoints a screen calls without a token.
func ScreenModule(engine Engine) api.Module {
	ctl := newTvController(engine)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/identify", ctl.identify)
		c.GET("/screens/:id/menu-items", ctl.menuItems)
		c.GET("/screens/:id/news-items", ctl.newsItems)
		c.GET("/screens/:id/activity", ctl.recentActivity)
	})
}

// GET /api/tv/identify
func (t *TvController) identify(ctx *gin.Context) (any, *api.APIError) {
	summary, err := t.engine.IdentifyByAddress(ctx.Request.Context(), ctx.ClientIP(), ctx.Request.UserAgent())
	if err != nil {
		log.Debug().Err(err).Str("client_ip", ctx.ClientIP()).Msg("identify failed")
		return nil, api.FromError(ctx, "identify", err)
	}

	return packets.ScreenResponse{
		ID:           summary.ID,
		Name:         summary.Name,
		LocationID:   summary.LocationID,
		DepartmentID: summary.DepartmentID,
		AgencyID:     summary.AgencyID,
	}, nil
}

// GET /api/tv/screens/:id/menu-items
func (t *TvController) menuItems(ctx *gin.Context) (any, *api.APIError) {
	return t.eligibleItems(ctx, model.MenuItem)
}

// GET /api/tv/screens/:id/news-items
func (t *TvController) newsItems(ctx *gin.Context) (any, *api.APIError) {
	return t.eligibleItems(ctx, model.NewsItem)
}

func (t *TvController) eligibleItems(ctx *gin.Context, kind model.ItemKind) (any, *api.APIError) {
	screenID, apiErr := api.ParamID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}

	items, err := t.engine.EligibleItems(ctx.Request.Context(), screenID, kind)
	if err != nil {
		return nil, api.FromError(ctx, "eligible items", err)
	}

	tag := contentETag(items)
	ctx.Header("ETag", tag)
	if etagMatches(ctx, tag) {
		ctx.AbortWithStatus(http.StatusNotModified)
		return nil, nil
	}

	out := make([]packets.ContentItemResponse, 0, len(items))
	for _, x := range items {
		out = append(out, packets.ContentItemResponse{
			ID:                  x.ID,
			Kind:                string(x.Kind),
			Title:               x.Title,
			Body:                x.Body,
			CreatedAt:           x.CreatedAt.Format(time.RFC3339),
			LastUpdatedAt:       x.LastUpdatedAt.Format(time.RFC3339),
			ExpiresAt:           x.ExpiresAt.Format(time.RFC3339),
			TargetScreenIDs:     x.Screens.Sorted(),
			TargetDepartmentIDs: x.Departments.Sorted(),
			TargetLocationIDs:   x.Locations.Sorted(),
		})
	}
	return out, nil
}

// GET /api/tv/screens/:id/activity?limit=
func (t *TvController) recentActivity(ctx *gin.Context) (any, *api.APIError) {
	return RecentActivity(ctx, t.engine)
}

type recentActivityEngine interface {
	RecentActivity(ctx context.Context, screenID, limit int) ([]model.RecentDisplay, error)
}

// RecentActivity serves the recent displays of the :id screen. It is shared
// with the admin API.
func RecentActivity(ctx *gin.Context, engine recentActivityEngine) (any, *api.APIError) {
	screenID, apiErr := api.ParamID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid limit"}
		}
		limit = n
	}

	recent, err := engine.RecentActivity(ctx.Request.Context(), screenID, limit)
	if err != nil {
		return nil, api.FromError(ctx, "recent activity", err)
	}

	out := make([]packets.RecentDisplayResponse, 0, len(recent))
	for _, r := range recent {
		out = append(out, packets.RecentDisplayResponse{
			DisplayedAt: r.DisplayedAt.Format(time.RFC3339),
			ItemType:    string(r.ItemType),
			ItemID:      r.ItemID,
			ItemTitle:   r.ItemTitle,
		})
	}
	return out, nil
}
