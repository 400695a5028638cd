package endpoints

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/http/api"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/api/admin/analytics/packets"
	tvendpoints "github.com/Nixie-Tech-LLC/marquee/internal/http/api/tv/endpoints"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// Engine is the part of the signage service operators query.
type Engine interface {
	Dashboard(ctx context.Context) (model.Dashboard, error)
	RecentActivity(ctx context.Context, screenID, limit int) ([]model.RecentDisplay, error)
	ExportDashboard(ctx context.Context) (string, error)
}

type AnalyticsController struct {
	engine Engine
}

func newAnalyticsController(engine Engine) *AnalyticsController {
	return &AnalyticsController{engine: engine}
}

// AnalyticsModule mounts the authenticated analytics endpoints. Every query
// is scoped to the admin in the token.
func AnalyticsModule(engine Engine) api.Module {
	ctl := newAnalyticsController(engine)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/analytics/dashboard", ctl.dashboard)
		c.POST("/analytics/export", ctl.export)
		c.GET("/screens/:id/activity", ctl.screenActivity)
	})
}

// GET /api/admin/analytics/dashboard
func (a *AnalyticsController) dashboard(ctx *gin.Context) (any, *api.APIError) {
	d, err := a.engine.Dashboard(ctx.Request.Context())
	if err != nil {
		adminID, _ := middleware.GetCurrentAdminID(ctx)
		log.Error().Err(err).Int("admin_id", adminID).Msg("[analytics] dashboard failed")
		return nil, api.FromError(ctx, "dashboard", err)
	}
	return toDashboardResponse(d), nil
}

// GET /api/admin/screens/:id/activity
func (a *AnalyticsController) screenActivity(ctx *gin.Context) (any, *api.APIError) {
	return tvendpoints.RecentActivity(ctx, a.engine)
}

// POST /api/admin/analytics/export
func (a *AnalyticsController) export(ctx *gin.Context) (any, *api.APIError) {
	location, err := a.engine.ExportDashboard(ctx.Request.Context())
	if err != nil {
		return nil, api.FromError(ctx, "export dashboard", err)
	}
	return packets.ExportResponse{Location: location}, nil
}

func toDashboardResponse(d model.Dashboard) packets.DashboardResponse {
	out := packets.DashboardResponse{
		TotalScreens:     d.TotalScreens,
		ActiveScreens:    d.ActiveScreens,
		TotalMenuItems:   d.TotalMenuItems,
		TotalNewsItems:   d.TotalNewsItems,
		TopMenuItems:     toItemStats(d.TopMenuItems),
		TopNewsItems:     toItemStats(d.TopNewsItems),
		ScreenActivities: make([]packets.ScreenActivityResponse, 0, len(d.ScreenActivities)),
		GeneratedAt:      d.GeneratedAt.Format(time.RFC3339),
	}
	for _, s := range d.ScreenActivities {
		var lastActive *string
		if s.LastActive != nil {
			v := s.LastActive.Format(time.RFC3339)
			lastActive = &v
		}
		out.ScreenActivities = append(out.ScreenActivities, packets.ScreenActivityResponse{
			ScreenID:          s.ScreenID,
			ScreenName:        s.ScreenName,
			LocationName:      s.LocationName,
			DepartmentName:    s.DepartmentName,
			AgencyName:        s.AgencyName,
			TotalDisplays:     s.TotalDisplays,
			LastActive:        lastActive,
			IsOnline:          s.IsOnline,
			IsCurrentlyActive: s.IsCurrentlyActive,
		})
	}
	return out
}

func toItemStats(stats []model.ItemDisplayStat) []packets.ItemStatResponse {
	out := make([]packets.ItemStatResponse, 0, len(stats))
	for _, s := range stats {
		out = append(out, packets.ItemStatResponse{
			ItemID:        s.ItemID,
			Title:         s.Title,
			DisplayCount:  s.DisplayCount,
			LastDisplayed: s.LastDisplayed.Format(time.RFC3339),
		})
	}
	return out
}
