package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/http/api"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// TelemetryModule mounts the endpoints an authenticated screen reports to.
// The group must run middleware.ScreenAuth.
func TelemetryModule(engine Engine) api.Module {
	ctl := newTvController(engine)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/displays", ctl.recordDisplays)
		c.POST("/checkin", ctl.checkIn)
	})
}

// POST /api/tv/displays
func (t *TvController) recordDisplays(ctx *gin.Context) (any, *api.APIError) {
	screenID, ok := middleware.GetCurrentScreenID(ctx)
	if !ok {
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	}

	var request packets.RecordDisplaysRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		log.Warn().Err(err).Int("screen_id", screenID).Msg("[displays] malformed batch")
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	events := make([]model.DisplayInput, 0, len(request.Events))
	for _, ev := range request.Events {
		events = append(events, model.DisplayInput{
			ItemType: model.ItemKind(ev.ItemType),
			ItemID:   *ev.ItemID,
			ScreenID: ev.ScreenID,
		})
	}

	res, err := t.engine.RecordDisplays(ctx.Request.Context(), screenID, events, ctx.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Int("batch", len(events)).Msg("[displays] record failed")
		return nil, api.FromError(ctx, "record displays", err)
	}

	return packets.RecordDisplaysResponse{
		PersistedCount: res.Persisted,
		Duplicate:      res.Duplicate,
	}, nil
}

// POST /api/tv/checkin
func (t *TvController) checkIn(ctx *gin.Context) (any, *api.APIError) {
	screenID, ok := middleware.GetCurrentScreenID(ctx)
	if !ok {
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	}

	rec, err := t.engine.CheckIn(ctx.Request.Context(), screenID, ctx.ClientIP(), ctx.Request.UserAgent())
	if err != nil {
		return nil, api.FromError(ctx, "check in", err)
	}

	return packets.CheckInResponse{
		ScreenID:       rec.ScreenID,
		NetworkAddress: rec.NetworkAddress,
		CheckedInAt:    rec.LastAccessTime.Format(time.RFC3339),
	}, nil
}
