package endpoints

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/marquee/internal/http/api"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/marquee/internal/membership"
	"github.com/Nixie-Tech-LLC/marquee/internal/model"
	"github.com/Nixie-Tech-LLC/marquee/internal/signage"
)

const testSecret = "tv-secret"

type fakeEngine struct {
	items     []model.ContentItem
	itemsErr  error
	summary   model.ScreenSummary
	identErr  error
	recent    []model.RecentDisplay
	recordErr error
	result    signage.RecordResult

	gotScreenID int
	gotEvents   []model.DisplayInput
	gotKey      string
	gotKind     model.ItemKind
	gotLimit    int
	gotAddr     string
}

func (f *fakeEngine) IdentifyByAddress(_ context.Context, addr, _ string) (model.ScreenSummary, error) {
	f.gotAddr = addr
	return f.summary, f.identErr
}

func (f *fakeEngine) EligibleItems(_ context.Context, screenID int, kind model.ItemKind) ([]model.ContentItem, error) {
	f.gotScreenID, f.gotKind = screenID, kind
	return f.items, f.itemsErr
}

func (f *fakeEngine) RecentActivity(_ context.Context, screenID, limit int) ([]model.RecentDisplay, error) {
	f.gotScreenID, f.gotLimit = screenID, limit
	return f.recent, nil
}

func (f *fakeEngine) RecordDisplays(_ context.Context, screenID int, events []model.DisplayInput, key string) (signage.RecordResult, error) {
	f.gotScreenID, f.gotEvents, f.gotKey = screenID, events, key
	return f.result, f.recordErr
}

func (f *fakeEngine) CheckIn(_ context.Context, screenID int, addr, _ string) (model.AccessRecord, error) {
	f.gotScreenID, f.gotAddr = screenID, addr
	return model.AccessRecord{
		ScreenID:       screenID,
		NetworkAddress: addr,
		LastAccessTime: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		IsActive:       true,
	}, nil
}

func newRouter(engine Engine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/tv"}, ScreenModule(engine))
	api.MountGroup(r, api.GroupConfig{
		Prefix:     "/api/tv",
		Middleware: []gin.HandlerFunc{middleware.ScreenAuth(middleware.JWTScreenIdentity{Secret: testSecret})},
	}, TelemetryModule(engine))
	return r
}

func serve(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func screenAuth(t *testing.T, screenID int) map[string]string {
	t.Helper()
	token, err := middleware.GenerateScreenToken(screenID, testSecret)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestIdentify(t *testing.T) {
	t.Run("known address", func(t *testing.T) {
		engine := &fakeEngine{summary: model.ScreenSummary{ID: 7, Name: "Lobby", LocationID: 2, AgencyID: 1}}
		w := serve(newRouter(engine), http.MethodGet, "/api/tv/identify", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":7,"name":"Lobby","location_id":2,"department_id":null,"agency_id":1}`, w.Body.String())
		assert.Equal(t, "192.0.2.1", engine.gotAddr)
	})

	t.Run("unknown address", func(t *testing.T) {
		engine := &fakeEngine{identErr: signage.ErrNotFound}
		w := serve(newRouter(engine), http.MethodGet, "/api/tv/identify", "", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
	})
}

func TestEligibleItemsEndpoint(t *testing.T) {
	updated := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	items := []model.ContentItem{{
		ID: 3, Kind: model.NewsItem, Title: "Closure", LastUpdatedAt: updated,
		ExpiresAt: updated.Add(time.Hour), Screens: membership.NewSet(7, 2),
	}}

	t.Run("lists items with etag", func(t *testing.T) {
		engine := &fakeEngine{items: items}
		w := serve(newRouter(engine), http.MethodGet, "/api/tv/screens/7/news-items", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, model.NewsItem, engine.gotKind)
		assert.Equal(t, 7, engine.gotScreenID)
		assert.NotEmpty(t, w.Header().Get("ETag"))
		assert.Contains(t, w.Body.String(), `"target_screen_ids":[2,7]`)
		assert.Contains(t, w.Body.String(), `"expires_at":"2025-06-01T09:00:00Z"`)
	})

	t.Run("not modified", func(t *testing.T) {
		engine := &fakeEngine{items: items}
		r := newRouter(engine)
		first := serve(r, http.MethodGet, "/api/tv/screens/7/menu-items", "", nil)
		tag := first.Header().Get("ETag")

		w := serve(r, http.MethodGet, "/api/tv/screens/7/menu-items", "", map[string]string{"If-None-Match": tag})
		assert.Equal(t, http.StatusNotModified, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("etag changes with updates", func(t *testing.T) {
		changed := append([]model.ContentItem(nil), items...)
		changed[0].LastUpdatedAt = updated.Add(time.Second)
		assert.NotEqual(t, contentETag(items), contentETag(changed))
	})

	t.Run("unknown screen gets empty list", func(t *testing.T) {
		engine := &fakeEngine{items: []model.ContentItem{}}
		w := serve(newRouter(engine), http.MethodGet, "/api/tv/screens/404/menu-items", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("bad id", func(t *testing.T) {
		w := serve(newRouter(&fakeEngine{}), http.MethodGet, "/api/tv/screens/abc/menu-items", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("transient failure", func(t *testing.T) {
		engine := &fakeEngine{itemsErr: &signage.StoreError{Op: "list", Retryable: true, Err: &pq.Error{Code: "08006"}}}
		w := serve(newRouter(engine), http.MethodGet, "/api/tv/screens/7/menu-items", "", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
	})
}

func TestRecordDisplaysEndpoint(t *testing.T) {
	body := `{"events":[{"item_type":"MenuItem","item_id":3,"screen_id":99},{"item_type":"NewsItem","item_id":0}]}`

	t.Run("records for the token's screen", func(t *testing.T) {
		engine := &fakeEngine{result: signage.RecordResult{Persisted: 2}}
		headers := screenAuth(t, 7)
		headers[IdempotencyKeyHeader] = "batch-1"

		w := serve(newRouter(engine), http.MethodPost, "/api/tv/displays", body, headers)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"persisted_count":2,"duplicate":false}`, w.Body.String())
		assert.Equal(t, 7, engine.gotScreenID)
		assert.Equal(t, "batch-1", engine.gotKey)
		require.Len(t, engine.gotEvents, 2)
		assert.Equal(t, model.MenuItem, engine.gotEvents[0].ItemType)
		assert.Equal(t, 0, engine.gotEvents[1].ItemID)
	})

	t.Run("requires a screen token", func(t *testing.T) {
		w := serve(newRouter(&fakeEngine{}), http.MethodPost, "/api/tv/displays", body, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing item id", func(t *testing.T) {
		engine := &fakeEngine{}
		w := serve(newRouter(engine), http.MethodPost, "/api/tv/displays",
			`{"events":[{"item_type":"MenuItem"}]}`, screenAuth(t, 7))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, engine.gotEvents)
	})

	t.Run("validation error", func(t *testing.T) {
		engine := &fakeEngine{recordErr: &signage.ValidationError{Field: "events", Reason: "batch is empty"}}
		w := serve(newRouter(engine), http.MethodPost, "/api/tv/displays", `{"events":[]}`, screenAuth(t, 7))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"events: batch is empty"}`, w.Body.String())
	})

	t.Run("in flight", func(t *testing.T) {
		engine := &fakeEngine{recordErr: signage.ErrBatchInFlight}
		w := serve(newRouter(engine), http.MethodPost, "/api/tv/displays", body, screenAuth(t, 7))
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestCheckInEndpoint(t *testing.T) {
	engine := &fakeEngine{}
	w := serve(newRouter(engine), http.MethodPost, "/api/tv/checkin", "", screenAuth(t, 5))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"screen_id":5,"network_address":"192.0.2.1","checked_in_at":"2025-06-01T09:00:00Z"}`, w.Body.String())
}

func TestRecentActivityEndpoint(t *testing.T) {
	engine := &fakeEngine{recent: []model.RecentDisplay{
		{DisplayedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), ItemType: model.MenuItem, ItemID: 1, ItemTitle: "Soup"},
	}}
	r := newRouter(engine)

	w := serve(r, http.MethodGet, "/api/tv/screens/7/activity?limit=20", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, engine.gotLimit)
	assert.JSONEq(t, `[{"displayed_at":"2025-06-01T09:00:00Z","item_type":"MenuItem","item_id":1,"item_title":"Soup"}]`, w.Body.String())

	w = serve(r, http.MethodGet, "/api/tv/screens/7/activity?limit=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
