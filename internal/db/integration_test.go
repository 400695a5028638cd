package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// initTestDB connects to TEST_DATABASE_URL and applies the migrations. Tests
// that need a real database skip when it is not set.
func initTestDB(t *testing.T) Store {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL environment variable is not set")
	}

	require.NoError(t, Init(dbURL))
	require.NoError(t, RunMigrations("../../migrations"))
	return NewStore(DB)
}

func TestStoreIntegration(t *testing.T) {
	store := initTestDB(t)
	ctx := context.Background()

	// isolate this run by owner
	adminID := int(time.Now().UnixNano()%1_000_000_000) + 1
	now := time.Now().UTC().Truncate(time.Microsecond)

	var agencyID, locationID, screenID int
	require.NoError(t, DB.GetContext(ctx, &agencyID,
		`INSERT INTO agencies (name, created_by) VALUES ('Agency', $1) RETURNING id`, adminID))
	require.NoError(t, DB.GetContext(ctx, &locationID,
		`INSERT INTO locations (agency_id, name, created_by) VALUES ($1, 'HQ', $2) RETURNING id`, agencyID, adminID))
	require.NoError(t, DB.GetContext(ctx, &screenID, `
		INSERT INTO screens (name, mac_address, location_id, agency_id, created_by)
		VALUES ('Lobby', $1, $2, $3, $4) RETURNING id`,
		fmt.Sprintf("it-%d", adminID), locationID, agencyID, adminID))

	var menuID int
	require.NoError(t, DB.GetContext(ctx, &menuID, `
		INSERT INTO menu_items (title, expires_at, owner_admin_id, target_screen_ids)
		VALUES ('Soup', $1, $2, $3) RETURNING id`,
		now.Add(time.Hour), adminID, fmt.Sprintf("[%d]", screenID)))
	var breadID int
	require.NoError(t, DB.GetContext(ctx, &breadID, `
		INSERT INTO menu_items (title, expires_at, owner_admin_id, target_screen_ids)
		VALUES ('Bread', $1, $2, $3) RETURNING id`,
		now.Add(time.Hour), adminID, fmt.Sprintf("[%d]", screenID)))

	t.Run("Access Records", func(t *testing.T) {
		addr := fmt.Sprintf("10.%d.0.1", adminID%250)
		_, err := store.InsertAccessRecord(ctx, model.AccessRecord{
			ScreenID: screenID, NetworkAddress: addr, LastAccessTime: now, IsActive: true,
		})
		require.NoError(t, err)

		rec, err := store.LatestAccessForAddress(ctx, addr)
		require.NoError(t, err)
		assert.Equal(t, screenID, rec.ScreenID)
	})

	t.Run("Content", func(t *testing.T) {
		items, err := store.ListActiveContent(ctx, model.MenuItem, now)
		require.NoError(t, err)
		found := false
		for _, it := range items {
			if it.ID == menuID {
				found = true
				assert.Equal(t, fmt.Sprintf("[%d]", screenID), it.TargetScreenIDs)
			}
		}
		assert.True(t, found)
	})

	t.Run("Display Events", func(t *testing.T) {
		soup := make([]model.DisplayEvent, 5)
		for i := range soup {
			soup[i] = model.DisplayEvent{ScreenID: screenID, ItemType: model.MenuItem, ItemID: menuID, DisplayedAt: now}
		}
		n, err := store.InsertDisplayEvents(ctx, soup)
		require.NoError(t, err)
		assert.Equal(t, 5, n)

		// fewer but more recent displays
		later := now.Add(time.Minute)
		n, err = store.InsertDisplayEvents(ctx, []model.DisplayEvent{
			{ScreenID: screenID, ItemType: model.MenuItem, ItemID: breadID, DisplayedAt: later},
			{ScreenID: screenID, ItemType: model.MenuItem, ItemID: breadID, DisplayedAt: later},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		// the check constraint fails the whole batch
		_, err = store.InsertDisplayEvents(ctx, []model.DisplayEvent{
			{ScreenID: screenID, ItemType: model.MenuItem, ItemID: menuID, DisplayedAt: now},
			{ScreenID: screenID, ItemType: model.ItemKind("Poster"), ItemID: 1, DisplayedAt: now},
		})
		require.Error(t, err)
		assert.True(t, IsConstraintViolation(err))

		recent, err := store.ListRecentDisplays(ctx, screenID, 3)
		require.NoError(t, err)
		require.Len(t, recent, 3)
		assert.Equal(t, "Bread", recent[0].ItemTitle)
		assert.Equal(t, "Bread", recent[1].ItemTitle)
		assert.Equal(t, "Soup", recent[2].ItemTitle)
	})

	t.Run("Dashboard", func(t *testing.T) {
		data, err := store.LoadDashboard(ctx, adminID)
		require.NoError(t, err)
		assert.Equal(t, 1, data.TotalScreens)
		assert.Equal(t, 2, data.TotalMenuItems)
		assert.Empty(t, data.NewsStats)

		require.Len(t, data.MenuStats, 2)
		assert.Equal(t, menuID, data.MenuStats[0].ItemID)
		assert.Equal(t, "Soup", data.MenuStats[0].Title)
		assert.Equal(t, 5, data.MenuStats[0].DisplayCount)
		assert.True(t, data.MenuStats[0].LastDisplayed.Equal(now))
		assert.Equal(t, breadID, data.MenuStats[1].ItemID)
		assert.Equal(t, 2, data.MenuStats[1].DisplayCount)
		assert.True(t, data.MenuStats[1].LastDisplayed.Equal(now.Add(time.Minute)))

		require.Len(t, data.Screens, 1)
		assert.Equal(t, 7, data.Screens[0].TotalDisplays)
		assert.Equal(t, "HQ", *data.Screens[0].LocationName)
	})

	t.Run("Check In", func(t *testing.T) {
		require.NoError(t, store.MarkScreenCheckedIn(ctx, screenID, now))
		screen, err := store.GetScreenByID(ctx, screenID)
		require.NoError(t, err)
		assert.True(t, screen.IsOnline)
	})
}
