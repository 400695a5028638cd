package signage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// Dashboard summarizes display history for the admin carried by ctx, or for
// everything when ctx carries no admin.
func (s *Service) Dashboard(ctx context.Context) (model.Dashboard, error) {
	adminID, _ := AdminFromContext(ctx)

	if s.cache != nil {
		if d, ok := s.cache.GetDashboard(ctx, adminID); ok {
			return d, nil
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := s.store.LoadDashboard(ctx, adminID)
	if err != nil {
		log.Error().Err(err).Int("admin_id", adminID).Msg("failed to load dashboard")
		return model.Dashboard{}, storeError("load dashboard", 0, err)
	}

	d := s.summarize(data)
	if s.cache != nil {
		s.cache.SetDashboard(ctx, adminID, d)
	}
	return d, nil
}

func (s *Service) summarize(data model.DashboardData) model.Dashboard {
	now := s.now()
	d := model.Dashboard{
		TotalScreens:     data.TotalScreens,
		ActiveScreens:    data.ActiveScreens,
		TotalMenuItems:   data.TotalMenuItems,
		TotalNewsItems:   data.TotalNewsItems,
		TopMenuItems:     topItems(data.MenuStats, s.cfg.TopItemsLimit),
		TopNewsItems:     topItems(data.NewsStats, s.cfg.TopItemsLimit),
		ScreenActivities: make([]model.ScreenActivity, 0, len(data.Screens)),
		GeneratedAt:      now.UTC(),
	}

	for _, sc := range data.Screens {
		lastActive := sc.LastDisplayed
		if lastActive == nil {
			lastActive = sc.LastCheckedInAt
		}
		d.ScreenActivities = append(d.ScreenActivities, model.ScreenActivity{
			ScreenID:          sc.ScreenID,
			ScreenName:        sc.ScreenName,
			LocationName:      deref(sc.LocationName),
			DepartmentName:    deref(sc.DepartmentName),
			AgencyName:        deref(sc.AgencyName),
			TotalDisplays:     sc.TotalDisplays,
			LastActive:        lastActive,
			IsOnline:          sc.IsOnline,
			IsCurrentlyActive: lastActive != nil && now.Sub(*lastActive) < s.cfg.ActivityWindow,
		})
	}
	sort.Slice(d.ScreenActivities, func(i, j int) bool {
		return d.ScreenActivities[i].ScreenID < d.ScreenActivities[j].ScreenID
	})
	return d
}

// topItems ranks by display count, then most recent display, then id.
func topItems(stats []model.ItemDisplayStat, limit int) []model.ItemDisplayStat {
	out := make([]model.ItemDisplayStat, len(stats))
	copy(out, stats)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DisplayCount != b.DisplayCount {
			return a.DisplayCount > b.DisplayCount
		}
		if !a.LastDisplayed.Equal(b.LastDisplayed) {
			return a.LastDisplayed.After(b.LastDisplayed)
		}
		return a.ItemID < b.ItemID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RecentActivity returns the latest displays on screenID, newest first.
// limit <= 0 means DefaultRecentLimit. An unknown screen gets an empty list.
func (s *Service) RecentActivity(ctx context.Context, screenID, limit int) ([]model.RecentDisplay, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	screen, err := s.store.GetScreenByID(ctx, screenID)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.RecentDisplay{}, nil
	}
	if err != nil {
		return nil, storeError("load screen", 0, err)
	}
	if adminID, ok := AdminFromContext(ctx); ok && screen.CreatedBy != adminID {
		return nil, ErrForbidden
	}

	out, err := s.store.ListRecentDisplays(ctx, screenID, limit)
	if err != nil {
		return nil, storeError("recent activity", 0, err)
	}
	if out == nil {
		out = []model.RecentDisplay{}
	}
	return out, nil
}

// ExportDashboard archives the current dashboard as JSON and returns where
// it was written.
func (s *Service) ExportDashboard(ctx context.Context) (string, error) {
	if s.archive == nil {
		return "", ErrExportDisabled
	}

	d, err := s.Dashboard(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal dashboard: %w", err)
	}

	adminID, _ := AdminFromContext(ctx)
	key := fmt.Sprintf("analytics/dashboard_admin%d_%s.json", adminID, d.GeneratedAt.Format("20060102T150405Z"))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	location, err := s.archive.Put(ctx, key, body, "application/json")
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to export dashboard")
		return "", fmt.Errorf("export dashboard: %w", err)
	}
	log.Info().Str("location", location).Int("admin_id", adminID).Msg("exported dashboard")
	return location, nil
}
