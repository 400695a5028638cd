package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

type dashboardCounts struct {
	TotalScreens   int `db:"total_screens"`
	ActiveScreens  int `db:"active_screens"`
	TotalMenuItems int `db:"total_menu_items"`
	TotalNewsItems int `db:"total_news_items"`
}

// LoadDashboard reads every aggregate the dashboard needs inside a single
// REPEATABLE READ, read-only transaction so counts and rankings agree with
// each other while display events keep arriving. adminID 0 is unscoped.
func (s *pgStore) LoadDashboard(ctx context.Context, adminID int) (model.DashboardData, error) {
	var out model.DashboardData

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		log.Error().Err(err).Int("admin_id", adminID).Msg("failed to open dashboard snapshot")
		return out, fmt.Errorf("begin dashboard snapshot: %w", err)
	}
	defer tx.Rollback()

	var counts dashboardCounts
	if err := tx.GetContext(ctx, &counts, `
		SELECT
		  (SELECT COUNT(*) FROM screens WHERE ($1 = 0 OR created_by = $1)) AS total_screens,
		  (SELECT COUNT(*) FROM screens WHERE is_online = TRUE AND ($1 = 0 OR created_by = $1)) AS active_screens,
		  (SELECT COUNT(*) FROM menu_items WHERE ($1 = 0 OR owner_admin_id = $1)) AS total_menu_items,
		  (SELECT COUNT(*) FROM news_items WHERE ($1 = 0 OR owner_admin_id = $1)) AS total_news_items;
		`, adminID); err != nil {
		log.Error().Err(err).Int("admin_id", adminID).Msg("dashboard counts query failed")
		return out, fmt.Errorf("dashboard counts: %w", err)
	}
	out.TotalScreens = counts.TotalScreens
	out.ActiveScreens = counts.ActiveScreens
	out.TotalMenuItems = counts.TotalMenuItems
	out.TotalNewsItems = counts.TotalNewsItems

	if out.MenuStats, err = itemDisplayStats(ctx, tx, model.MenuItem, adminID); err != nil {
		return out, err
	}
	if out.NewsStats, err = itemDisplayStats(ctx, tx, model.NewsItem, adminID); err != nil {
		return out, err
	}

	if err := tx.SelectContext(ctx, &out.Screens, `
		SELECT
		  s.id AS screen_id,
		  s.name AS screen_name,
		  l.name AS location_name,
		  dp.name AS department_name,
		  a.name AS agency_name,
		  s.is_online,
		  s.last_checked_in_at,
		  COUNT(d.id) AS total_displays,
		  MAX(d.displayed_at) AS last_displayed
		FROM screens s
		LEFT JOIN locations   l  ON l.id  = s.location_id
		LEFT JOIN departments dp ON dp.id = s.department_id
		LEFT JOIN agencies    a  ON a.id  = s.agency_id
		LEFT JOIN display_events d ON d.screen_id = s.id
		WHERE ($1 = 0 OR s.created_by = $1)
		GROUP BY s.id, l.name, dp.name, a.name
		ORDER BY s.id;
		`, adminID); err != nil {
		log.Error().Err(err).Int("admin_id", adminID).Msg("dashboard screen activity query failed")
		return out, fmt.Errorf("dashboard screen activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return out, fmt.Errorf("close dashboard snapshot: %w", err)
	}
	return out, nil
}

// itemDisplayStats groups display events of one kind by item. Events from
// screens that no longer exist still count when unscoped.
func itemDisplayStats(ctx context.Context, tx *sqlx.Tx, kind model.ItemKind, adminID int) ([]model.ItemDisplayStat, error) {
	table, err := contentTable(kind)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT
	  d.item_id,
	  COALESCE(i.title, '') AS title,
	  COUNT(*) AS display_count,
	  MAX(d.displayed_at) AS last_displayed
	FROM display_events d
	LEFT JOIN screens s ON s.id = d.screen_id
	LEFT JOIN ` + table + ` i ON i.id = d.item_id
	WHERE d.item_type = $1
	  AND ($2 = 0 OR s.created_by = $2)
	GROUP BY d.item_id, i.title
	ORDER BY display_count DESC, last_displayed DESC, d.item_id;`

	var stats []model.ItemDisplayStat
	if err := tx.SelectContext(ctx, &stats, query, string(kind), adminID); err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Int("admin_id", adminID).
			Msg("dashboard item stats query failed")
		return nil, fmt.Errorf("dashboard %s stats: %w", kind, err)
	}
	return stats, nil
}
