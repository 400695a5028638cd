package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// InsertDisplayEvents writes the batch in one transaction and returns how
// many rows were committed: len(events) on success, 0 on any failure.
func (s *pgStore) InsertDisplayEvents(ctx context.Context, events []model.DisplayEvent) (committed int, err error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to begin display batch")
		return 0, fmt.Errorf("begin display batch: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Warn().Err(rbErr).Msg("failed to roll back display batch")
			}
		}
	}()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO display_events (screen_id, item_type, item_id, displayed_at)
		VALUES ($1, $2, $3, $4);`)
	if err != nil {
		log.Error().Err(err).Msg("failed to prepare display insert")
		return 0, fmt.Errorf("prepare display insert: %w", err)
	}
	defer stmt.Close()

	for i, ev := range events {
		if _, err = stmt.ExecContext(ctx, ev.ScreenID, string(ev.ItemType), ev.ItemID, ev.DisplayedAt); err != nil {
			log.Error().Err(err).Int("screen_id", ev.ScreenID).Int("index", i).
				Msg("failed to insert display event")
			return 0, fmt.Errorf("insert display event %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		log.Error().Err(err).Int("count", len(events)).Msg("failed to commit display batch")
		return 0, fmt.Errorf("commit display batch: %w", err)
	}
	return len(events), nil
}

func (s *pgStore) ListRecentDisplays(ctx context.Context, screenID, limit int) ([]model.RecentDisplay, error) {
	var out []model.RecentDisplay
	const q = `
	SELECT
	  d.displayed_at,
	  d.item_type,
	  d.item_id,
	  COALESCE(m.title, n.title, '') AS item_title
	FROM display_events d
	LEFT JOIN menu_items m ON d.item_type = 'MenuItem' AND m.id = d.item_id
	LEFT JOIN news_items n ON d.item_type = 'NewsItem' AND n.id = d.item_id
	WHERE d.screen_id = $1
	ORDER BY d.displayed_at DESC, d.id DESC
	LIMIT $2;`
	if err := s.db.SelectContext(ctx, &out, q, screenID, limit); err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("failed to list recent displays")
		return nil, err
	}
	return out, nil
}
