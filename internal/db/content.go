package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// contentTables maps each feed to its table. Table names never come from
// request input.
var contentTables = map[model.ItemKind]string{
	model.MenuItem: "menu_items",
	model.NewsItem: "news_items",
}

func contentTable(kind model.ItemKind) (string, error) {
	table, ok := contentTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown item kind %q", kind)
	}
	return table, nil
}

// ListActiveContent returns items of kind that are switched on and not yet
// expired at now (expires_at strictly after now), ordered by title.
// Targeting is not evaluated here; the membership columns are returned raw.
func (s *pgStore) ListActiveContent(ctx context.Context, kind model.ItemKind, now time.Time) ([]model.ContentItem, error) {
	table, err := contentTable(kind)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT
	id,
	title,
	body,
	created_at,
	last_updated_at,
	expires_at,
	is_active,
	owner_admin_id,
	target_department_ids,
	target_screen_ids,
	target_location_ids
	FROM ` + table + `
	WHERE is_active = TRUE
	  AND expires_at > $1
	ORDER BY title, id;`

	var items []model.ContentItem
	if err := s.db.SelectContext(ctx, &items, query, now); err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Msg("failed to list active content")
		return nil, err
	}
	for i := range items {
		items[i].Kind = kind
	}
	return items, nil
}
