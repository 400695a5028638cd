package signage

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/membership"
	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// EligibleItems returns the items of kind that screenID may show right now,
// ordered by title then id. Only explicit screen targeting counts; an item
// with no target screens is shown nowhere. An unknown screen gets an empty
// list.
func (s *Service) EligibleItems(ctx context.Context, screenID int, kind model.ItemKind) ([]model.ContentItem, error) {
	if !kind.Valid() {
		return nil, &ValidationError{Field: "item_type", Reason: "must be MenuItem or NewsItem"}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.store.GetScreenByID(ctx, screenID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []model.ContentItem{}, nil
		}
		return nil, storeError("load screen", 0, err)
	}

	now := s.now()
	items, err := s.store.ListActiveContent(ctx, kind, now)
	if err != nil {
		return nil, storeError("list content", 0, err)
	}

	out := make([]model.ContentItem, 0, len(items))
	for _, item := range items {
		// expiry is exclusive: an item expiring at now is already gone
		if !item.IsActive || !item.ExpiresAt.After(now) {
			continue
		}
		item.Kind = kind
		decodeTargets(&item)
		if !item.Screens.Has(screenID) {
			continue
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Service) EligibleMenuItems(ctx context.Context, screenID int) ([]model.ContentItem, error) {
	return s.EligibleItems(ctx, screenID, model.MenuItem)
}

func (s *Service) EligibleNewsItems(ctx context.Context, screenID int) ([]model.ContentItem, error) {
	return s.EligibleItems(ctx, screenID, model.NewsItem)
}

func decodeTargets(item *model.ContentItem) {
	var skipped [3]int
	item.Screens, skipped[0] = membership.Decode(item.TargetScreenIDs)
	item.Departments, skipped[1] = membership.Decode(item.TargetDepartmentIDs)
	item.Locations, skipped[2] = membership.Decode(item.TargetLocationIDs)

	if n := skipped[0] + skipped[1] + skipped[2]; n > 0 {
		log.Warn().
			Int("item_id", item.ID).
			Str("kind", string(item.Kind)).
			Int("skipped", n).
			Msg("skipped malformed target ids")
	}
}
