package signage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// ResolveAddress returns the screen most recently bound to networkAddress.
// It does not write anything. ErrNotFound means the address is unknown.
func (s *Service) ResolveAddress(ctx context.Context, networkAddress string) (int, error) {
	addr := strings.TrimSpace(networkAddress)
	if addr == "" {
		return 0, &ValidationError{Field: "network_address", Reason: "is required"}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rec, err := s.store.LatestAccessForAddress(ctx, addr)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, storeError("resolve address", 0, err)
	}
	return rec.ScreenID, nil
}

// IdentifyByAddress resolves the screen behind networkAddress and appends a
// fresh access record for it. Unknown addresses leave no trace.
func (s *Service) IdentifyByAddress(ctx context.Context, networkAddress, userAgent string) (model.ScreenSummary, error) {
	screenID, err := s.ResolveAddress(ctx, networkAddress)
	if err != nil {
		return model.ScreenSummary{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	screen, err := s.store.GetScreenByID(ctx, screenID)
	if errors.Is(err, sql.ErrNoRows) {
		// bound to a screen that has since been removed
		log.Warn().Int("screen_id", screenID).Str("network_address", networkAddress).
			Msg("address bound to unknown screen")
		return model.ScreenSummary{}, ErrNotFound
	}
	if err != nil {
		return model.ScreenSummary{}, storeError("identify screen", 0, err)
	}

	if _, err := s.track(ctx, screen.ID, networkAddress, userAgent); err != nil {
		return model.ScreenSummary{}, err
	}
	return screen.Summary(), nil
}
