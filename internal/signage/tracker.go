package signage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// CheckIn is called by an authenticated screen. It appends an access record
// binding the caller's address to the screen, which is how an address first
// becomes resolvable, and refreshes the screen's stored online status.
func (s *Service) CheckIn(ctx context.Context, screenID int, networkAddress, userAgent string) (model.AccessRecord, error) {
	if strings.TrimSpace(networkAddress) == "" {
		return model.AccessRecord{}, &ValidationError{Field: "network_address", Reason: "is required"}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.store.GetScreenByID(ctx, screenID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AccessRecord{}, ErrNotFound
		}
		return model.AccessRecord{}, storeError("check in", 0, err)
	}

	rec, err := s.track(ctx, screenID, networkAddress, userAgent)
	if err != nil {
		return model.AccessRecord{}, err
	}

	if err := s.store.MarkScreenCheckedIn(ctx, screenID, rec.LastAccessTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AccessRecord{}, ErrNotFound
		}
		return model.AccessRecord{}, storeError("check in", 0, err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishCheckIn(screenID, rec.LastAccessTime); err != nil {
			log.Warn().Err(err).Int("screen_id", screenID).Msg("failed to publish check-in")
		}
	}
	return rec, nil
}

// track appends one access record stamped with server time.
func (s *Service) track(ctx context.Context, screenID int, networkAddress, userAgent string) (model.AccessRecord, error) {
	if len(userAgent) > maxUserAgentLength {
		userAgent = userAgent[:maxUserAgentLength]
	}

	rec, err := s.store.InsertAccessRecord(ctx, model.AccessRecord{
		ScreenID:       screenID,
		NetworkAddress: strings.TrimSpace(networkAddress),
		UserAgent:      userAgent,
		LastAccessTime: s.now().UTC(),
		IsActive:       true,
	})
	if err != nil {
		return model.AccessRecord{}, storeError("record access", 0, err)
	}
	return rec, nil
}
