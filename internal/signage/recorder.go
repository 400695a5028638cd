package signage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// RecordResult reports how a display batch was handled.
type RecordResult struct {
	Persisted int  `json:"persisted_count"`
	Duplicate bool `json:"duplicate"`
}

// RecordDisplays validates and persists a batch of impressions reported by
// screenID. Every event is stamped with screenID and one server timestamp;
// whatever screen id the client sent is ignored. The batch is all or
// nothing.
//
// A non-empty key makes the call idempotent when a Deduper is configured:
// replaying a committed batch returns the original count with Duplicate set.
func (s *Service) RecordDisplays(ctx context.Context, screenID int, events []model.DisplayInput, key string) (RecordResult, error) {
	if len(events) == 0 {
		return RecordResult{}, &ValidationError{Field: "events", Reason: "batch is empty"}
	}
	for i, ev := range events {
		if !ev.ItemType.Valid() {
			return RecordResult{}, &ValidationError{
				Field:  fmt.Sprintf("events[%d].item_type", i),
				Reason: "must be MenuItem or NewsItem",
			}
		}
		if ev.ItemID < 0 {
			return RecordResult{}, &ValidationError{
				Field:  fmt.Sprintf("events[%d].item_id", i),
				Reason: "must not be negative",
			}
		}
	}

	key = strings.TrimSpace(key)
	if len(key) > maxIdempotencyKeyLength {
		return RecordResult{}, &ValidationError{Field: "idempotency_key", Reason: "is too long"}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	dedupeKey := ""
	if key != "" && s.deduper != nil {
		dedupeKey = fmt.Sprintf("%d:%s", screenID, key)
		count, done, err := s.deduper.Claim(ctx, dedupeKey)
		switch {
		case errors.Is(err, ErrBatchInFlight):
			return RecordResult{}, err
		case err != nil:
			// without the deduper the batch is still recorded once per call
			log.Warn().Err(err).Int("screen_id", screenID).Msg("idempotency check failed, recording without it")
			dedupeKey = ""
		case done:
			log.Info().Int("screen_id", screenID).Int("count", count).Msg("replayed display batch")
			return RecordResult{Persisted: count, Duplicate: true}, nil
		}
	}

	at := s.now().UTC()
	batch := make([]model.DisplayEvent, len(events))
	for i, ev := range events {
		if ev.ScreenID != nil && *ev.ScreenID != screenID {
			log.Debug().Int("screen_id", screenID).Int("client_screen_id", *ev.ScreenID).
				Msg("ignoring client supplied screen id")
		}
		batch[i] = model.DisplayEvent{
			ScreenID:    screenID,
			ItemType:    ev.ItemType,
			ItemID:      ev.ItemID,
			DisplayedAt: at,
		}
	}

	n, err := s.store.InsertDisplayEvents(ctx, batch)
	if err != nil {
		if dedupeKey != "" {
			if abErr := s.deduper.Abandon(context.WithoutCancel(ctx), dedupeKey); abErr != nil {
				log.Warn().Err(abErr).Int("screen_id", screenID).Msg("failed to release idempotency key")
			}
		}
		log.Error().Err(err).Int("screen_id", screenID).Int("batch", len(batch)).Msg("failed to record displays")
		return RecordResult{}, storeError("record displays", n, err)
	}

	if dedupeKey != "" {
		if err := s.deduper.Complete(context.WithoutCancel(ctx), dedupeKey, n); err != nil {
			log.Warn().Err(err).Int("screen_id", screenID).Msg("failed to remember idempotency key")
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishDisplays(screenID, batch); err != nil {
			log.Warn().Err(err).Int("screen_id", screenID).Msg("failed to publish displays")
		}
	}
	return RecordResult{Persisted: n}, nil
}
