package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// LatestAccessForAddress returns the authoritative binding for an address:
// the active record with the greatest last_access_time, highest id on ties.
func (s *pgStore) LatestAccessForAddress(ctx context.Context, networkAddress string) (model.AccessRecord, error) {
	var rec model.AccessRecord
	err := s.db.GetContext(ctx, &rec, `
		SELECT id, screen_id, network_address, user_agent, last_access_time, is_active
		FROM access_records
		WHERE network_address = $1
		  AND is_active = TRUE
		ORDER BY last_access_time DESC, id DESC
		LIMIT 1
		`, networkAddress)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AccessRecord{}, sql.ErrNoRows
	}
	if err != nil {
		log.Error().Err(err).Str("network_address", networkAddress).Msg("failed to resolve access record")
		return model.AccessRecord{}, err
	}
	return rec, nil
}

// InsertAccessRecord appends a record. Existing rows are never updated.
func (s *pgStore) InsertAccessRecord(ctx context.Context, rec model.AccessRecord) (model.AccessRecord, error) {
	var out model.AccessRecord
	q := `
	INSERT INTO access_records (screen_id, network_address, user_agent, last_access_time, is_active)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, screen_id, network_address, user_agent, last_access_time, is_active;`
	if err := s.db.GetContext(ctx, &out, q,
		rec.ScreenID,
		rec.NetworkAddress,
		rec.UserAgent,
		rec.LastAccessTime,
		rec.IsActive,
	); err != nil {
		log.Error().Err(err).Int("screen_id", rec.ScreenID).
			Str("network_address", rec.NetworkAddress).Msg("failed to insert access record")
		return model.AccessRecord{}, err
	}
	return out, nil
}
