package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

func (s *pgStore) GetScreenByID(ctx context.Context, id int) (model.Screen, error) {
	var screen model.Screen
	err := s.db.GetContext(ctx, &screen, `
		SELECT id, name, mac_address, location_id, department_id, agency_id,
		       is_online, last_checked_in_at, created_by, created_at
		FROM screens
		WHERE id = $1
		`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Screen{}, sql.ErrNoRows
	}
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("failed to get screen by id")
		return model.Screen{}, err
	}
	return screen, nil
}

// MarkScreenCheckedIn only touches the status fields; everything else on a
// screen is immutable after registration.
func (s *pgStore) MarkScreenCheckedIn(ctx context.Context, screenID int, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE screens
		SET is_online = TRUE,
		last_checked_in_at = $2
		WHERE id = $1
		`, screenID, at)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("failed to mark screen checked in")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
