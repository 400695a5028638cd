// exposes a Store interface that is passed to the engine and API handlers
package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// Store is the persistence boundary of the signage engine. Lookups that find
// nothing return sql.ErrNoRows.
type Store interface {
	// registry (read-only apart from check-in status)
	GetScreenByID(ctx context.Context, id int) (model.Screen, error)
	MarkScreenCheckedIn(ctx context.Context, screenID int, at time.Time) error

	// content
	ListActiveContent(ctx context.Context, kind model.ItemKind, now time.Time) ([]model.ContentItem, error)

	// access records
	LatestAccessForAddress(ctx context.Context, networkAddress string) (model.AccessRecord, error)
	InsertAccessRecord(ctx context.Context, rec model.AccessRecord) (model.AccessRecord, error)

	// display events
	InsertDisplayEvents(ctx context.Context, events []model.DisplayEvent) (int, error)
	ListRecentDisplays(ctx context.Context, screenID, limit int) ([]model.RecentDisplay, error)

	// analytics
	LoadDashboard(ctx context.Context, adminID int) (model.DashboardData, error)

	Ping(ctx context.Context) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
