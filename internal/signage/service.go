// Package signage is the content targeting and display telemetry engine:
// it resolves screens from network addresses, decides which menu and news
// items a screen may show, records what screens report having shown, and
// summarizes that history for operators.
package signage

import (
	"context"
	"time"

	"github.com/Nixie-Tech-LLC/marquee/internal/db"
	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

const (
	DefaultStoreTimeout     = 5 * time.Second
	DefaultActivityWindow   = 5 * time.Minute
	DefaultTopItemsLimit    = 10
	DefaultRecentLimit      = 5
	MaxRecentLimit          = 100
	maxUserAgentLength      = 512
	maxIdempotencyKeyLength = 128
)

// Config tunes the engine. Zero values fall back to the defaults above.
type Config struct {
	StoreTimeout   time.Duration
	ActivityWindow time.Duration
	TopItemsLimit  int
}

// Deduper remembers display batches by idempotency key so a retried batch
// is not written twice.
type Deduper interface {
	// Claim reserves key. If a batch under key was already committed it
	// returns its count with done set. If another attempt holds the key it
	// returns ErrBatchInFlight.
	Claim(ctx context.Context, key string) (count int, done bool, err error)
	// Complete records the committed count for key.
	Complete(ctx context.Context, key string, count int) error
	// Abandon releases a claim after a failed write so the batch can be
	// retried.
	Abandon(ctx context.Context, key string) error
}

// Publisher fans telemetry out to downstream consumers.
type Publisher interface {
	PublishDisplays(screenID int, events []model.DisplayEvent) error
	PublishCheckIn(screenID int, at time.Time) error
}

// DashboardCache keeps recent dashboard snapshots per admin scope.
type DashboardCache interface {
	GetDashboard(ctx context.Context, adminID int) (model.Dashboard, bool)
	SetDashboard(ctx context.Context, adminID int, d model.Dashboard)
}

// Archive stores exported snapshots and returns where they landed.
type Archive interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type Service struct {
	store db.Store
	cfg   Config
	now   func() time.Time

	deduper   Deduper
	publisher Publisher
	cache     DashboardCache
	archive   Archive
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithDeduper(d Deduper) Option {
	return func(s *Service) { s.deduper = d }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithDashboardCache(c DashboardCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithArchive(a Archive) Option {
	return func(s *Service) { s.archive = a }
}

func NewService(store db.Store, cfg Config, opts ...Option) *Service {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = DefaultStoreTimeout
	}
	if cfg.ActivityWindow <= 0 {
		cfg.ActivityWindow = DefaultActivityWindow
	}
	if cfg.TopItemsLimit <= 0 {
		cfg.TopItemsLimit = DefaultTopItemsLimit
	}

	s := &Service{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// withTimeout bounds a store round trip.
func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.Ping(ctx)
}
