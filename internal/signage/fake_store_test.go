package signage

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/Nixie-Tech-LLC/marquee/internal/db"
	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// memStore is an in-memory db.Store for engine tests.
type memStore struct {
	mu sync.Mutex

	screens  map[int]model.Screen
	content  map[model.ItemKind][]model.ContentItem
	access   []model.AccessRecord
	displays []model.DisplayEvent
	data     model.DashboardData

	insertErr    error
	insertCalls  int
	dashboardErr error
	lastAdminID  int
	checkedIn    map[int]time.Time
}

var _ db.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		screens:   map[int]model.Screen{},
		content:   map[model.ItemKind][]model.ContentItem{},
		checkedIn: map[int]time.Time{},
	}
}

func (m *memStore) addScreen(s model.Screen) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.screens[s.ID] = s
}

func (m *memStore) addContent(kind model.ItemKind, items ...model.ContentItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[kind] = append(m.content[kind], items...)
}

func (m *memStore) GetScreenByID(_ context.Context, id int) (model.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.screens[id]
	if !ok {
		return model.Screen{}, sql.ErrNoRows
	}
	return s, nil
}

func (m *memStore) MarkScreenCheckedIn(_ context.Context, screenID int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.screens[screenID]
	if !ok {
		return sql.ErrNoRows
	}
	s.IsOnline = true
	s.LastCheckedInAt = &at
	m.screens[screenID] = s
	m.checkedIn[screenID] = at
	return nil
}

// ListActiveContent deliberately returns everything so the engine's own
// filtering is what the tests observe.
func (m *memStore) ListActiveContent(_ context.Context, kind model.ItemKind, _ time.Time) ([]model.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ContentItem, len(m.content[kind]))
	copy(out, m.content[kind])
	return out, nil
}

func (m *memStore) LatestAccessForAddress(_ context.Context, addr string) (model.AccessRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *model.AccessRecord
	for i := range m.access {
		r := &m.access[i]
		if r.NetworkAddress != addr || !r.IsActive {
			continue
		}
		if best == nil || r.LastAccessTime.After(best.LastAccessTime) ||
			(r.LastAccessTime.Equal(best.LastAccessTime) && r.ID > best.ID) {
			best = r
		}
	}
	if best == nil {
		return model.AccessRecord{}, sql.ErrNoRows
	}
	return *best, nil
}

func (m *memStore) InsertAccessRecord(_ context.Context, rec model.AccessRecord) (model.AccessRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = len(m.access) + 1
	m.access = append(m.access, rec)
	return rec, nil
}

func (m *memStore) InsertDisplayEvents(_ context.Context, events []model.DisplayEvent) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCalls++
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	for _, ev := range events {
		ev.ID = len(m.displays) + 1
		m.displays = append(m.displays, ev)
	}
	return len(events), nil
}

func (m *memStore) ListRecentDisplays(_ context.Context, screenID, limit int) ([]model.RecentDisplay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var evs []model.DisplayEvent
	for _, ev := range m.displays {
		if ev.ScreenID == screenID {
			evs = append(evs, ev)
		}
	}
	sort.Slice(evs, func(i, j int) bool {
		if !evs[i].DisplayedAt.Equal(evs[j].DisplayedAt) {
			return evs[i].DisplayedAt.After(evs[j].DisplayedAt)
		}
		return evs[i].ID > evs[j].ID
	})
	if len(evs) > limit {
		evs = evs[:limit]
	}
	out := make([]model.RecentDisplay, 0, len(evs))
	for _, ev := range evs {
		out = append(out, model.RecentDisplay{
			DisplayedAt: ev.DisplayedAt,
			ItemType:    ev.ItemType,
			ItemID:      ev.ItemID,
		})
	}
	return out, nil
}

func (m *memStore) LoadDashboard(_ context.Context, adminID int) (model.DashboardData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastAdminID = adminID
	if m.dashboardErr != nil {
		return model.DashboardData{}, m.dashboardErr
	}
	return m.data, nil
}

func (m *memStore) Ping(context.Context) error { return nil }

// fixedClock returns a clock stuck at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type memDeduper struct {
	mu       sync.Mutex
	pending  map[string]bool
	done     map[string]int
	abandons int
}

func newMemDeduper() *memDeduper {
	return &memDeduper{pending: map[string]bool{}, done: map[string]int{}}
}

func (d *memDeduper) Claim(_ context.Context, key string) (int, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n, ok := d.done[key]; ok {
		return n, true, nil
	}
	if d.pending[key] {
		return 0, false, ErrBatchInFlight
	}
	d.pending[key] = true
	return 0, false, nil
}

func (d *memDeduper) Complete(_ context.Context, key string, count int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pending, key)
	d.done[key] = count
	return nil
}

func (d *memDeduper) Abandon(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pending, key)
	d.abandons++
	return nil
}
