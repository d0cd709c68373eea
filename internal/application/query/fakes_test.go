package query

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/badge"
	"github.com/brainspark/brainspark-engine/internal/domain/progression"
	"github.com/brainspark/brainspark-engine/internal/domain/quiz"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
	"github.com/brainspark/brainspark-engine/internal/domain/streak"
)

// In-memory fakes for query handler tests.

type fakeProgressRepo struct {
	mu   sync.Mutex
	rows map[string]*progression.UserProgress

	getCalls int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[string]*progression.UserProgress)}
}

func (r *fakeProgressRepo) put(p *progression.UserProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *p
	r.rows[p.UserID] = &copied
}

func (r *fakeProgressRepo) GetByUserID(_ context.Context, userID string) (*progression.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	p, ok := r.rows[userID]
	if !ok {
		return nil, shared.ErrProgressNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProgressRepo) Mutate(_ context.Context, userID, _ string, fn func(*progression.UserProgress) error) (*progression.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[userID]
	if !ok {
		p = progression.NewUserProgress(userID)
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	r.rows[userID] = p
	copied := *p
	return &copied, nil
}

func (r *fakeProgressRepo) ListUserIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeProgressRepo) TopByXP(_ context.Context, limit int) ([]*progression.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*progression.UserProgress, 0, len(r.rows))
	for _, p := range r.rows {
		copied := *p
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].XP > all[j].XP })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeProgressRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows), nil
}

type fakeProgressCache struct {
	mu      sync.Mutex
	entries map[string]*progression.UserProgress

	gets, sets int
}

func newFakeProgressCache() *fakeProgressCache {
	return &fakeProgressCache{entries: make(map[string]*progression.UserProgress)}
}

func (c *fakeProgressCache) Get(_ context.Context, userID string) (*progression.UserProgress, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	p, ok := c.entries[userID]
	if !ok {
		return nil, shared.ErrProgressNotFound
	}
	copied := *p
	return &copied, nil
}

func (c *fakeProgressCache) Set(_ context.Context, p *progression.UserProgress, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	copied := *p
	c.entries[p.UserID] = &copied
	return nil
}

func (c *fakeProgressCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

type fakeStreakRepo struct {
	mu   sync.Mutex
	rows map[string]*streak.State
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{rows: make(map[string]*streak.State)}
}

func (r *fakeStreakRepo) put(s *streak.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.rows[s.UserID] = &copied
}

func (r *fakeStreakRepo) GetByUserID(_ context.Context, userID string) (*streak.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[userID]
	if !ok {
		return nil, shared.ErrStreakNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeStreakRepo) Mutate(_ context.Context, userID string, fn func(*streak.State) error) (*streak.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[userID]
	if !ok {
		s = streak.NewState(userID)
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	r.rows[userID] = s
	copied := *s
	return &copied, nil
}

func (r *fakeStreakRepo) TopCurrent(_ context.Context, limit int) ([]*streak.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*streak.State, 0, len(r.rows))
	for _, s := range r.rows {
		if s.CurrentStreak == 0 {
			continue
		}
		copied := *s
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CurrentStreak > all[j].CurrentStreak })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries map[string][]*progression.LedgerEntry
	err     error
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{entries: make(map[string][]*progression.LedgerEntry)}
}

func (r *fakeHistoryRepo) History(_ context.Context, userID string, limit int) ([]*progression.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	entries := r.entries[userID]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]*progression.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

type fakeBadgeRepo struct {
	mu     sync.Mutex
	badges map[string]*badge.Badge
}

func newFakeBadgeRepo() *fakeBadgeRepo {
	return &fakeBadgeRepo{badges: make(map[string]*badge.Badge)}
}

func (r *fakeBadgeRepo) put(b *badge.Badge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *b
	r.badges[b.ID] = &copied
}

func (r *fakeBadgeRepo) Create(_ context.Context, b *badge.Badge) error {
	r.put(b)
	return nil
}

func (r *fakeBadgeRepo) GetByID(_ context.Context, id string) (*badge.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.badges[id]
	if !ok {
		return nil, shared.ErrBadgeNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBadgeRepo) Update(_ context.Context, b *badge.Badge) error {
	r.put(b)
	return nil
}

func (r *fakeBadgeRepo) ListActive(_ context.Context) ([]*badge.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*badge.Badge, 0, len(r.badges))
	for _, b := range r.badges {
		if !b.Active {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeBadgeRepo) ListAll(_ context.Context) ([]*badge.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*badge.Badge, 0, len(r.badges))
	for _, b := range r.badges {
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

type fakeUserBadgeRepo struct {
	mu     sync.Mutex
	awards map[string]*badge.UserBadge
	defs   *fakeBadgeRepo
}

func newFakeUserBadgeRepo(defs *fakeBadgeRepo) *fakeUserBadgeRepo {
	return &fakeUserBadgeRepo{awards: make(map[string]*badge.UserBadge), defs: defs}
}

func (r *fakeUserBadgeRepo) Get(ctx context.Context, userID string) (*badge.UserBadge, *badge.Badge, error) {
	r.mu.Lock()
	ub, ok := r.awards[userID]
	if !ok {
		r.mu.Unlock()
		return nil, nil, shared.ErrUserBadgeNotFound
	}
	copied := *ub
	r.mu.Unlock()

	b, err := r.defs.GetByID(ctx, copied.BadgeID)
	if err != nil {
		return nil, nil, err
	}
	return &copied, b, nil
}

func (r *fakeUserBadgeRepo) Upsert(_ context.Context, ub *badge.UserBadge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *ub
	r.awards[ub.UserID] = &copied
	return nil
}

func (r *fakeUserBadgeRepo) CountByBadge(_ context.Context) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, ub := range r.awards {
		counts[ub.BadgeID]++
	}
	return counts, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions []*quiz.SessionRecord
	err      error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{}
}

// put prepends so the slice stays newest-first, as the real repository
// orders by created_at DESC.
func (r *fakeSessionRepo) put(rec *quiz.SessionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *rec
	r.sessions = append([]*quiz.SessionRecord{&copied}, r.sessions...)
}

func (r *fakeSessionRepo) Create(_ context.Context, rec *quiz.SessionRecord) error {
	r.put(rec)
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*quiz.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, rec := range r.sessions {
		if rec.ID == id {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, shared.ErrSessionNotFound
}

func (r *fakeSessionRepo) RecentOrderingKeys(_ context.Context, userID string, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, limit)
	for _, rec := range r.sessions {
		if rec.UserID != userID {
			continue
		}
		keys = append(keys, rec.OrderingKey)
		if len(keys) == limit {
			break
		}
	}
	return keys, nil
}

func (r *fakeSessionRepo) ListByUser(_ context.Context, userID string, limit int) ([]*quiz.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*quiz.SessionRecord, 0, limit)
	for _, rec := range r.sessions {
		if rec.UserID != userID {
			continue
		}
		copied := *rec
		out = append(out, &copied)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
