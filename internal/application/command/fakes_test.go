package command

import (
	"context"
	"sort"
	"sync"

	"github.com/brainspark/brainspark-engine/internal/domain/badge"
	"github.com/brainspark/brainspark-engine/internal/domain/progression"
	"github.com/brainspark/brainspark-engine/internal/domain/quiz"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
	"github.com/brainspark/brainspark-engine/internal/domain/streak"
)

// In-memory fakes for handler tests. They implement the same lazy-create
// and error semantics the postgres implementations promise.

type fakeProgressRepo struct {
	mu     sync.Mutex
	rows   map[string]*progression.UserProgress
	ledger []*progression.LedgerEntry

	failUsers map[string]error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[string]*progression.UserProgress)}
}

func (r *fakeProgressRepo) GetByUserID(_ context.Context, userID string) (*progression.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failUsers[userID]; ok {
		return nil, err
	}
	p, ok := r.rows[userID]
	if !ok {
		return nil, shared.ErrProgressNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProgressRepo) Mutate(_ context.Context, userID, source string, fn func(*progression.UserProgress) error) (*progression.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[userID]
	if !ok {
		p = progression.NewUserProgress(userID)
	}
	xpBefore := p.XP
	if err := fn(p); err != nil {
		return nil, err
	}
	r.rows[userID] = p
	if p.XP != xpBefore {
		r.ledger = append(r.ledger, &progression.LedgerEntry{
			ID:         int64(len(r.ledger) + 1),
			UserID:     userID,
			Delta:      p.XP - xpBefore,
			XPAfter:    p.XP,
			LevelAfter: p.Level,
			Source:     source,
			CreatedAt:  p.UpdatedAt,
		})
	}
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

type fakeStreakRepo struct {
	mu   sync.Mutex
	rows map[string]*streak.State
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{rows: make(map[string]*streak.State)}
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
		copied := *s
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CurrentStreak > all[j].CurrentStreak })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type fakeBadgeRepo struct {
	mu     sync.Mutex
	badges map[string]*badge.Badge
}

func newFakeBadgeRepo(badges ...*badge.Badge) *fakeBadgeRepo {
	r := &fakeBadgeRepo{badges: make(map[string]*badge.Badge)}
	for _, b := range badges {
		copied := *b
		r.badges[b.ID] = &copied
	}
	return r
}

func (r *fakeBadgeRepo) Create(_ context.Context, b *badge.Badge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.badges {
		if existing.Title == b.Title {
			return shared.ErrBadgeTitleTaken
		}
		if existing.Active && b.Active && existing.Rank == b.Rank {
			return shared.ErrBadgeRankTaken
		}
	}
	copied := *b
	r.badges[b.ID] = &copied
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
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.badges[b.ID]; !ok {
		return shared.ErrBadgeNotFound
	}
	for id, existing := range r.badges {
		if id == b.ID {
			continue
		}
		if existing.Title == b.Title {
			return shared.ErrBadgeTitleTaken
		}
		if existing.Active && b.Active && existing.Rank == b.Rank {
			return shared.ErrBadgeRankTaken
		}
	}
	copied := *b
	r.badges[b.ID] = &copied
	return nil
}

func (r *fakeBadgeRepo) ListActive(_ context.Context) ([]*badge.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*badge.Badge, 0, len(r.badges))
	for _, b := range r.badges {
		if b.Active {
			copied := *b
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
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
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

type fakeUserBadgeRepo struct {
	mu       sync.Mutex
	held     map[string]*badge.UserBadge
	catalog  *fakeBadgeRepo
	upserts  int
	failUser map[string]error
}

func newFakeUserBadgeRepo(catalog *fakeBadgeRepo) *fakeUserBadgeRepo {
	return &fakeUserBadgeRepo{
		held:    make(map[string]*badge.UserBadge),
		catalog: catalog,
	}
}

func (r *fakeUserBadgeRepo) Get(ctx context.Context, userID string) (*badge.UserBadge, *badge.Badge, error) {
	r.mu.Lock()
	if err, ok := r.failUser[userID]; ok {
		r.mu.Unlock()
		return nil, nil, err
	}
	ub, ok := r.held[userID]
	r.mu.Unlock()
	if !ok {
		return nil, nil, shared.ErrUserBadgeNotFound
	}
	b, err := r.catalog.GetByID(ctx, ub.BadgeID)
	if err != nil {
		return nil, nil, err
	}
	copied := *ub
	return &copied, b, nil
}

func (r *fakeUserBadgeRepo) Upsert(_ context.Context, ub *badge.UserBadge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *ub
	r.held[ub.UserID] = &copied
	r.upserts++
	return nil
}

func (r *fakeUserBadgeRepo) CountByBadge(_ context.Context) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, ub := range r.held {
		counts[ub.BadgeID]++
	}
	return counts, nil
}

type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions map[string]*quiz.Question
	order     []string
}

func newFakeQuestionRepo(questions ...*quiz.Question) *fakeQuestionRepo {
	r := &fakeQuestionRepo{questions: make(map[string]*quiz.Question)}
	for _, q := range questions {
		copied := *q
		r.questions[q.ID] = &copied
		r.order = append(r.order, q.ID)
	}
	return r
}

func (r *fakeQuestionRepo) Create(_ context.Context, q *quiz.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *q
	r.questions[q.ID] = &copied
	r.order = append(r.order, q.ID)
	return nil
}

func (r *fakeQuestionRepo) GetByID(_ context.Context, id string) (*quiz.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok {
		return nil, shared.ErrQuestionNotFound
	}
	copied := *q
	return &copied, nil
}

func (r *fakeQuestionRepo) ListIDs(_ context.Context, filter quiz.PoolFilter) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, id := range r.order {
		if filter.Matches(r.questions[id]) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeQuestionRepo) GetByIDs(_ context.Context, ids []string) ([]*quiz.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*quiz.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := r.questions[id]
		if !ok {
			return nil, shared.ErrQuestionNotFound
		}
		copied := *q
		out = append(out, &copied)
	}
	return out, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions []*quiz.SessionRecord
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{}
}

func (r *fakeSessionRepo) Create(_ context.Context, rec *quiz.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *rec
	r.sessions = append(r.sessions, &copied)
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*quiz.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, shared.ErrSessionNotFound
}

func (r *fakeSessionRepo) RecentOrderingKeys(_ context.Context, userID string, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []string
	for i := len(r.sessions) - 1; i >= 0 && len(keys) < limit; i-- {
		if r.sessions[i].UserID == userID {
			keys = append(keys, r.sessions[i].OrderingKey)
		}
	}
	return keys, nil
}

func (r *fakeSessionRepo) ListByUser(_ context.Context, userID string, limit int) ([]*quiz.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*quiz.SessionRecord
	for i := len(r.sessions) - 1; i >= 0 && len(out) < limit; i-- {
		if r.sessions[i].UserID == userID {
			copied := *r.sessions[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeEventBus struct {
	mu     sync.Mutex
	events []shared.Event
}

func (b *fakeEventBus) Publish(event shared.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *fakeEventBus) byType(t shared.EventType) []shared.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []shared.Event
	for _, e := range b.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}
