package journal

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrInvalidEvent = errors.New("invalid refresh event")

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 200
)

type Storer interface {
	InsertEvent(ctx context.Context, event *Event) error
	CountByOutcome(ctx context.Context, since time.Time) (map[Outcome]int, error)
	LatestOccurredAt(ctx context.Context) (time.Time, bool, error)
	ListRecent(ctx context.Context, limit int) ([]*Event, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

type Service struct {
	store Storer
	now   func() time.Time
}

func NewService(store Storer) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Record(ctx context.Context, event Event) error {
	if strings.TrimSpace(event.Path) == "" || !isKnownOutcome(event.Outcome) {
		return ErrInvalidEvent
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	return s.store.InsertEvent(ctx, &event)
}

// Summary는 since 이후의 갱신 시도를 결과별로 센다. 모든 결과 키가 0으로라도 채워진다
func (s *Service) Summary(ctx context.Context, since time.Time) (*Summary, error) {
	counts, err := s.store.CountByOutcome(ctx, since)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Since:     since,
		ByOutcome: make(map[Outcome]int, len(Outcomes)),
	}
	for _, outcome := range Outcomes {
		summary.ByOutcome[outcome] = counts[outcome]
		summary.Total += counts[outcome]
	}

	latest, ok, err := s.store.LatestOccurredAt(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		summary.LastEventAt = &latest
	}
	return summary, nil
}

// Recent는 최신순으로 limit개를 돌려준다. 0 이하는 기본값, 상한을 넘으면 상한으로 자른다
func (s *Service) Recent(ctx context.Context, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, MaxRecentLimit)
	return s.store.ListRecent(ctx, limit)
}

// Prune은 retention보다 오래된 기록을 지운다
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return s.store.DeleteBefore(ctx, s.now().Add(-retention))
}

func isKnownOutcome(outcome Outcome) bool {
	for _, known := range Outcomes {
		if known == outcome {
			return true
		}
	}
	return false
}
