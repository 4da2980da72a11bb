package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"taeu.kr/fitedge/internal/journal"
)

const tableName = "refresh_events"

type Store struct {
	db *sql.DB
	qb sq.StatementBuilderType
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

func (s *Store) InsertEvent(ctx context.Context, event *journal.Event) error {
	query, args, err := s.qb.
		Insert(tableName).
		Columns("occurred_at", "path", "outcome", "status_code", "fingerprint", "latency_ms").
		Values(event.OccurredAt.UnixMilli(), event.Path, string(event.Outcome), event.StatusCode, event.Fingerprint, event.Latency.Milliseconds()).
		ToSql()
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = id
	return nil
}

func (s *Store) CountByOutcome(ctx context.Context, since time.Time) (map[journal.Outcome]int, error) {
	query, args, err := s.qb.
		Select("outcome", "COUNT(*)").
		From(tableName).
		Where(sq.GtOrEq{"occurred_at": since.UnixMilli()}).
		GroupBy("outcome").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[journal.Outcome]int{}
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, err
		}
		counts[journal.Outcome(outcome)] = count
	}
	return counts, rows.Err()
}

func (s *Store) LatestOccurredAt(ctx context.Context) (time.Time, bool, error) {
	query, args, err := s.qb.
		Select("MAX(occurred_at)").
		From(tableName).
		ToSql()
	if err != nil {
		return time.Time{}, false, err
	}

	var latest sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&latest); err != nil {
		return time.Time{}, false, err
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(latest.Int64), true, nil
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]*journal.Event, error) {
	query, args, err := s.qb.
		Select("id", "occurred_at", "path", "outcome", "status_code", "fingerprint", "latency_ms").
		From(tableName).
		OrderBy("occurred_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*journal.Event{}
	for rows.Next() {
		var event journal.Event
		var occurredAt, latencyMs int64
		var outcome string
		if err := rows.Scan(&event.ID, &occurredAt, &event.Path, &outcome, &event.StatusCode, &event.Fingerprint, &latencyMs); err != nil {
			return nil, err
		}
		event.OccurredAt = time.UnixMilli(occurredAt)
		event.Outcome = journal.Outcome(outcome)
		event.Latency = time.Duration(latencyMs) * time.Millisecond
		events = append(events, &event)
	}
	return events, rows.Err()
}

func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := s.qb.
		Delete(tableName).
		Where(sq.Lt{"occurred_at": before.UnixMilli()}).
		ToSql()
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
