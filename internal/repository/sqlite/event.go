package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/conftrack/internal/apperror"
	"github.com/sakif/conftrack/internal/model"
	"github.com/sakif/conftrack/internal/repository"
)

var _ repository.EventRepository = (*EventStore)(nil)

type EventStore struct {
	conn *sql.DB
}

const eventColumns = `id, slug, title, start_date, end_date, created_at, updated_at`

func scanEvent(row scanner, e *model.Event) error {
	var start, end sql.NullTime
	if err := row.Scan(&e.ID, &e.Slug, &e.Title, &start, &end, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return err
	}
	e.StartDate = start.Time
	e.EndDate = end.Time
	return nil
}

// nullTime stores zero times as NULL so "no date yet" sorts last.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func (s *EventStore) Create(ctx context.Context, event *model.Event) error {
	id := xid.New().String()
	now := time.Now().UTC()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		event.Slug,
		event.Title,
		nullTime(event.StartDate),
		nullTime(event.EndDate),
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return takenError("slug")
		}
		return fmt.Errorf("sqlite: creating event: %w", err)
	}

	event.ID = id
	event.CreatedAt = now
	event.UpdatedAt = now
	return nil
}

func (s *EventStore) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return s.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
}

func (s *EventStore) GetBySlug(ctx context.Context, slug string) (*model.Event, error) {
	return s.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = ?`, slug)
}

// Latest falls back to creation order among events without a start date.
func (s *EventStore) Latest(ctx context.Context) (*model.Event, error) {
	return s.getOne(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 ORDER BY start_date IS NULL, start_date DESC, created_at DESC
		 LIMIT 1`)
}

func (s *EventStore) getOne(ctx context.Context, query string, args ...any) (*model.Event, error) {
	var e model.Event
	if err := scanEvent(s.conn.QueryRowContext(ctx, query, args...), &e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			key := "latest"
			if len(args) > 0 {
				key = fmt.Sprint(args[0])
			}
			return nil, apperror.NotFound("event", key)
		}
		return nil, fmt.Errorf("sqlite: getting event: %w", err)
	}
	return &e, nil
}

func (s *EventStore) List(ctx context.Context) ([]model.Event, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 ORDER BY start_date IS NULL, start_date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("sqlite: scanning event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating events: %w", err)
	}
	return events, nil
}
