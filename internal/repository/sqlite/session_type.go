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

var _ repository.SessionTypeRepository = (*SessionTypeStore)(nil)

type SessionTypeStore struct {
	conn *sql.DB
}

const sessionTypeColumns = `id, event_id, title, description, duration, created_at, updated_at`

func scanSessionType(row scanner, st *model.SessionType) error {
	return row.Scan(
		&st.ID,
		&st.EventID,
		&st.Title,
		&st.Description,
		&st.Duration,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
}

func (s *SessionTypeStore) Create(ctx context.Context, st *model.SessionType) error {
	id := xid.New().String()
	now := time.Now().UTC()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO session_types (`+sessionTypeColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		st.EventID,
		st.Title,
		st.Description,
		st.Duration,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating session type: %w", err)
	}

	st.ID = id
	st.CreatedAt = now
	st.UpdatedAt = now
	return nil
}

func (s *SessionTypeStore) GetByID(ctx context.Context, id string) (*model.SessionType, error) {
	var st model.SessionType

	row := s.conn.QueryRowContext(ctx,
		`SELECT `+sessionTypeColumns+` FROM session_types WHERE id = ?`, id)
	if err := scanSessionType(row, &st); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("session type", id)
		}
		return nil, fmt.Errorf("sqlite: getting session type %s: %w", id, err)
	}
	return &st, nil
}

func (s *SessionTypeStore) ListByEvent(ctx context.Context, eventID string) (model.SessionTypes, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+sessionTypeColumns+`
		 FROM session_types
		 WHERE event_id = ?
		 ORDER BY title ASC, created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing session types for event %s: %w", eventID, err)
	}
	defer rows.Close()

	sessionTypes := model.SessionTypes{}
	for rows.Next() {
		var st model.SessionType
		if err := scanSessionType(rows, &st); err != nil {
			return nil, fmt.Errorf("sqlite: scanning session type row: %w", err)
		}
		sessionTypes = append(sessionTypes, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating session types: %w", err)
	}

	return sessionTypes, nil
}

// Update writes the mutable columns. event_id is fixed at creation.
func (s *SessionTypeStore) Update(ctx context.Context, st *model.SessionType) error {
	now := time.Now().UTC()

	res, err := s.conn.ExecContext(ctx,
		`UPDATE session_types
		 SET title = ?, description = ?, duration = ?, updated_at = ?
		 WHERE id = ?`,
		st.Title,
		st.Description,
		st.Duration,
		now,
		st.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating session type %s: %w", st.ID, err)
	}
	if err := rowsAffected(res, "session type", st.ID); err != nil {
		return err
	}

	st.UpdatedAt = now
	return nil
}

func (s *SessionTypeStore) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM session_types WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting session type %s: %w", id, err)
	}
	return rowsAffected(res, "session type", id)
}
