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

var _ repository.SnippetRepository = (*SnippetStore)(nil)

// SnippetStore persists snippets in the snippets table.
type SnippetStore struct {
	conn *sql.DB
}

const snippetColumns = `id, slug, description, content, public, created_at, updated_at`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnippet(row scanner, s *model.Snippet) error {
	return row.Scan(
		&s.ID,
		&s.Slug,
		&s.Description,
		&s.Content,
		&s.Public,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}

// Create inserts snippet, assigning its ID and timestamps.
//
// The caller's struct is only modified once the row is written, so a failed
// insert leaves a new record looking new.
func (s *SnippetStore) Create(ctx context.Context, snippet *model.Snippet) error {
	id := xid.New().String()
	now := time.Now().UTC()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO snippets (`+snippetColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		snippet.Slug,
		snippet.Description,
		snippet.Content,
		snippet.Public,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return takenError("slug")
		}
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	snippet.ID = id
	snippet.CreatedAt = now
	snippet.UpdatedAt = now
	return nil
}

func (s *SnippetStore) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	return s.getOne(ctx, "id", id)
}

func (s *SnippetStore) GetBySlug(ctx context.Context, slug string) (*model.Snippet, error) {
	return s.getOne(ctx, "slug", slug)
}

func (s *SnippetStore) getOne(ctx context.Context, column, value string) (*model.Snippet, error) {
	var snippet model.Snippet

	// column is one of two constants above, never user input.
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE `+column+` = ?`,
		value,
	)
	if err := scanSnippet(row, &snippet); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("snippet", value)
		}
		return nil, fmt.Errorf("sqlite: getting snippet by %s %s: %w", column, value, err)
	}
	return &snippet, nil
}

func (s *SnippetStore) ListPublic(ctx context.Context) (model.Snippets, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+snippetColumns+`
		 FROM snippets
		 WHERE public = 1
		 ORDER BY slug ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := model.Snippets{}
	for rows.Next() {
		var snippet model.Snippet
		if err := scanSnippet(rows, &snippet); err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, snippet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	return snippets, nil
}

func (s *SnippetStore) Update(ctx context.Context, snippet *model.Snippet) error {
	now := time.Now().UTC()

	res, err := s.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET slug = ?, description = ?, content = ?, public = ?, updated_at = ?
		 WHERE id = ?`,
		snippet.Slug,
		snippet.Description,
		snippet.Content,
		snippet.Public,
		now,
		snippet.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return takenError("slug")
		}
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}
	if err := rowsAffected(res, "snippet", snippet.ID); err != nil {
		return err
	}

	snippet.UpdatedAt = now
	return nil
}

func (s *SnippetStore) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}
	return rowsAffected(res, "snippet", id)
}
