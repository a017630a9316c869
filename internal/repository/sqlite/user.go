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

var _ repository.UserRepository = (*UserStore)(nil)

type UserStore struct {
	conn *sql.DB
}

const userColumns = `id, github_id, login, email, avatar_url, password_hash, admin, created_at, updated_at`

func scanUser(row scanner, u *model.User) error {
	return row.Scan(
		&u.ID,
		&u.GitHubID,
		&u.Login,
		&u.Email,
		&u.AvatarURL,
		&u.PasswordHash,
		&u.Admin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

// Create inserts a new account. A login that already exists is a validation
// error on "login".
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	id := xid.New().String()
	now := time.Now().UTC()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		user.GitHubID,
		user.Login,
		user.Email,
		user.AvatarURL,
		user.PasswordHash,
		user.Admin,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return takenError("login")
		}
		return fmt.Errorf("sqlite: creating user %s: %w", user.Login, err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getOne(ctx, "id", id)
}

func (s *UserStore) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	return s.getOne(ctx, "login", login)
}

func (s *UserStore) getOne(ctx context.Context, column, value string) (*model.User, error) {
	var u model.User
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value)
	if err := scanUser(row, &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", value)
		}
		return nil, fmt.Errorf("sqlite: getting user by %s %s: %w", column, value, err)
	}
	return &u, nil
}

// UpsertGitHub creates the user on first GitHub login and refreshes the
// profile fields on every later one. The admin flag is never touched here:
// promotion happens through the CLI only.
func (s *UserStore) UpsertGitHub(ctx context.Context, user *model.User) error {
	if user.GitHubID == nil {
		return fmt.Errorf("sqlite: upserting user %s: missing github id", user.Login)
	}

	var existing model.User
	err := scanUser(s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`, *user.GitHubID), &existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return s.Create(ctx, user)
	case err != nil:
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", *user.GitHubID, err)
	}

	now := time.Now().UTC()
	_, err = s.conn.ExecContext(ctx,
		`UPDATE users SET login = ?, email = ?, avatar_url = ?, updated_at = ?
		 WHERE id = ?`,
		user.Login,
		user.Email,
		user.AvatarURL,
		now,
		existing.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return takenError("login")
		}
		return fmt.Errorf("sqlite: updating user %s: %w", existing.ID, err)
	}

	user.ID = existing.ID
	user.Admin = existing.Admin
	user.PasswordHash = existing.PasswordHash
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = now
	return nil
}
