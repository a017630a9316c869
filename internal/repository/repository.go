// Package repository declares the persistence interfaces the services depend on.
// internal/repository/sqlite provides the production implementation; tests use
// hand-written fakes.
package repository

import (
	"context"

	"github.com/sakif/conftrack/internal/model"
)

// SnippetRepository stores snippets. GetByID, Update and Delete return an
// apperror.ErrNotFound error for unknown ids; a duplicate slug is reported as
// an apperror.ErrValidation error on the "slug" field.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	GetBySlug(ctx context.Context, slug string) (*model.Snippet, error)
	// ListPublic returns public snippets ordered by slug.
	ListPublic(ctx context.Context) (model.Snippets, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
}

// SessionTypeRepository stores the session types of events.
type SessionTypeRepository interface {
	Create(ctx context.Context, st *model.SessionType) error
	GetByID(ctx context.Context, id string) (*model.SessionType, error)
	// ListByEvent returns an event's session types ordered by title.
	ListByEvent(ctx context.Context, eventID string) (model.SessionTypes, error)
	Update(ctx context.Context, st *model.SessionType) error
	Delete(ctx context.Context, id string) error
}

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetBySlug(ctx context.Context, slug string) (*model.Event, error)
	// Latest returns the event with the most recent start date.
	Latest(ctx context.Context) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
}

// UserRepository stores both password accounts and GitHub accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	// UpsertGitHub creates or refreshes the user owning user.GitHubID.
	UpsertGitHub(ctx context.Context, user *model.User) error
}
