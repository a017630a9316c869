// Package service holds the business operations the handlers call.
//
// Each service wraps one repository and owns the entity life cycle the
// controllers rely on: Find an existing record, New an unsaved one, Save
// (validate, then create or update) and Destroy.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/conftrack/internal/model"
	"github.com/sakif/conftrack/internal/repository"
	"github.com/sakif/conftrack/internal/validation"
)

type SnippetService struct {
	repo      repository.SnippetRepository
	validator *validation.Validator
	logger    *slog.Logger
}

func NewSnippetService(repo repository.SnippetRepository, v *validation.Validator, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:      repo,
		validator: v,
		logger:    logger,
	}
}

// Find loads a snippet by id. Unknown ids yield an apperror.ErrNotFound error.
func (s *SnippetService) Find(ctx context.Context, id string) (*model.Snippet, error) {
	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding snippet %s: %w", id, err)
	}
	return snippet, nil
}

// FindBySlug is used by public pages, which address snippets by slug.
func (s *SnippetService) FindBySlug(ctx context.Context, slug string) (*model.Snippet, error) {
	snippet, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("finding snippet by slug %s: %w", slug, err)
	}
	return snippet, nil
}

func (s *SnippetService) ListPublic(ctx context.Context) (model.Snippets, error) {
	snippets, err := s.repo.ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	return snippets, nil
}

// New returns an unsaved snippet with default values.
func (s *SnippetService) New() *model.Snippet {
	return &model.Snippet{}
}

// Save validates snippet and persists it. On a validation failure nothing is
// written and the returned error wraps apperror.ErrValidation.
func (s *SnippetService) Save(ctx context.Context, snippet *model.Snippet) error {
	if err := s.validator.Check(snippet); err != nil {
		return err
	}

	if snippet.NewRecord() {
		if err := s.repo.Create(ctx, snippet); err != nil {
			return fmt.Errorf("creating snippet: %w", err)
		}
		s.logger.Info("snippet created",
			slog.String("id", snippet.ID),
			slog.String("slug", snippet.Slug),
		)
		return nil
	}

	if err := s.repo.Update(ctx, snippet); err != nil {
		return fmt.Errorf("updating snippet %s: %w", snippet.ID, err)
	}
	s.logger.Info("snippet updated", slog.String("id", snippet.ID))
	return nil
}

func (s *SnippetService) Destroy(ctx context.Context, snippet *model.Snippet) error {
	if err := s.repo.Delete(ctx, snippet.ID); err != nil {
		return fmt.Errorf("deleting snippet %s: %w", snippet.ID, err)
	}
	s.logger.Info("snippet deleted",
		slog.String("id", snippet.ID),
		slog.String("slug", snippet.Slug),
	)
	return nil
}
