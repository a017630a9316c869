package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/conftrack/internal/apperror"
	"github.com/sakif/conftrack/internal/model"
	"github.com/sakif/conftrack/internal/repository"
	"github.com/sakif/conftrack/internal/validation"
)

// EventService resolves the event a request is scoped to.
type EventService struct {
	repo        repository.EventRepository
	validator   *validation.Validator
	defaultSlug string
	logger      *slog.Logger
}

// NewEventService creates the service. defaultSlug is the configured current
// event (events.current) and may be empty.
func NewEventService(repo repository.EventRepository, v *validation.Validator, defaultSlug string, logger *slog.Logger) *EventService {
	return &EventService{
		repo:        repo,
		validator:   v,
		defaultSlug: defaultSlug,
		logger:      logger,
	}
}

// Current returns the event named by ref (a slug or an id). With an empty ref
// it falls back to the configured default event, then to the event with the
// latest start date.
func (s *EventService) Current(ctx context.Context, ref string) (*model.Event, error) {
	if ref != "" {
		return s.lookup(ctx, ref)
	}

	if s.defaultSlug != "" {
		event, err := s.repo.GetBySlug(ctx, s.defaultSlug)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("loading default event %s: %w", s.defaultSlug, err)
		}
		s.logger.Warn("configured current event does not exist",
			slog.String("slug", s.defaultSlug),
		)
	}

	event, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading latest event: %w", err)
	}
	return event, nil
}

func (s *EventService) lookup(ctx context.Context, ref string) (*model.Event, error) {
	event, err := s.repo.GetBySlug(ctx, ref)
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("loading event %s: %w", ref, err)
	}

	event, err = s.repo.GetByID(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("loading event %s: %w", ref, err)
	}
	return event, nil
}

func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// Create validates and stores a new event.
func (s *EventService) Create(ctx context.Context, event *model.Event) error {
	if !event.EndDate.IsZero() && event.EndDate.Before(event.StartDate) {
		return apperror.ValidationFailed("end_date", "End date must not be before the start date")
	}
	if err := s.validator.Check(event); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("creating event: %w", err)
	}
	s.logger.Info("event created",
		slog.String("id", event.ID),
		slog.String("slug", event.Slug),
	)
	return nil
}
