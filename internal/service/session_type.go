package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/conftrack/internal/model"
	"github.com/sakif/conftrack/internal/repository"
	"github.com/sakif/conftrack/internal/validation"
)

type SessionTypeService struct {
	repo      repository.SessionTypeRepository
	validator *validation.Validator
	logger    *slog.Logger
}

func NewSessionTypeService(repo repository.SessionTypeRepository, v *validation.Validator, logger *slog.Logger) *SessionTypeService {
	return &SessionTypeService{
		repo:      repo,
		validator: v,
		logger:    logger,
	}
}

func (s *SessionTypeService) Find(ctx context.Context, id string) (*model.SessionType, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding session type %s: %w", id, err)
	}
	return st, nil
}

func (s *SessionTypeService) ListByEvent(ctx context.Context, event *model.Event) (model.SessionTypes, error) {
	list, err := s.repo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("listing session types of %s: %w", event.Slug, err)
	}
	return list, nil
}

// New returns an unsaved session type belonging to event.
func (s *SessionTypeService) New(event *model.Event) *model.SessionType {
	return &model.SessionType{EventID: event.ID}
}

func (s *SessionTypeService) Save(ctx context.Context, st *model.SessionType) error {
	if err := s.validator.Check(st); err != nil {
		return err
	}

	if st.NewRecord() {
		if err := s.repo.Create(ctx, st); err != nil {
			return fmt.Errorf("creating session type: %w", err)
		}
		s.logger.Info("session type created",
			slog.String("id", st.ID),
			slog.String("event_id", st.EventID),
		)
		return nil
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return fmt.Errorf("updating session type %s: %w", st.ID, err)
	}
	s.logger.Info("session type updated", slog.String("id", st.ID))
	return nil
}

func (s *SessionTypeService) Destroy(ctx context.Context, st *model.SessionType) error {
	if err := s.repo.Delete(ctx, st.ID); err != nil {
		return fmt.Errorf("deleting session type %s: %w", st.ID, err)
	}
	s.logger.Info("session type deleted", slog.String("id", st.ID))
	return nil
}
