package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/sakif/conftrack/internal/apperror"
	"github.com/sakif/conftrack/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSnippetRepo is an in-memory SnippetRepository.
type fakeSnippetRepo struct {
	snippets map[string]model.Snippet
	nextID   int
	creates  int
	updates  int
}

func newFakeSnippetRepo() *fakeSnippetRepo {
	return &fakeSnippetRepo{snippets: make(map[string]model.Snippet)}
}

func (f *fakeSnippetRepo) slugTaken(slug, exceptID string) bool {
	for id, s := range f.snippets {
		if s.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

func (f *fakeSnippetRepo) Create(_ context.Context, s *model.Snippet) error {
	if f.slugTaken(s.Slug, "") {
		return apperror.ValidationFailed("slug", "Slug has already been taken")
	}
	f.nextID++
	f.creates++
	s.ID = fmt.Sprintf("snip-%d", f.nextID)
	f.snippets[s.ID] = *s
	return nil
}

func (f *fakeSnippetRepo) GetByID(_ context.Context, id string) (*model.Snippet, error) {
	s, ok := f.snippets[id]
	if !ok {
		return nil, apperror.NotFound("snippet", id)
	}
	return &s, nil
}

func (f *fakeSnippetRepo) GetBySlug(_ context.Context, slug string) (*model.Snippet, error) {
	for _, s := range f.snippets {
		if s.Slug == slug {
			return &s, nil
		}
	}
	return nil, apperror.NotFound("snippet", slug)
}

func (f *fakeSnippetRepo) ListPublic(_ context.Context) (model.Snippets, error) {
	out := model.Snippets{}
	for _, s := range f.snippets {
		if s.Public {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (f *fakeSnippetRepo) Update(_ context.Context, s *model.Snippet) error {
	if _, ok := f.snippets[s.ID]; !ok {
		return apperror.NotFound("snippet", s.ID)
	}
	if f.slugTaken(s.Slug, s.ID) {
		return apperror.ValidationFailed("slug", "Slug has already been taken")
	}
	f.updates++
	f.snippets[s.ID] = *s
	return nil
}

func (f *fakeSnippetRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.snippets[id]; !ok {
		return apperror.NotFound("snippet", id)
	}
	delete(f.snippets, id)
	return nil
}

type fakeSessionTypeRepo struct {
	items  map[string]model.SessionType
	nextID int
}

func newFakeSessionTypeRepo() *fakeSessionTypeRepo {
	return &fakeSessionTypeRepo{items: make(map[string]model.SessionType)}
}

func (f *fakeSessionTypeRepo) Create(_ context.Context, st *model.SessionType) error {
	f.nextID++
	st.ID = fmt.Sprintf("st-%d", f.nextID)
	f.items[st.ID] = *st
	return nil
}

func (f *fakeSessionTypeRepo) GetByID(_ context.Context, id string) (*model.SessionType, error) {
	st, ok := f.items[id]
	if !ok {
		return nil, apperror.NotFound("session type", id)
	}
	return &st, nil
}

func (f *fakeSessionTypeRepo) ListByEvent(_ context.Context, eventID string) (model.SessionTypes, error) {
	out := model.SessionTypes{}
	for _, st := range f.items {
		if st.EventID == eventID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeSessionTypeRepo) Update(_ context.Context, st *model.SessionType) error {
	if _, ok := f.items[st.ID]; !ok {
		return apperror.NotFound("session type", st.ID)
	}
	f.items[st.ID] = *st
	return nil
}

func (f *fakeSessionTypeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return apperror.NotFound("session type", id)
	}
	delete(f.items, id)
	return nil
}

type fakeEventRepo struct {
	events []model.Event
}

func (f *fakeEventRepo) Create(_ context.Context, e *model.Event) error {
	e.ID = fmt.Sprintf("ev-%d", len(f.events)+1)
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	for _, e := range f.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, apperror.NotFound("event", id)
}

func (f *fakeEventRepo) GetBySlug(_ context.Context, slug string) (*model.Event, error) {
	for _, e := range f.events {
		if e.Slug == slug {
			return &e, nil
		}
	}
	return nil, apperror.NotFound("event", slug)
}

func (f *fakeEventRepo) Latest(_ context.Context) (*model.Event, error) {
	if len(f.events) == 0 {
		return nil, apperror.NotFound("event", "latest")
	}
	latest := f.events[0]
	for _, e := range f.events[1:] {
		if e.StartDate.After(latest.StartDate) {
			latest = e
		}
	}
	return &latest, nil
}

func (f *fakeEventRepo) List(_ context.Context) ([]model.Event, error) {
	return f.events, nil
}

type fakeUserRepo struct {
	users map[string]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range f.users {
		if existing.Login == u.Login {
			return apperror.ValidationFailed("login", "Login has already been taken")
		}
	}
	u.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (f *fakeUserRepo) GetByLogin(_ context.Context, login string) (*model.User, error) {
	for _, u := range f.users {
		if u.Login == login {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", login)
}

func (f *fakeUserRepo) UpsertGitHub(_ context.Context, u *model.User) error {
	for id, existing := range f.users {
		if existing.GitHubID != nil && *existing.GitHubID == *u.GitHubID {
			u.ID = id
			u.Admin = existing.Admin
			f.users[id] = *u
			return nil
		}
	}
	u.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	f.users[u.ID] = *u
	return nil
}

func githubUser(id int64, login string) *model.User {
	return &model.User{GitHubID: &id, Login: login}
}
