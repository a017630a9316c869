package handler

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sakif/conftrack/internal/apperror"
	"github.com/sakif/conftrack/internal/model"
	"github.com/sakif/conftrack/internal/respond"
	"github.com/sakif/conftrack/internal/view"
)

// PublicSnippets lists what the home page shows.
type PublicSnippets interface {
	ListPublic(ctx context.Context) (model.Snippets, error)
}

// HomeHandler serves the landing page: the current event and every public
// snippet rendered from markdown.
type HomeHandler struct {
	base
	snippets PublicSnippets
	events   EventFinder
	markdown MarkdownRenderer
}

func NewHomeHandler(snippets PublicSnippets, events EventFinder, md MarkdownRenderer, out *respond.Writer, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		base:     base{out: out, logger: logger},
		snippets: snippets,
		events:   events,
		markdown: md,
	}
}

type renderedSnippet struct {
	Snippet model.Snippet
	HTML    template.HTML
}

type homePage struct {
	view.Page
	Event    *model.Event
	Snippets []renderedSnippet
}

func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	event, err := h.events.Current(ctx, "")
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		h.fail(w, r, err)
		return
	}

	snippets, err := h.snippets.ListPublic(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page := &homePage{Event: event, Snippets: make([]renderedSnippet, 0, len(snippets))}
	for _, s := range snippets {
		html, err := h.markdown.Render(s.Content)
		if err != nil {
			h.logger.Warn("skipping snippet with unrenderable markdown",
				slog.String("slug", s.Slug),
				slog.String("error", err.Error()),
			)
			continue
		}
		page.Snippets = append(page.Snippets, renderedSnippet{Snippet: s, HTML: html})
	}

	h.out.Write(w, r, respond.View{Template: "home/index", Data: page})
}

// Manage is the admin landing page; snippets are the only thing to manage.
func (h *HomeHandler) Manage(w http.ResponseWriter, r *http.Request) {
	h.out.Write(w, r, respond.Redirect{Location: "/manage/snippets"})
}

// NotFound answers routes nothing else matched.
func (h *HomeHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.fail(w, r, &apperror.AppError{
		Err:     apperror.ErrNotFound,
		Message: "The page you were looking for doesn't exist.",
	})
}
