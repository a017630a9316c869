package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/conftrack/internal/apperror"
	"github.com/sakif/conftrack/internal/auth"
	"github.com/sakif/conftrack/internal/model"
	"github.com/sakif/conftrack/internal/respond"
	"github.com/sakif/conftrack/internal/view"
)

const (
	snippetCreatedNotice = "Snippet was successfully created."
	snippetUpdatedNotice = "Snippet was successfully updated."
)

// SnippetService is what SnippetHandler needs from the service layer.
type SnippetService interface {
	Find(ctx context.Context, id string) (*model.Snippet, error)
	ListPublic(ctx context.Context) (model.Snippets, error)
	New() *model.Snippet
	Save(ctx context.Context, snippet *model.Snippet) error
	Destroy(ctx context.Context, snippet *model.Snippet) error
}

// MarkdownRenderer turns snippet content into safe HTML.
type MarkdownRenderer interface {
	Render(source string) (template.HTML, error)
}

// SnippetHandler is the admin resource controller under /manage/snippets.
// Every route sits behind auth.Require(auth.PrivilegeAdmin).
type SnippetHandler struct {
	base
	snippets SnippetService
	markdown MarkdownRenderer
}

func NewSnippetHandler(snippets SnippetService, md MarkdownRenderer, out *respond.Writer, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{
		base:     base{out: out, logger: logger},
		snippets: snippets,
		markdown: md,
	}
}

// Routes mounts the controller; the caller applies the guard.
func (h *SnippetHandler) Routes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/new", h.New)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Get("/{id}/edit", h.Edit)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Destroy)
}

type snippetListPage struct {
	view.Page
	Snippets model.Snippets
}

type snippetPage struct {
	view.Page
	Snippet *model.Snippet
	HTML    template.HTML
}

type snippetFormPage struct {
	view.Page
	Snippet  *model.Snippet
	Errors   *apperror.AppError
	Action   string
	Method   string
	ReturnTo string
}

func snippetPath(s *model.Snippet) string {
	return "/manage/snippets/" + s.ID
}

// snippetCrumbs is Manage › Snippets, plus the snippet itself once it has a slug.
func snippetCrumbs(s *model.Snippet) view.Breadcrumbs {
	var b view.Breadcrumbs
	b.Add("Manage", "/manage")
	b.Add("Snippets", "/manage/snippets/")
	if s != nil && !s.NewRecord() {
		b.Add(s.Slug, snippetPath(s))
	}
	return b
}

func newSnippetForm(s *model.Snippet, errs *apperror.AppError, returnTo string) *snippetFormPage {
	p := &snippetFormPage{Snippet: s, Errors: errs, ReturnTo: returnTo}
	p.Breadcrumbs = snippetCrumbs(s)
	if s.NewRecord() {
		p.Title = "New snippet"
		p.Action = "/manage/snippets"
	} else {
		p.Title = "Editing " + s.Slug
		p.Action = snippetPath(s)
		p.Method = http.MethodPut
	}
	return p
}

// Index lists public snippets ordered by slug.
func (h *SnippetHandler) Index(w http.ResponseWriter, r *http.Request) {
	snippets, err := h.snippets.ListPublic(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.out.Respond(w, r, respond.Responders{
		respond.FormatHTML: func() respond.Response {
			page := &snippetListPage{Snippets: snippets}
			page.Title = "Snippets"
			page.Breadcrumbs = snippetCrumbs(nil)
			return respond.View{Template: "snippets/index", Data: page}
		},
		respond.FormatXML: func() respond.Response {
			return h.xml(r, http.StatusOK, snippets, "")
		},
	})
}

func (h *SnippetHandler) Show(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.out.Respond(w, r, respond.Responders{
		respond.FormatHTML: func() respond.Response {
			html, err := h.markdown.Render(snippet.Content)
			if err != nil {
				h.logger.Error("failed to render snippet markdown",
					slog.String("id", snippet.ID),
					slog.String("error", err.Error()),
				)
				html = template.HTML(template.HTMLEscapeString(snippet.Content))
			}
			page := &snippetPage{Snippet: snippet, HTML: html}
			page.Title = snippet.Slug
			page.Breadcrumbs = snippetCrumbs(snippet)
			return respond.View{Template: "snippets/show", Data: page}
		},
		respond.FormatXML: func() respond.Response {
			return h.xml(r, http.StatusOK, snippet, "")
		},
	})
}

func (h *SnippetHandler) New(w http.ResponseWriter, r *http.Request) {
	snippet := h.snippets.New()

	h.out.Respond(w, r, respond.Responders{
		respond.FormatHTML: func() respond.Response {
			return respond.View{Template: "snippets/new", Data: newSnippetForm(snippet, nil, "")}
		},
		respond.FormatXML: func() respond.Response {
			return h.xml(r, http.StatusOK, snippet, "")
		},
	})
}

// Edit remembers where the admin came from so Update can send them back.
func (h *SnippetHandler) Edit(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	returnTo := localPath(r.FormValue("return_to"), r.Host)
	if returnTo == "" {
		returnTo = localPath(r.Referer(), r.Host)
	}

	h.out.Respond(w, r, respond.Responders{
		respond.FormatHTML: func() respond.Response {
			return respond.View{Template: "snippets/edit", Data: newSnippetForm(snippet, nil, returnTo)}
		},
	})
}

func (h *SnippetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attrs, err := decodeAttributes(w, r, "snippet")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	snippet := h.snippets.New()
	snippet.AssignAttributes(attrs, auth.RoleFromContext(ctx))

	err = h.snippets.Save(ctx, snippet)
	if invalid, ok := apperror.AsValidation(err); ok {
		h.out.Respond(w, r, respond.Responders{
			respond.FormatHTML: func() respond.Response {
				return respond.View{
					Template: "snippets/new",
					Data:     newSnippetForm(snippet, invalid, ""),
					Status:   http.StatusUnprocessableEntity,
				}
			},
			respond.FormatXML: func() respond.Response {
				return h.xmlErrors(r, http.StatusUnprocessableEntity, invalid.Messages())
			},
		})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.out.Respond(w, r, respond.Responders{
		respond.FormatHTML: func() respond.Response {
			return respond.Redirect{Location: snippetPath(snippet), Flash: respond.Notice(snippetCreatedNotice)}
		},
		respond.FormatXML: func() respond.Response {
			return h.xml(r, http.StatusCreated, snippet, snippetPath(snippet))
		},
	})
}

func (h *SnippetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snippet, err := h.snippets.Find(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	attrs, err := decodeAttributes(w, r, "snippet")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	snippet.AssignAttributes(attrs, auth.RoleFromContext(ctx))
	returnTo := localPath(r.PostFormValue("return_to"), r.Host)

	err = h.snippets.Save(ctx, snippet)
	if invalid, ok := apperror.AsValidation(err); ok {
		h.out.Respond(w, r, respond.Responders{
			respond.FormatHTML: func() respond.Response {
				return respond.View{
					Template: "snippets/edit",
					Data:     newSnippetForm(snippet, invalid, returnTo),
					Status:   http.StatusUnprocessableEntity,
				}
			},
			respond.FormatXML: func() respond.Response {
				return h.xmlErrors(r, http.StatusUnprocessableEntity, invalid.Messages())
			},
		})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	location := returnTo
	if location == "" {
		location = snippetPath(snippet)
	}
	h.out.Respond(w, r, respond.Responders{
		respond.FormatHTML: func() respond.Response {
			return respond.Redirect{Location: location, Flash: respond.Notice(snippetUpdatedNotice)}
		},
		respond.FormatXML: func() respond.Response {
			return respond.XML{Status: http.StatusOK}
		},
	})
}

func (h *SnippetHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snippet, err := h.snippets.Find(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.snippets.Destroy(ctx, snippet); err != nil {
		h.fail(w, r, err)
		return
	}

	h.out.Respond(w, r, respond.Responders{
		respond.FormatHTML: func() respond.Response {
			return respond.Redirect{Location: "/manage/snippets"}
		},
		respond.FormatXML: func() respond.Response {
			return respond.XML{Status: http.StatusOK}
		},
	})
}
