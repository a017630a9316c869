package handler

import (
	"context"
	"errors"
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
	sessionTypeCreatedNotice  = "Session type was successfully created."
	sessionTypeUpdatedNotice  = "Session type was successfully updated."
	sessionTypeDeletedNotice  = "Session type was successfully deleted."
	sessionTypeNotFoundNotice = "Session type not found."
)

type SessionTypeService interface {
	Find(ctx context.Context, id string) (*model.SessionType, error)
	ListByEvent(ctx context.Context, event *model.Event) (model.SessionTypes, error)
	New(event *model.Event) *model.SessionType
	Save(ctx context.Context, st *model.SessionType) error
	Destroy(ctx context.Context, st *model.SessionType) error
}

// EventFinder resolves the event a request is about. An empty ref means
// "the current event".
type EventFinder interface {
	Current(ctx context.Context, ref string) (*model.Event, error)
}

// SessionTypeHandler manages the session types of an event. Reads are
// public; new, edit, create, update and destroy are admin only.
type SessionTypeHandler struct {
	base
	sessionTypes SessionTypeService
	events       EventFinder
}

func NewSessionTypeHandler(sessionTypes SessionTypeService, events EventFinder, out *respond.Writer, logger *slog.Logger) *SessionTypeHandler {
	return &SessionTypeHandler{
		base:         base{out: out, logger: logger},
		sessionTypes: sessionTypes,
		events:       events,
	}
}

// Routes mounts both the flat /session_types routes and the event-scoped
// /events/{event_id}/session_types routes. admin wraps the write actions.
func (h *SessionTypeHandler) Routes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/session_types", h.RedirectToEvent)
	r.Get("/session_types/{id}", h.Show)

	r.Route("/events/{event_id}/session_types", func(r chi.Router) {
		r.Get("/", h.Index)
		r.Get("/{id}", h.Show)
		r.With(admin).Get("/new", h.New)
		r.With(admin).Post("/", h.Create)
	})

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/session_types/new", h.New)
		r.Post("/session_types", h.Create)
		r.Get("/session_types/{id}/edit", h.Edit)
		r.Put("/session_types/{id}", h.Update)
		r.Delete("/session_types/{id}", h.Destroy)
	})
}

type sessionTypeListPage struct {
	view.Page
	Event        *model.Event
	SessionTypes model.SessionTypes
	Admin        bool
}

type sessionTypePage struct {
	view.Page
	Event       *model.Event
	SessionType *model.SessionType
	Admin       bool
}

type sessionTypeFormPage struct {
	view.Page
	Event       *model.Event
	SessionType *model.SessionType
	Errors      *apperror.AppError
	Action      string
	Method      string
}

func eventSessionTypesPath(e *model.Event) string {
	return "/events/" + e.Slug + "/session_types"
}

func sessionTypePath(st *model.SessionType) string {
	return "/session_types/" + st.ID
}

func sessionTypeCrumbs(e *model.Event, st *model.SessionType) view.Breadcrumbs {
	var b view.Breadcrumbs
	b.Add(e.Title, "/")
	b.Add("Session types", eventSessionTypesPath(e))
	if st != nil && !st.NewRecord() {
		label := st.Title
		if label == "" {
			label = "(untitled)"
		}
		b.Add(label, sessionTypePath(st))
	}
	return b
}

func newSessionTypeForm(e *model.Event, st *model.SessionType, errs *apperror.AppError) *sessionTypeFormPage {
	p := &sessionTypeFormPage{Event: e, SessionType: st, Errors: errs}
	p.Breadcrumbs = sessionTypeCrumbs(e, st)
	if st.NewRecord() {
		p.Title = "New session type"
		p.Action = eventSessionTypesPath(e)
	} else {
		p.Title = "Editing session type"
		p.Action = sessionTypePath(st)
		p.Method = http.MethodPut
	}
	return p
}

// currentEvent is the event named in the URL, or the default event when the
// URL names none.
func (h *SessionTypeHandler) currentEvent(r *http.Request) (*model.Event, error) {
	return h.events.Current(r.Context(), chi.URLParam(r, "event_id"))
}

// find loads the session type in the URL. When it does not exist the client
// is sent to the current event's index with a failure flash, and ok is false.
func (h *SessionTypeHandler) find(w http.ResponseWriter, r *http.Request) (*model.SessionType, *model.Event, bool) {
	st, err := h.sessionTypes.Find(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, apperror.ErrNotFound) {
		event, eerr := h.currentEvent(r)
		if eerr != nil {
			h.fail(w, r, eerr)
			return nil, nil, false
		}
		h.out.Write(w, r, respond.Redirect{
			Location: eventSessionTypesPath(event),
			Flash:    respond.Failure(sessionTypeNotFoundNotice),
		})
		return nil, nil, false
	}
	if err != nil {
		h.fail(w, r, err)
		return nil, nil, false
	}

	event, err := h.events.Current(r.Context(), st.EventID)
	if err != nil {
		h.fail(w, r, err)
		return nil, nil, false
	}
	return st, event, true
}

// RedirectToEvent sends an HTML GET /session_types to the current event's
// list. XML clients get that list directly.
func (h *SessionTypeHandler) RedirectToEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.currentEvent(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if respond.Negotiate(r) != respond.FormatXML {
		h.out.Write(w, r, respond.Redirect{Location: eventSessionTypesPath(event)})
		return
	}

	list, err := h.sessionTypes.ListByEvent(r.Context(), event)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.out.Write(w, r, h.xml(r, http.StatusOK, list, ""))
}

func (h *SessionTypeHandler) Index(w http.ResponseWriter, r *http.Request) {
	event, err := h.currentEvent(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.sessionTypes.ListByEvent(r.Context(), event)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.out.Respond(w, r, respond.Responders{
		respond.FormatHTML: func() respond.Response {
			page := &sessionTypeListPage{
				Event:        event,
				SessionTypes: list,
				Admin:        auth.RoleFromContext(r.Context()).IsAdmin(),
			}
			page.Title = "Session types"
			page.Breadcrumbs = sessionTypeCrumbs(event, nil)
			return respond.View{Template: "session_types/index", Data: page}
		},
		respond.FormatXML: func() respond.Response {
			return h.xml(r, http.StatusOK, list, "")
		},
	})
}

func (h *SessionTypeHandler) Show(w http.ResponseWriter, r *http.Request) {
	st, event, ok := h.find(w, r)
	if !ok {
		return
	}

	h.out.Respond(w, r, respond.Responders{
		respond.FormatHTML: func() respond.Response {
			page := &sessionTypePage{
				Event:       event,
				SessionType: st,
				Admin:       auth.RoleFromContext(r.Context()).IsAdmin(),
			}
			page.Title = st.Title
			page.Breadcrumbs = sessionTypeCrumbs(event, st)
			return respond.View{Template: "session_types/show", Data: page}
		},
		respond.FormatXML: func() respond.Response {
			return h.xml(r, http.StatusOK, st, "")
		},
	})
}

func (h *SessionTypeHandler) New(w http.ResponseWriter, r *http.Request) {
	event, err := h.currentEvent(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	st := h.sessionTypes.New(event)

	h.out.Respond(w, r, respond.Responders{
		respond.FormatHTML: func() respond.Response {
			return respond.View{Template: "session_types/new", Data: newSessionTypeForm(event, st, nil)}
		},
		respond.FormatXML: func() respond.Response {
			return h.xml(r, http.StatusOK, st, "")
		},
	})
}

func (h *SessionTypeHandler) Edit(w http.ResponseWriter, r *http.Request) {
	st, event, ok := h.find(w, r)
	if !ok {
		return
	}

	h.out.Respond(w, r, respond.Responders{
		respond.FormatHTML: func() respond.Response {
			return respond.View{Template: "session_types/edit", Data: newSessionTypeForm(event, st, nil)}
		},
	})
}

func (h *SessionTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	event, err := h.currentEvent(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	attrs, err := decodeAttributes(w, r, "session_type")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	st := h.sessionTypes.New(event)
	st.AssignAttributes(attrs, auth.RoleFromContext(ctx))

	err = h.sessionTypes.Save(ctx, st)
	if invalid, ok := apperror.AsValidation(err); ok {
		h.out.Respond(w, r, respond.Responders{
			respond.FormatHTML: func() respond.Response {
				return respond.View{
					Template: "session_types/new",
					Data:     newSessionTypeForm(event, st, invalid),
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
			return respond.Redirect{Location: eventSessionTypesPath(event), Flash: respond.Notice(sessionTypeCreatedNotice)}
		},
		respond.FormatXML: func() respond.Response {
			return h.xml(r, http.StatusCreated, st, sessionTypePath(st))
		},
	})
}

func (h *SessionTypeHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	st, event, ok := h.find(w, r)
	if !ok {
		return
	}

	attrs, err := decodeAttributes(w, r, "session_type")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	st.AssignAttributes(attrs, auth.RoleFromContext(ctx))

	err = h.sessionTypes.Save(ctx, st)
	if invalid, ok := apperror.AsValidation(err); ok {
		h.out.Respond(w, r, respond.Responders{
			respond.FormatHTML: func() respond.Response {
				return respond.View{
					Template: "session_types/edit",
					Data:     newSessionTypeForm(event, st, invalid),
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
			return respond.Redirect{Location: sessionTypePath(st), Flash: respond.Notice(sessionTypeUpdatedNotice)}
		},
		respond.FormatXML: func() respond.Response {
			return respond.XML{Status: http.StatusOK}
		},
	})
}

func (h *SessionTypeHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	st, event, ok := h.find(w, r)
	if !ok {
		return
	}
	if err := h.sessionTypes.Destroy(r.Context(), st); err != nil {
		h.fail(w, r, err)
		return
	}

	h.out.Respond(w, r, respond.Responders{
		respond.FormatHTML: func() respond.Response {
			return respond.Redirect{Location: eventSessionTypesPath(event), Flash: respond.Notice(sessionTypeDeletedNotice)}
		},
		respond.FormatXML: func() respond.Response {
			return respond.XML{Status: http.StatusOK}
		},
	})
}
