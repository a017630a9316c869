package handler

import (
	"errors"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/conftrack/internal/apperror"
	"github.com/sakif/conftrack/internal/model"
	"github.com/sakif/conftrack/internal/respond"
	"github.com/sakif/conftrack/internal/view"
)

// XMLDocument is anything that serializes itself to a complete XML document.
type XMLDocument interface {
	ToXML() ([]byte, error)
}

type errorPage struct {
	view.Page
	Message   string
	RequestID string
}

// base carries what every controller needs to answer a request.
type base struct {
	out    *respond.Writer
	logger *slog.Logger
}

// xml serializes doc into an XML response. Serialization failures are logged
// and answered with a bare 500.
func (b *base) xml(r *http.Request, status int, doc XMLDocument, location string) respond.Response {
	body, err := doc.ToXML()
	if err != nil {
		b.logger.Error("failed to serialize xml",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		return respond.Head{Status: http.StatusInternalServerError}
	}
	return respond.XML{Status: status, Body: body, Location: location}
}

// xmlErrors answers a validation failure over XML.
func (b *base) xmlErrors(r *http.Request, status int, messages []string) respond.Response {
	body, err := model.ErrorsXML(messages)
	if err != nil {
		b.logger.Error("failed to serialize xml errors", slog.String("error", err.Error()))
		return respond.Head{Status: http.StatusInternalServerError}
	}
	return respond.XML{Status: status, Body: body}
}

// fail maps err to a response in the negotiated format:
//
//	apperror.ErrNotFound   → 404
//	apperror.ErrValidation → 422
//	apperror.ErrForbidden  → 403
//	anything else          → 500, logged, message hidden
func (b *base) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "An internal error occurred"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}
		if status != http.StatusInternalServerError {
			message = appErr.Message
		}
	}

	reqID := chimiddleware.GetReqID(r.Context())
	if status == http.StatusInternalServerError {
		b.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("requestID", reqID),
			slog.String("error", err.Error()),
		)
	}

	template := "errors/500"
	if status != http.StatusInternalServerError {
		template = "errors/404"
	}

	b.out.Respond(w, r, respond.Responders{
		respond.FormatHTML: func() respond.Response {
			page := &errorPage{Message: message, RequestID: reqID}
			page.Title = http.StatusText(status)
			return respond.View{Template: template, Data: page, Status: status}
		},
		respond.FormatXML: func() respond.Response {
			return b.xmlErrors(r, status, []string{message})
		},
	})
}

// badRequest answers an undecodable body.
func (b *base) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	b.logger.Warn("undecodable request body",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
}
