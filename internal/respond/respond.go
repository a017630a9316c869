// Package respond picks a response format for a request and writes typed
// responses.
//
// Handlers describe what each format should get with a Responders map; the
// Writer negotiates the format, calls the matching function and writes the
// result. A format with no entry gets 406 Not Acceptable.
package respond

import (
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/conftrack/internal/flash"
)

type Format string

const (
	FormatHTML Format = "html"
	FormatXML  Format = "xml"
)

// Negotiate returns the format the client asked for. A URL extension (set in
// the context by chi's URLFormat middleware) wins over the Accept header.
// Among Accept entries the highest q-value wins, ties going to the one listed
// first, and q=0 entries are skipped. With neither, the answer is HTML.
func Negotiate(r *http.Request) Format {
	if ext, _ := r.Context().Value(chimiddleware.URLFormatCtxKey).(string); ext != "" {
		return Format(strings.ToLower(ext))
	}

	best, bestQ := FormatHTML, 0.0
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}

		var format Format
		switch mediaType {
		case "application/xml", "text/xml":
			format = FormatXML
		case "text/html", "application/xhtml+xml", "*/*":
			format = FormatHTML
		default:
			continue
		}

		q := 1.0
		if v, ok := params["q"]; ok {
			if q, err = strconv.ParseFloat(v, 64); err != nil {
				continue
			}
		}
		if q > bestQ {
			best, bestQ = format, q
		}
	}
	return best
}

// Response is one of View, Redirect, XML or Head.
type Response interface {
	isResponse()
}

// View renders a named template.
type View struct {
	Template string
	Data     any
	Status   int // 0 means 200
}

// Redirect sends the client elsewhere, optionally with a flash message for
// the next request.
type Redirect struct {
	Location string
	Status   int // 0 means 302 for GET/HEAD and 303 otherwise
	Flash    *flash.Message
}

// XML writes Body verbatim.
type XML struct {
	Status   int // 0 means 200
	Body     []byte
	Location string
}

// Head is a body-less response.
type Head struct {
	Status int
}

func (View) isResponse()     {}
func (Redirect) isResponse() {}
func (XML) isResponse()      {}
func (Head) isResponse()     {}

// Notice and Failure build the flash for a Redirect.
func Notice(text string) *flash.Message {
	return &flash.Message{Kind: flash.Notice, Text: text}
}

func Failure(text string) *flash.Message {
	return &flash.Message{Kind: flash.Failure, Text: text}
}

// Responders maps each supported format to the response it produces. Only
// the chosen function runs.
type Responders map[Format]func() Response

// Renderer executes HTML templates.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name string, data any) error
}

// Writer writes responses.
type Writer struct {
	renderer Renderer
	logger   *slog.Logger
}

func NewWriter(renderer Renderer, logger *slog.Logger) *Writer {
	return &Writer{renderer: renderer, logger: logger}
}

// Respond negotiates the format and writes the matching response.
func (wr *Writer) Respond(w http.ResponseWriter, r *http.Request, responders Responders) {
	format := Negotiate(r)
	build, ok := responders[format]
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotAcceptable), http.StatusNotAcceptable)
		return
	}
	wr.Write(w, r, build())
}

// Write writes resp regardless of the negotiated format.
func (wr *Writer) Write(w http.ResponseWriter, r *http.Request, resp Response) {
	switch resp := resp.(type) {
	case View:
		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}
		if err := wr.renderer.Render(w, r, status, resp.Template, resp.Data); err != nil {
			wr.logger.Error("failed to render template",
				slog.String("template", resp.Template),
				slog.String("requestID", chimiddleware.GetReqID(r.Context())),
				slog.String("error", err.Error()),
			)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

	case Redirect:
		status := resp.Status
		if status == 0 {
			status = RedirectStatus(r)
		}
		if resp.Flash != nil {
			flash.Set(w, resp.Flash.Kind, resp.Flash.Text)
		}
		http.Redirect(w, r, resp.Location, status)

	case XML:
		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}
		if resp.Location != "" {
			w.Header().Set("Location", resp.Location)
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
		w.WriteHeader(status)
		if _, err := w.Write(resp.Body); err != nil {
			wr.logger.Debug("client went away while writing xml", slog.String("error", err.Error()))
		}

	case Head:
		w.WriteHeader(resp.Status)

	default:
		wr.logger.Error("unknown response type")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// RedirectStatus is 302 after a GET or HEAD and 303 See Other after anything
// else, so browsers follow form submissions with a GET.
func RedirectStatus(r *http.Request) int {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
