package handler

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/sakif/conftrack/internal/model"
)

// maxBodyBytes bounds form and XML request bodies.
const maxBodyBytes = 1 << 20

// decodeAttributes extracts the attributes nested under scope.
//
// Form submissions carry them as scope[field]=value; when a field repeats,
// the last value wins (the hidden "0" before a checked checkbox). XML
// clients send <scope><field>value</field></scope>, where scope and field
// names may be dasherized. A request without a body yields empty attributes.
func decodeAttributes(w http.ResponseWriter, r *http.Request, scope string) (model.Attributes, error) {
	if isXMLBody(r) {
		return decodeXMLAttributes(http.MaxBytesReader(w, r.Body, maxBodyBytes), scope)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parsing form: %w", err)
	}
	return formAttributes(r.PostForm, scope), nil
}

func formAttributes(form url.Values, scope string) model.Attributes {
	attrs := model.Attributes{}
	prefix := scope + "["
	for key, values := range form {
		if len(values) == 0 || !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "]") {
			continue
		}
		name := key[len(prefix) : len(key)-1]
		if name == "" || strings.ContainsAny(name, "[]") {
			continue
		}
		attrs[name] = values[len(values)-1]
	}
	return attrs
}

func isXMLBody(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/xml" || mediaType == "text/xml"
}

func underscore(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// decodeXMLAttributes reads the direct children of the scope element as
// attributes. Elements marked nil="true" become empty strings; nested
// elements are ignored.
func decodeXMLAttributes(body io.Reader, scope string) (model.Attributes, error) {
	dec := xml.NewDecoder(body)
	attrs := model.Attributes{}

	root, err := nextStart(dec)
	if errors.Is(err, io.EOF) {
		return attrs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decoding xml: %w", err)
	}
	if underscore(root.Name.Local) != scope {
		return nil, fmt.Errorf("decoding xml: root element <%s>, want <%s>", root.Name.Local, strings.ReplaceAll(scope, "_", "-"))
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decoding xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var field struct {
				Nil   string `xml:"nil,attr"`
				Value string `xml:",chardata"`
			}
			if err := dec.DecodeElement(&field, &t); err != nil {
				return nil, fmt.Errorf("decoding xml <%s>: %w", t.Name.Local, err)
			}
			if field.Nil == "true" {
				field.Value = ""
			}
			attrs[underscore(t.Name.Local)] = field.Value
		case xml.EndElement:
			return attrs, nil
		}
	}
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

// localPath reduces a return_to value or Referer to a path on this site.
// Anything pointing at another host yields "".
func localPath(raw, host string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Host != "" && u.Host != host {
		return ""
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return ""
	}
	// Browsers read "/\host" as "//host".
	if strings.ContainsRune(raw, '\\') || strings.ContainsRune(u.Path, '\\') {
		return ""
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
