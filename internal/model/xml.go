package model

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"
)

// Entities serialize as dasherized documents with type attributes:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<snippet>
//	  <id>cv37rs3pp9olc6atsptg</id>
//	  <public type="boolean">true</public>
//	  <created-at type="datetime">2026-10-15T09:00:00Z</created-at>
//	</snippet>
//
// Handlers write the bytes from ToXML verbatim.

// xmlValue is a single element with the optional type/nil attributes.
type xmlValue struct {
	Type  string `xml:"type,attr,omitempty"`
	Nil   string `xml:"nil,attr,omitempty"`
	Value string `xml:",chardata"`
}

func xmlString(s string) xmlValue {
	return xmlValue{Value: s}
}

// xmlID renders an identifier, marking unsaved records with nil="true".
func xmlID(id string) xmlValue {
	if id == "" {
		return xmlValue{Nil: "true"}
	}
	return xmlValue{Value: id}
}

func xmlBool(b bool) xmlValue {
	return xmlValue{Type: "boolean", Value: strconv.FormatBool(b)}
}

func xmlInt(n int) xmlValue {
	return xmlValue{Type: "integer", Value: strconv.Itoa(n)}
}

func xmlTime(t time.Time) xmlValue {
	if t.IsZero() {
		return xmlValue{Type: "datetime", Nil: "true"}
	}
	return xmlValue{Type: "datetime", Value: t.UTC().Format(time.RFC3339)}
}

func xmlDate(t time.Time) xmlValue {
	if t.IsZero() {
		return xmlValue{Type: "date", Nil: "true"}
	}
	return xmlValue{Type: "date", Value: t.Format(time.DateOnly)}
}

// marshalXML encodes v as an indented document with the XML declaration.
func marshalXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("model: encoding xml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ErrorsXML serializes validation messages as
// <errors><error>Slug can't be blank</error></errors>.
func ErrorsXML(messages []string) ([]byte, error) {
	doc := struct {
		XMLName xml.Name `xml:"errors"`
		Errors  []string `xml:"error"`
	}{Errors: messages}
	return marshalXML(doc)
}

// assignState records attribute values that could not be converted to the
// field's type during mass assignment. Validation reports them on save.
type assignState struct {
	castErrors map[string]string
}

func (s *assignState) castError(attr, msg string) {
	if s.castErrors == nil {
		s.castErrors = make(map[string]string)
	}
	s.castErrors[attr] = msg
}

func (s *assignState) resetCastErrors() {
	s.castErrors = nil
}

// CastErrors returns attribute -> message for values rejected during the last
// AssignAttributes call.
func (s *assignState) CastErrors() map[string]string {
	return s.castErrors
}

// parseBool accepts the values HTML checkboxes and XML clients send.
func parseBool(v string) (bool, bool) {
	switch v {
	case "1", "true", "TRUE", "True", "on", "yes":
		return true, true
	case "0", "false", "FALSE", "False", "off", "no", "":
		return false, true
	}
	return false, false
}
