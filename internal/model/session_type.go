package model

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"
)

// SessionType is a kind of talk an event accepts (e.g. "Short form", "Workshop").
// Session types belong to one event; EventID is set from the event the request
// is scoped to and is never mass-assigned.
//
// None of the fields are required: an admin posting an empty form gets an
// untitled session type rather than a validation error.
type SessionType struct {
	ID          string    `json:"id"          db:"id"`
	EventID     string    `json:"eventId"     db:"event_id"`
	Title       string    `json:"title"       db:"title"       validate:"max=100"`
	Description string    `json:"description" db:"description" validate:"max=1000"`
	Duration    int       `json:"duration"    db:"duration"    validate:"min=0,max=1440"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`

	assignState
}

// SessionTypeAttributes lists the fields each role may mass-assign on a SessionType.
var SessionTypeAttributes = AllowList{
	RoleAdmin: {"title", "description", "duration"},
}

func (st *SessionType) NewRecord() bool {
	return st.ID == ""
}

// AssignAttributes copies the attributes role is allowed to set onto st.
func (st *SessionType) AssignAttributes(attrs Attributes, role Role) {
	st.resetCastErrors()
	for name, value := range SessionTypeAttributes.Filter(role, attrs) {
		switch name {
		case "title":
			st.Title = value
		case "description":
			st.Description = value
		case "duration":
			value = strings.TrimSpace(value)
			if value == "" {
				st.Duration = 0
				continue
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				st.castError(name, "is not a number")
				continue
			}
			st.Duration = n
		}
	}
}

type sessionTypeXML struct {
	XMLName     xml.Name `xml:"session-type"`
	ID          xmlValue `xml:"id"`
	EventID     xmlValue `xml:"event-id"`
	Title       xmlValue `xml:"title"`
	Description xmlValue `xml:"description"`
	Duration    xmlValue `xml:"duration"`
	CreatedAt   xmlValue `xml:"created-at"`
	UpdatedAt   xmlValue `xml:"updated-at"`
}

func (st *SessionType) xmlDoc() sessionTypeXML {
	return sessionTypeXML{
		ID:          xmlID(st.ID),
		EventID:     xmlID(st.EventID),
		Title:       xmlString(st.Title),
		Description: xmlString(st.Description),
		Duration:    xmlInt(st.Duration),
		CreatedAt:   xmlTime(st.CreatedAt),
		UpdatedAt:   xmlTime(st.UpdatedAt),
	}
}

func (st *SessionType) ToXML() ([]byte, error) {
	return marshalXML(st.xmlDoc())
}

// SessionTypes serializes as <session-types type="array">.
type SessionTypes []SessionType

func (sts SessionTypes) ToXML() ([]byte, error) {
	doc := struct {
		XMLName xml.Name         `xml:"session-types"`
		Type    string           `xml:"type,attr"`
		Items   []sessionTypeXML `xml:"session-type"`
	}{Type: "array", Items: make([]sessionTypeXML, 0, len(sts))}
	for i := range sts {
		doc.Items = append(doc.Items, sts[i].xmlDoc())
	}
	return marshalXML(doc)
}
