package model

import (
	"encoding/xml"
	"time"
)

// Event is a conference instance ("Open Source Bridge 2026"). Session types
// and the public pages are scoped to one event, selected by slug in the URL.
type Event struct {
	ID        string    `json:"id"        db:"id"`
	Slug      string    `json:"slug"      db:"slug"  validate:"required,max=100,slug"`
	Title     string    `json:"title"     db:"title" validate:"required,max=200"`
	StartDate time.Time `json:"startDate" db:"start_date"`
	EndDate   time.Time `json:"endDate"   db:"end_date"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type eventXML struct {
	XMLName   xml.Name `xml:"event"`
	ID        xmlValue `xml:"id"`
	Slug      xmlValue `xml:"slug"`
	Title     xmlValue `xml:"title"`
	StartDate xmlValue `xml:"start-date"`
	EndDate   xmlValue `xml:"end-date"`
}

func (e *Event) ToXML() ([]byte, error) {
	return marshalXML(eventXML{
		ID:        xmlID(e.ID),
		Slug:      xmlString(e.Slug),
		Title:     xmlString(e.Title),
		StartDate: xmlDate(e.StartDate),
		EndDate:   xmlDate(e.EndDate),
	})
}
