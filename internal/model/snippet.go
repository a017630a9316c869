package model

import (
	"encoding/xml"
	"time"
)

// Snippet is a named block of markdown shown on public pages, e.g. the
// call-for-papers instructions. Admins manage them under /manage/snippets.
//
// The struct tags serve three consumers:
//   - json: attribute names (also used in validation messages)
//   - validate: rules checked by internal/validation before every save
//   - db: column names in the snippets table
type Snippet struct {
	ID          string    `json:"id"          db:"id"`
	Slug        string    `json:"slug"        db:"slug"        validate:"required,max=100,slug"`
	Description string    `json:"description" db:"description" validate:"max=500"`
	Content     string    `json:"content"     db:"content"     validate:"max=100000"`
	Public      bool      `json:"public"      db:"public"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`

	assignState
}

// SnippetAttributes lists the fields each role may mass-assign on a Snippet.
var SnippetAttributes = AllowList{
	RoleAdmin: {"slug", "description", "content", "public"},
}

// NewRecord reports whether the snippet has not been persisted yet.
func (s *Snippet) NewRecord() bool {
	return s.ID == ""
}

// AssignAttributes copies the attributes role is allowed to set onto s.
// Anything else in attrs is ignored.
func (s *Snippet) AssignAttributes(attrs Attributes, role Role) {
	s.resetCastErrors()
	for name, value := range SnippetAttributes.Filter(role, attrs) {
		switch name {
		case "slug":
			s.Slug = value
		case "description":
			s.Description = value
		case "content":
			s.Content = value
		case "public":
			b, ok := parseBool(value)
			if !ok {
				s.castError(name, "is not a boolean")
				continue
			}
			s.Public = b
		}
	}
}

type snippetXML struct {
	XMLName     xml.Name `xml:"snippet"`
	ID          xmlValue `xml:"id"`
	Slug        xmlValue `xml:"slug"`
	Description xmlValue `xml:"description"`
	Content     xmlValue `xml:"content"`
	Public      xmlValue `xml:"public"`
	CreatedAt   xmlValue `xml:"created-at"`
	UpdatedAt   xmlValue `xml:"updated-at"`
}

func (s *Snippet) xmlDoc() snippetXML {
	return snippetXML{
		ID:          xmlID(s.ID),
		Slug:        xmlString(s.Slug),
		Description: xmlString(s.Description),
		Content:     xmlString(s.Content),
		Public:      xmlBool(s.Public),
		CreatedAt:   xmlTime(s.CreatedAt),
		UpdatedAt:   xmlTime(s.UpdatedAt),
	}
}

// ToXML serializes the snippet as a standalone XML document.
func (s *Snippet) ToXML() ([]byte, error) {
	return marshalXML(s.xmlDoc())
}

// Snippets is an ordered collection that serializes as <snippets type="array">.
type Snippets []Snippet

func (ss Snippets) ToXML() ([]byte, error) {
	doc := struct {
		XMLName xml.Name     `xml:"snippets"`
		Type    string       `xml:"type,attr"`
		Items   []snippetXML `xml:"snippet"`
	}{Type: "array", Items: make([]snippetXML, 0, len(ss))}
	for i := range ss {
		doc.Items = append(doc.Items, ss[i].xmlDoc())
	}
	return marshalXML(doc)
}
