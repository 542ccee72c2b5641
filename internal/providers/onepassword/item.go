package onepassword

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Item is a 1Password item as printed by either CLI generation.
//
// v1 (`op get item`) nests values under Details and Overview; v2
// (`op item get --format json`) lists them in Fields.
type Item struct {
	ID        string    `json:"id,omitempty"`
	UUID      string    `json:"uuid,omitempty"`
	Title     string    `json:"title,omitempty"`
	Category  string    `json:"category,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Vault     *VaultRef `json:"vault,omitempty"`
	VaultUUID string    `json:"vaultUuid,omitempty"`
	Trashed   string    `json:"trashed,omitempty"`
	Overview  *Overview `json:"overview,omitempty"`
	Details   *Details  `json:"details,omitempty"`
	Fields    []Field   `json:"fields,omitempty"`
	URLs      []URL     `json:"urls,omitempty"`

	raw json.RawMessage
}

type VaultRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Overview struct {
	Title string   `json:"title,omitempty"`
	URL   string   `json:"url,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

type Details struct {
	Fields     []DetailField `json:"fields,omitempty"`
	NotesPlain string       `json:"notesPlain,omitempty"`
	Password   string       `json:"password,omitempty"`
	Sections   []Section    `json:"sections,omitempty"`
}

type DetailField struct {
	Designation string `json:"designation,omitempty"`
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	Value       Value  `json:"value,omitempty"`
}

type Section struct {
	Name   string         `json:"name,omitempty"`
	Title  string         `json:"title,omitempty"`
	Fields []SectionField `json:"fields,omitempty"`
}

type SectionField struct {
	K string `json:"k,omitempty"`
	N string `json:"n,omitempty"`
	T string `json:"t,omitempty"`
	V Value  `json:"v,omitempty"`
}

type Field struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	Label   string `json:"label,omitempty"`
	Value   Value  `json:"value,omitempty"`
}

type URL struct {
	Label   string `json:"label,omitempty"`
	Primary bool   `json:"primary,omitempty"`
	Href    string `json:"href"`
}

// Value is a field value. Dates and numbers in v1 sections are printed as
// JSON numbers; they are kept in their literal text form.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	*v = Value(data)
	return nil
}

// Identifier returns the item id (v2) or uuid (v1).
func (i *Item) Identifier() string {
	if i.ID != "" {
		return i.ID
	}
	return i.UUID
}

// Raw returns the JSON the item was decoded from, if any.
func (i *Item) Raw() json.RawMessage {
	return i.raw
}

// Field returns the value of the named field. An empty name selects the password.
func (i *Item) Field(name string) (string, bool) {
	if name == "" {
		name = "password"
	}

	for _, f := range i.Fields {
		if f.ID == name || f.Label == name {
			return string(f.Value), true
		}
	}
	if i.Details != nil {
		for _, f := range i.Details.Fields {
			if f.Designation == name || f.Name == name {
				return string(f.Value), true
			}
		}
		for _, s := range i.Details.Sections {
			for _, f := range s.Fields {
				if f.N == name || f.T == name {
					return string(f.V), true
				}
			}
		}
	}

	switch strings.ToLower(name) {
	case "password":
		if i.Details != nil && i.Details.Password != "" {
			return i.Details.Password, true
		}
		if v, ok := i.fieldBy(func(f Field) bool { return f.Purpose == "PASSWORD" }); ok {
			return v, true
		}
		if v, ok := i.fieldBy(func(f Field) bool { return f.Type == "CONCEALED" }); ok {
			return v, true
		}
		return i.detailBy(func(f DetailField) bool { return f.Type == "P" })
	case "username":
		if v, ok := i.fieldBy(func(f Field) bool { return f.Purpose == "USERNAME" }); ok {
			return v, true
		}
		return i.detailBy(func(f DetailField) bool { return strings.EqualFold(f.Designation, "username") })
	case "notes", "notesplain":
		if i.Details != nil && i.Details.NotesPlain != "" {
			return i.Details.NotesPlain, true
		}
		return i.fieldBy(func(f Field) bool { return f.Purpose == "NOTES" })
	case "title":
		if i.Title != "" {
			return i.Title, true
		}
		if i.Overview != nil && i.Overview.Title != "" {
			return i.Overview.Title, true
		}
	case "url", "website":
		if len(i.URLs) > 0 {
			return i.URLs[0].Href, true
		}
		if i.Overview != nil && i.Overview.URL != "" {
			return i.Overview.URL, true
		}
	}
	return "", false
}

func (i *Item) fieldBy(match func(Field) bool) (string, bool) {
	for _, f := range i.Fields {
		if match(f) {
			return string(f.Value), true
		}
	}
	return "", false
}

func (i *Item) detailBy(match func(DetailField) bool) (string, bool) {
	if i.Details == nil {
		return "", false
	}
	for _, f := range i.Details.Fields {
		if match(f) {
			return string(f.Value), true
		}
	}
	return "", false
}
