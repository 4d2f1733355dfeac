package core

import "strings"

// Column names a Record field. The value is the CSV header label and the
// JSON key used on the wire.
type Column string

const (
	ColumnID    Column = "ID"
	ColumnName  Column = "Name"
	ColumnEmail Column = "Email"
	ColumnAge   Column = "Age"
	ColumnCity  Column = "City"
)

// Columns lists every column in header order.
var Columns = []Column{ColumnID, ColumnName, ColumnEmail, ColumnAge, ColumnCity}

// Numeric reports whether the column sorts as a number.
func (c Column) Numeric() bool {
	return c == ColumnID || c == ColumnAge
}

// ParseColumn resolves a column from its name, ignoring case and surrounding
// whitespace.
func ParseColumn(s string) (Column, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Columns {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Header returns the column labels as a CSV header row.
func Header() []string {
	h := make([]string, len(Columns))
	for i, c := range Columns {
		h[i] = string(c)
	}
	return h
}

// Record is one decoded row. All fields are always present; a value missing
// from the source decodes to "".
type Record struct {
	ID    string `json:"ID"`
	Name  string `json:"Name"`
	Email string `json:"Email"`
	Age   string `json:"Age"`
	City  string `json:"City"`
}

// Value returns the field for col, or "" for an unknown column.
func (r Record) Value(col Column) string {
	switch col {
	case ColumnID:
		return r.ID
	case ColumnName:
		return r.Name
	case ColumnEmail:
		return r.Email
	case ColumnAge:
		return r.Age
	case ColumnCity:
		return r.City
	default:
		return ""
	}
}

// Values returns the fields in header order.
func (r Record) Values() []string {
	return []string{r.ID, r.Name, r.Email, r.Age, r.City}
}

// set assigns the field for col. Unknown columns are ignored.
func (r *Record) set(col Column, v string) {
	switch col {
	case ColumnID:
		r.ID = v
	case ColumnName:
		r.Name = v
	case ColumnEmail:
		r.Email = v
	case ColumnAge:
		r.Age = v
	case ColumnCity:
		r.City = v
	}
}
