package imdbscrape

// Field identifies one of the values extracted from a title page.
type Field int

// Fields in rendering order.
const (
	FieldTitle Field = iota
	FieldDescription
	FieldGenre
	FieldRating
	FieldDuration
)

var fieldLabels = [...]string{
	FieldTitle:       "Title",
	FieldDescription: "Description",
	FieldGenre:       "Genre",
	FieldRating:      "Rating",
	FieldDuration:    "Duration",
}

// AllFields returns every field in the fixed rendering order.
func AllFields() []Field {
	return []Field{FieldTitle, FieldDescription, FieldGenre, FieldRating, FieldDuration}
}

// Label returns the display label used when rendering the field.
func (f Field) Label() string {
	if f < 0 || int(f) >= len(fieldLabels) {
		return ""
	}
	return fieldLabels[f]
}

// String returns the display label.
func (f Field) String() string {
	return f.Label()
}

// FieldByLabel returns the field rendered with the given label.
func FieldByLabel(label string) (Field, bool) {
	for _, f := range AllFields() {
		if f.Label() == label {
			return f, true
		}
	}
	return 0, false
}

// Movie holds the fields extracted from a title page.
// A field that could not be found is the empty string.
type Movie struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	Rating      string `json:"rating"`
	Duration    string `json:"duration"`
}

// FieldValue pairs a field with its extracted value.
type FieldValue struct {
	Field Field
	Value string
}

// Get returns the value of field f. A nil Movie has no values.
func (m *Movie) Get(f Field) string {
	if m == nil {
		return ""
	}
	switch f {
	case FieldTitle:
		return m.Title
	case FieldDescription:
		return m.Description
	case FieldGenre:
		return m.Genre
	case FieldRating:
		return m.Rating
	case FieldDuration:
		return m.Duration
	}
	return ""
}

// Set assigns the value of field f. Unknown fields are ignored.
func (m *Movie) Set(f Field, value string) {
	switch f {
	case FieldTitle:
		m.Title = value
	case FieldDescription:
		m.Description = value
	case FieldGenre:
		m.Genre = value
	case FieldRating:
		m.Rating = value
	case FieldDuration:
		m.Duration = value
	}
}

// Fields returns all five values in rendering order.
func (m *Movie) Fields() []FieldValue {
	fields := AllFields()
	values := make([]FieldValue, 0, len(fields))
	for _, f := range fields {
		values = append(values, FieldValue{Field: f, Value: m.Get(f)})
	}
	return values
}

// Found returns the number of non-empty fields.
func (m *Movie) Found() int {
	n := 0
	for _, fv := range m.Fields() {
		if fv.Value != "" {
			n++
		}
	}
	return n
}
