package imdbscrape

import (
	"html"
	"strings"
)

// FormatMovie renders m as one <p><strong>Label</strong>: value</p> line per
// field, in the order of AllFields. Empty fields are rendered with an empty
// value so the shape of the fragment never changes. Values are escaped.
func FormatMovie(m *Movie) string {
	if m == nil {
		m = &Movie{}
	}

	var b strings.Builder
	for _, fv := range m.Fields() {
		b.WriteString("<p><strong>")
		b.WriteString(fv.Field.Label())
		b.WriteString("</strong>: ")
		b.WriteString(html.EscapeString(fv.Value))
		b.WriteString("</p>")
	}
	return b.String()
}
