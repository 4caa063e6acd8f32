package imdbscrape

import "strings"

// Labels maps a field to the captions that introduce its value on a title
// page, one entry per supported language. Matching is case-insensitive
// and by substring, so "Género" also matches "Géneros".
type Labels map[Field][]string

// DefaultLabels returns the English and Spanish captions used by IMDb.
func DefaultLabels() Labels {
	return Labels{
		FieldGenre:    {"Genre", "Género"},
		FieldRating:   {"IMDb RATING", "PUNTUACIÓN EN IMDb"},
		FieldDuration: {"Runtime", "Duration", "Duración"},
	}
}

// Synonyms returns the captions registered for f.
func (l Labels) Synonyms(f Field) []string {
	return l[f]
}

// Merge returns a copy of l with the captions of other appended.
func (l Labels) Merge(other Labels) Labels {
	merged := make(Labels, len(l))
	for f, synonyms := range l {
		merged[f] = append([]string(nil), synonyms...)
	}
	for f, synonyms := range other {
		merged[f] = append(merged[f], synonyms...)
	}
	return merged
}

// ParseLabels parses captions given as "FIELD=CAPTION", where FIELD is a
// field label matched case-insensitively. Only Genre, Rating and Duration
// are introduced by captions.
func ParseLabels(specs []string) (Labels, error) {
	labels := make(Labels)
	for _, spec := range specs {
		name, caption, ok := strings.Cut(spec, "=")
		caption = strings.TrimSpace(caption)
		if !ok || caption == "" {
			return nil, Errorf(EINVALID, "label %q must have the form FIELD=CAPTION", spec)
		}
		f, ok := captionField(strings.TrimSpace(name))
		if !ok {
			return nil, Errorf(EINVALID, "label %q: no captioned field named %q", spec, name)
		}
		labels[f] = append(labels[f], caption)
	}
	return labels, nil
}

func captionField(name string) (Field, bool) {
	for _, f := range []Field{FieldGenre, FieldRating, FieldDuration} {
		if strings.EqualFold(name, f.Label()) {
			return f, true
		}
	}
	return 0, false
}
