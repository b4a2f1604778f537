package pix

import (
	"fmt"
	"strings"
)

// maxFieldLength is the largest value a two-digit length can declare.
const maxFieldLength = 99

// Field is a single tag-length-value entry.
type Field struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// formatField encodes a field as ID + zero-padded two-digit length + value.
// Length is counted in bytes, which is what scanners read.
func formatField(id, value string) (string, error) {
	if len(value) > maxFieldLength {
		return "", &FieldTooLongError{ID: id, Length: len(value)}
	}
	return fmt.Sprintf("%s%02d%s", id, len(value), value), nil
}

// fieldWriter accumulates encoded fields and keeps the first error.
// Templates nest a writer so top-level and sub-fields share formatField.
type fieldWriter struct {
	b   strings.Builder
	err error
}

func (w *fieldWriter) field(id, value string) {
	if w.err != nil {
		return
	}
	encoded, err := formatField(id, value)
	if err != nil {
		w.err = err
		return
	}
	w.b.WriteString(encoded)
}

// template encodes the sub-fields written by fill and wraps them as the value of id.
func (w *fieldWriter) template(id string, fill func(sub *fieldWriter)) {
	if w.err != nil {
		return
	}
	var sub fieldWriter
	fill(&sub)
	if sub.err != nil {
		w.err = sub.err
		return
	}
	w.field(id, sub.b.String())
}

func (w *fieldWriter) String() string {
	return w.b.String()
}

// Parse splits s into its ordered top-level fields. Nested templates are
// returned as raw values and can be passed to Parse again.
func Parse(s string) ([]Field, error) {
	var fields []Field
	for i := 0; i < len(s); {
		if len(s)-i < 4 {
			return nil, fmt.Errorf("%w: truncated field header at offset %d", ErrMalformed, i)
		}
		id := s[i : i+2]
		if _, ok := twoDigits(id); !ok {
			return nil, fmt.Errorf("%w: invalid field id %q at offset %d", ErrMalformed, id, i)
		}
		n, ok := twoDigits(s[i+2 : i+4])
		if !ok {
			return nil, fmt.Errorf("%w: invalid length for field %s at offset %d", ErrMalformed, id, i)
		}
		start, end := i+4, i+4+n
		if end > len(s) {
			return nil, fmt.Errorf("%w: field %s overruns payload (%d > %d)", ErrMalformed, id, end, len(s))
		}
		fields = append(fields, Field{ID: id, Value: s[start:end]})
		i = end
	}
	return fields, nil
}

func twoDigits(s string) (int, bool) {
	if len(s) != 2 {
		return 0, false
	}
	hi, lo := s[0], s[1]
	if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
		return 0, false
	}
	return int(hi-'0')*10 + int(lo-'0'), true
}
