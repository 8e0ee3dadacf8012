package form

import "github.com/smileynet/campusconnect/internal/record"

// Missing returns the editable fields of rec that are still empty, in
// display order. Interactive renderers require every field before they
// submit; the controller itself does not.
func Missing(rec record.Record) []record.Field {
	var out []record.Field
	for _, f := range record.Editable() {
		if rec.Get(f) == "" {
			out = append(out, f)
		}
	}
	return out
}
