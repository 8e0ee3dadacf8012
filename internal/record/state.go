package record

// FormState owns the current Record between edits. It performs no validation.
// It is not safe for concurrent use; a form is driven from a single event loop.
type FormState struct {
	defaults Record
	current  Record
}

// NewFormState creates a FormState holding the default record for inst.
func NewFormState(inst Institution) *FormState {
	d := Default(inst)
	return &FormState{defaults: d, current: d.Clone()}
}

// Get returns a snapshot of the current record.
func (s *FormState) Get() Record {
	return s.current.Clone()
}

// Set stores value under f unconditionally.
func (s *FormState) Set(f Field, value string) {
	s.current[f] = value
}

// Reset replaces the current record with the defaults, institutional
// values included.
func (s *FormState) Reset() {
	s.current = s.defaults.Clone()
}
