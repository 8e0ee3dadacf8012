// Package rules maps record fields to the validators that gate edits.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/smileynet/campusconnect/internal/record"
)

var (
	phonePattern = regexp.MustCompile(`^\d{0,15}$`)
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	digitPattern = regexp.MustCompile(`\d`)
)

// Rule accepts or rejects a candidate value for one field.
type Rule struct {
	Description string
	Allow       func(value string) bool
	Reason      func(f record.Field) string
}

// Registry maps fields to rules. Fields without a rule accept any value.
// It is not safe for concurrent use; registration should happen at startup.
type Registry struct {
	rules map[record.Field]Rule
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[record.Field]Rule)}
}

// Default returns a Registry carrying the registration form's rules.
func Default() *Registry {
	r := NewRegistry()
	r.Register(record.PhoneNumber, Phone())
	r.Register(record.Email, Email())
	for _, f := range []record.Field{record.FullName, record.City, record.State, record.Country} {
		r.Register(f, NoDigits())
	}
	return r
}

// Register binds rule to f, replacing any existing rule.
// Panics if f is empty or rule.Allow is nil (programmer error).
func (r *Registry) Register(f record.Field, rule Rule) {
	if f == "" {
		panic("rules: Register called with empty field")
	}
	if rule.Allow == nil {
		panic("rules: Register called with nil predicate")
	}
	r.rules[f] = rule
}

// Rule returns the rule bound to f, if any.
func (r *Registry) Rule(f record.Field) (Rule, bool) {
	rule, ok := r.rules[f]
	return rule, ok
}

// Check validates value for f. Unknown and fixed fields are rejected before
// any rule lookup.
func (r *Registry) Check(f record.Field, value string) error {
	if !f.Known() {
		return &ValidationError{Field: f, Reason: "unknown field"}
	}
	if !f.Editable() {
		return &ValidationError{Field: f, Reason: "field is not editable"}
	}
	rule, ok := r.rules[f]
	if !ok || rule.Allow(value) {
		return nil
	}
	reason := "invalid value"
	if rule.Reason != nil {
		reason = rule.Reason(f)
	}
	return &ValidationError{Field: f, Reason: reason}
}

// Phone accepts up to 15 ASCII digits, including the empty string.
func Phone() Rule {
	return Rule{
		Description: "digits only, at most 15",
		Allow:       phonePattern.MatchString,
		Reason: func(record.Field) string {
			return "Phone number should be numeric and not exceed 15 digits."
		},
	}
}

// Email accepts the empty string or an address with a dotted domain.
func Email() Rule {
	return Rule{
		Description: "empty or name@domain.tld",
		Allow: func(v string) bool {
			return v == "" || emailPattern.MatchString(v)
		},
		Reason: func(record.Field) string {
			return "Please enter a valid email address with a proper domain."
		},
	}
}

// NoDigits rejects any value containing a digit.
func NoDigits() Rule {
	return Rule{
		Description: "no digits",
		Allow: func(v string) bool {
			return !digitPattern.MatchString(v)
		},
		Reason: func(f record.Field) string {
			return strings.Replace(string(f), "_", " ", 1) + " should not contain numbers."
		},
	}
}

// ValidationError reports a rejected edit. The record is left unchanged.
type ValidationError struct {
	Field  record.Field
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rules: %s: %s", e.Field, e.Reason)
}
