// Package record defines the registration record, its fields, and the form
// state that owns the current record between edits.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Field names one key of a registration record.
type Field string

const (
	FullName    Field = "full_name"
	Gender      Field = "gender"
	DateOfBirth Field = "date_of_birth"
	Street      Field = "street"
	City        Field = "city"
	State       Field = "state"
	Country     Field = "country"
	ZipCode     Field = "zip_code"
	Email       Field = "email"
	PhoneNumber Field = "phone_number"

	InstitutionName       Field = "institution_name"
	InstitutionCity       Field = "institution_city"
	InstitutionState      Field = "institution_state"
	InstitutionCountry    Field = "institution_country"
	InstitutionAddress    Field = "institution_address"
	InstitutionPostalCode Field = "institution_postal_code"
)

// Kind is a rendering hint for a field's input control.
type Kind string

const (
	KindText  Kind = "text"
	KindDate  Kind = "date"
	KindEmail Kind = "email"
)

// Spec describes a field for renderers.
type Spec struct {
	Field    Field
	Label    string
	Kind     Kind
	Editable bool
}

// specs lists every field in display order. Editable fields come first.
var specs = []Spec{
	{FullName, "Full Name", KindText, true},
	{Gender, "Gender", KindText, true},
	{DateOfBirth, "Date of Birth", KindDate, true},
	{Street, "Street", KindText, true},
	{City, "City", KindText, true},
	{State, "State", KindText, true},
	{Country, "Country", KindText, true},
	{ZipCode, "Zip Code", KindText, true},
	{Email, "Email", KindEmail, true},
	{PhoneNumber, "Phone Number", KindText, true},

	{InstitutionName, "Institution Name", KindText, false},
	{InstitutionCity, "Institution City", KindText, false},
	{InstitutionState, "Institution State", KindText, false},
	{InstitutionCountry, "Institution Country", KindText, false},
	{InstitutionAddress, "Institution Address", KindText, false},
	{InstitutionPostalCode, "Institution Postal Code", KindText, false},
}

var specIndex = func() map[Field]Spec {
	m := make(map[Field]Spec, len(specs))
	for _, s := range specs {
		m[s.Field] = s
	}
	return m
}()

// Specs returns all field specs in display order.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Lookup returns the spec for f and whether f is a known field.
func Lookup(f Field) (Spec, bool) {
	s, ok := specIndex[f]
	return s, ok
}

// Editable returns the user-editable fields in display order.
func Editable() []Field {
	var out []Field
	for _, s := range specs {
		if s.Editable {
			out = append(out, s.Field)
		}
	}
	return out
}

// Known reports whether f is one of the record's fields.
func (f Field) Known() bool {
	_, ok := specIndex[f]
	return ok
}

// Editable reports whether f may be changed by user input.
func (f Field) Editable() bool {
	return specIndex[f].Editable
}

// Label returns the human label for f, or the raw name if f is unknown.
func (f Field) Label() string {
	if s, ok := specIndex[f]; ok {
		return s.Label
	}
	return string(f)
}

// Institution holds the fixed institutional values stamped on every record.
type Institution struct {
	Name       string `yaml:"name" validate:"required"`
	City       string `yaml:"city" validate:"required"`
	State      string `yaml:"state" validate:"required"`
	Country    string `yaml:"country" validate:"required"`
	Address    string `yaml:"address" validate:"required"`
	PostalCode string `yaml:"postal_code" validate:"required"`
}

// DefaultInstitution returns the institution used when no configuration
// overrides it.
func DefaultInstitution() Institution {
	return Institution{
		Name:       "GNIOT",
		City:       "Greater Noida",
		State:      "Uttar Pradesh",
		Country:    "India",
		Address:    "Plot No. 7, Knowledge Park II, Greater Noida, Uttar Pradesh 201310",
		PostalCode: "201310",
	}
}

// Record is a flat mapping of every field to its string value.
// A well-formed Record always holds all fields.
type Record map[Field]string

// Default builds a Record with empty editable fields and the institution's
// values in the fixed fields.
func Default(inst Institution) Record {
	r := make(Record, len(specs))
	for _, s := range specs {
		r[s.Field] = ""
	}
	r[InstitutionName] = inst.Name
	r[InstitutionCity] = inst.City
	r[InstitutionState] = inst.State
	r[InstitutionCountry] = inst.Country
	r[InstitutionAddress] = inst.Address
	r[InstitutionPostalCode] = inst.PostalCode
	return r
}

// Get returns the value of f, or "" if unset.
func (r Record) Get(f Field) string {
	return r[f]
}

// Clone returns an independent copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Equal reports whether r and other hold the same fields and values.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	for k, v := range r {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the record as an object of string values keyed by field
// name. Every known field is written, so absent values encode as "".
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(specs))
	for _, s := range specs {
		m[string(s.Field)] = r[s.Field]
	}
	return json.Marshal(m)
}

// ErrUnknownField indicates a key that is not one of the record's fields.
var ErrUnknownField = errors.New("record: unknown field")

// FromMap converts raw key/value input into field values, rejecting unknown keys.
// The result is partial: it holds only the keys present in m.
func FromMap(m map[string]string) (Record, error) {
	out := make(Record, len(m))
	var unknown []string
	for k, v := range m {
		f := Field(k)
		if !f.Known() {
			unknown = append(unknown, k)
			continue
		}
		out[f] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
	}
	return out, nil
}
