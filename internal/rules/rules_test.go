package rules

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/smileynet/campusconnect/internal/record"
)

func TestCheck_Phone(t *testing.T) {
	reg := Default()
	tests := []struct {
		value string
		ok    bool
	}{
		{"", true},
		{"9876543210", true},
		{"123456789012345", true},
		{"1234567890123456", false},
		{"12a45", false},
		{"+919876543210", false},
		{"98765 43210", false},
		{"٣٤٥", false}, // non-ASCII digits
	}
	for _, tt := range tests {
		err := reg.Check(record.PhoneNumber, tt.value)
		if (err == nil) != tt.ok {
			t.Errorf("Check(phone_number, %q) error = %v, want ok=%v", tt.value, err, tt.ok)
		}
	}
}

// TestCheck_PhoneMatchesPattern exercises lengths 0..20 with digit and
// non-digit fillers against the reference pattern.
func TestCheck_PhoneMatchesPattern(t *testing.T) {
	reg := Default()
	ref := regexp.MustCompile(`^\d{0,15}$`)
	for n := 0; n <= 20; n++ {
		for _, filler := range []string{"7", "x", "7x"} {
			v := strings.Repeat(filler, n)
			want := ref.MatchString(v)
			got := reg.Check(record.PhoneNumber, v) == nil
			if got != want {
				t.Errorf("Check(phone_number, %q) ok = %v, want %v", v, got, want)
			}
		}
	}
}

func TestCheck_Email(t *testing.T) {
	reg := Default()
	tests := []struct {
		value string
		ok    bool
	}{
		{"", true},
		{"a@b.com", true},
		{"first.last+tag@mail.example.co.in", true},
		{"USER_1%x@Domain-Name.ORG", true},
		{"a@b", false},
		{"a@b.c", false},
		{"@b.com", false},
		{"a b@c.com", false},
		{"a@b.c0m", false},
		{"plainaddress", false},
	}
	for _, tt := range tests {
		err := reg.Check(record.Email, tt.value)
		if (err == nil) != tt.ok {
			t.Errorf("Check(email, %q) error = %v, want ok=%v", tt.value, err, tt.ok)
		}
	}
}

func TestCheck_NoDigitFields(t *testing.T) {
	reg := Default()
	fields := []record.Field{record.FullName, record.City, record.State, record.Country}
	for _, f := range fields {
		t.Run(string(f), func(t *testing.T) {
			if err := reg.Check(f, "Alice Kumar-O'Neil"); err != nil {
				t.Errorf("Check(%q, letters) error = %v", f, err)
			}
			for _, v := range []string{"R2D2", "9", "Sector 62"} {
				if err := reg.Check(f, v); err == nil {
					t.Errorf("Check(%q, %q) accepted a digit", f, v)
				}
			}
		})
	}
}

func TestCheck_UnconstrainedFields(t *testing.T) {
	reg := Default()
	for _, f := range []record.Field{record.Gender, record.DateOfBirth, record.Street, record.ZipCode} {
		if err := reg.Check(f, "Plot 7 / #12 @ anything"); err != nil {
			t.Errorf("Check(%q) error = %v, want nil", f, err)
		}
	}
}

func TestCheck_Reasons(t *testing.T) {
	reg := Default()
	tests := []struct {
		field record.Field
		value string
		want  string
	}{
		{record.PhoneNumber, "12a45", "Phone number should be numeric and not exceed 15 digits."},
		{record.Email, "nope", "Please enter a valid email address with a proper domain."},
		{record.FullName, "Al1ce", "full name should not contain numbers."},
		{record.Country, "1ndia", "country should not contain numbers."},
		{record.InstitutionName, "X", "field is not editable"},
		{record.Field("nickname"), "x", "unknown field"},
	}
	for _, tt := range tests {
		err := reg.Check(tt.field, tt.value)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("Check(%q, %q) error = %v, want *ValidationError", tt.field, tt.value, err)
		}
		if ve.Field != tt.field {
			t.Errorf("Field = %q, want %q", ve.Field, tt.field)
		}
		if ve.Reason != tt.want {
			t.Errorf("Reason = %q, want %q", ve.Reason, tt.want)
		}
	}
}

func TestRegistry_RegisterOverrides(t *testing.T) {
	// Given a registry with a custom zip rule
	reg := Default()
	reg.Register(record.ZipCode, Rule{
		Description: "six digits",
		Allow:       regexp.MustCompile(`^\d{6}$`).MatchString,
	})

	// Then the new rule applies with a generic reason
	err := reg.Check(record.ZipCode, "2013")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Reason != "invalid value" {
		t.Fatalf("Check(zip_code) error = %v, want invalid value", err)
	}
	if err := reg.Check(record.ZipCode, "201310"); err != nil {
		t.Errorf("Check(zip_code, 201310) error = %v", err)
	}

	if _, ok := reg.Rule(record.Email); !ok {
		t.Error("Rule(email) missing after Register(zip_code)")
	}
	if _, ok := reg.Rule(record.Gender); ok {
		t.Error("Rule(gender) found, want none")
	}
}

func TestRegistry_RegisterPanics(t *testing.T) {
	tests := []struct {
		name  string
		field record.Field
		rule  Rule
	}{
		{"empty field", "", Phone()},
		{"nil predicate", record.ZipCode, Rule{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Register() did not panic")
				}
			}()
			NewRegistry().Register(tt.field, tt.rule)
		})
	}
}
