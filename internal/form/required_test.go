package form

import (
	"reflect"
	"testing"

	"github.com/smileynet/campusconnect/internal/record"
)

func TestMissing(t *testing.T) {
	full := record.Default(record.DefaultInstitution())
	for _, f := range record.Editable() {
		full[f] = "x"
	}

	tests := []struct {
		name  string
		empty []record.Field
		want  []record.Field
	}{
		{"complete record", nil, nil},
		{"one empty", []record.Field{record.Email}, []record.Field{record.Email}},
		{
			name:  "reported in display order",
			empty: []record.Field{record.PhoneNumber, record.FullName, record.City},
			want:  []record.Field{record.FullName, record.City, record.PhoneNumber},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := full.Clone()
			for _, f := range tt.empty {
				rec[f] = ""
			}
			if got := Missing(rec); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Missing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMissing_IgnoresInstitutionFields(t *testing.T) {
	// Given an institution with blank values and every editable field filled
	rec := record.Default(record.Institution{})
	for _, f := range record.Editable() {
		rec[f] = "x"
	}

	// Then nothing is reported missing
	if got := Missing(rec); len(got) != 0 {
		t.Errorf("Missing() = %v, want none", got)
	}
}
