package variant

import "testing"

func TestForProfile(t *testing.T) {
	tests := []struct {
		name    string
		want    Options
		wantErr bool
	}{
		{"", Lenient(), false},
		{"lenient", Lenient(), false},
		{"  Minimal ", Minimal(), false},
		{"strict", Options{}, true},
	}
	for _, tt := range tests {
		got, err := ForProfile(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForProfile(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ForProfile(%q) = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestPresets(t *testing.T) {
	l := Lenient()
	if !l.StrictValidation || !l.AcceptAltDegreeGlyph || !l.IncludeCountInJSON || !l.NegotiateHTML || !l.DecodeStructuredBodies {
		t.Errorf("Lenient() = %+v, want every flag set", l)
	}
	if Minimal() != (Options{}) {
		t.Errorf("Minimal() = %+v, want zero options", Minimal())
	}
	if !l.ExtractOptions().AcceptAltDegreeGlyph {
		t.Error("Lenient().ExtractOptions() should accept the alternate glyph")
	}
	if l.Label() != ProfileLenient || Minimal().Label() != ProfileMinimal {
		t.Error("Label() mismatch")
	}
}
