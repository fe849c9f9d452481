package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateInput_EmptyAndWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tab", "\t"},
		{"newlines", "\r\n\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateInput(tc.input, 100)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInputEmpty) {
				t.Errorf("error = %v, want ErrInputEmpty", err)
			}
		})
	}
}

func TestValidateInput_TooLong(t *testing.T) {
	long := strings.Repeat("°", 11)
	_, err := ValidateInput(long, 10)
	if !errors.Is(err, ErrInputTooLong) {
		t.Errorf("error = %v, want ErrInputTooLong", err)
	}
}

func TestValidateInput_RuneLimitNotBytes(t *testing.T) {
	// 10 runes, 20 bytes
	in := strings.Repeat("°", 10)
	if _, err := ValidateInput(in, 10); err != nil {
		t.Errorf("ValidateInput(%q, 10) error = %v, want nil", in, err)
	}
}

func TestValidateInput_NoLimit(t *testing.T) {
	in := strings.Repeat("25°/14° ", 10000)
	got, err := ValidateInput(in, 0)
	if err != nil {
		t.Fatalf("ValidateInput() error = %v", err)
	}
	if got != in {
		t.Error("ValidateInput() should return the input unchanged")
	}
}

func TestValidateInput_PreservesWhitespace(t *testing.T) {
	in := "  Mon 25°/14°\n"
	got, err := ValidateInput(in, 0)
	if err != nil {
		t.Fatalf("ValidateInput() error = %v", err)
	}
	if got != in {
		t.Errorf("ValidateInput() = %q, want %q", got, in)
	}
}

func TestMissingInputMessage_NamesFormats(t *testing.T) {
	for _, want := range []string{"raw", "JSON", "form"} {
		if !strings.Contains(MissingInputMessage, want) {
			t.Errorf("MissingInputMessage missing %q", want)
		}
	}
}
