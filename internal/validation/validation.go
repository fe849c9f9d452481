package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrInputEmpty is returned when the resolved input text is empty or whitespace-only.
var ErrInputEmpty = errors.New("input is required")

// ErrInputTooLong is returned when the input exceeds the configured rune limit.
var ErrInputTooLong = errors.New("input too long")

// MissingInputMessage is the client-facing message for ErrInputEmpty. It names
// every body format the endpoint understands.
const MissingInputMessage = "Please provide forecast text as the raw request body, " +
	`as JSON {"input": "..."}, or as a form field named "input".`

// ValidateInput rejects blank text and, when maxRunes > 0, text longer than
// maxRunes. The input is returned unchanged on success; extraction ignores
// surrounding whitespace anyway and the HTML view echoes the text verbatim.
func ValidateInput(input string, maxRunes int) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrInputEmpty
	}
	if maxRunes > 0 && utf8.RuneCountInString(input) > maxRunes {
		return "", ErrInputTooLong
	}
	return input, nil
}
