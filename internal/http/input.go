package http

import (
	"encoding/json"
	"net/url"
	"strings"
)

// inputFormat labels how the input text was resolved from the body.
type inputFormat string

const (
	formatRaw          inputFormat = "raw"
	formatJSON         inputFormat = "json"
	formatJSONFallback inputFormat = "json_fallback"
	formatForm         inputFormat = "form"
)

const inputField = "input"

// extractInput resolves the forecast text from a POST body.
//
//   - application/json: the string field "input"; a body that does not parse,
//     is not an object, or lacks a string "input" is used whole as raw text.
//   - application/x-www-form-urlencoded: the first "input" field, URL-decoded;
//     "" when the field is absent.
//   - anything else: the trimmed body.
//
// When decodeStructured is false every body is treated as raw text.
func extractInput(body []byte, contentType string, decodeStructured bool) (string, inputFormat) {
	if decodeStructured {
		ct := strings.ToLower(contentType)
		switch {
		case strings.Contains(ct, "application/json"):
			if text, ok := jsonInput(body); ok {
				return text, formatJSON
			}
			return string(body), formatJSONFallback
		case strings.Contains(ct, "application/x-www-form-urlencoded"):
			return formInput(string(body)), formatForm
		}
	}
	return strings.TrimSpace(string(body)), formatRaw
}

func jsonInput(body []byte) (string, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", false
	}
	text, ok := obj[inputField].(string)
	return text, ok
}

// formInput scans a urlencoded body by hand rather than via url.ParseQuery so
// that one malformed pair elsewhere in the body does not discard the field.
func formInput(body string) string {
	for _, segment := range strings.Split(body, "&") {
		key, value, _ := strings.Cut(segment, "=")
		if key != inputField {
			continue
		}
		decoded, err := url.QueryUnescape(value)
		if err != nil {
			return value
		}
		return decoded
	}
	return ""
}

// wantsHTML reports whether the Accept header asks for text/html.
func wantsHTML(accept string) bool {
	return strings.Contains(strings.ToLower(accept), "text/html")
}
