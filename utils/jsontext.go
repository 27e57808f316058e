package utils

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var ErrNoJSON = errors.New("no JSON value found in text")

var fenceRe = regexp.MustCompile("```(?:json|JSON)?")

// StripCodeFences removes Markdown code fences that models wrap JSON in.
func StripCodeFences(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
}

// ExtractJSON returns the outermost JSON object or array in text, after
// dropping code fences and any chatter around it. Every opening bracket is
// tried in order and the first span that is valid JSON wins, so stray
// brackets in the chatter are skipped. With no valid span the first
// candidate is returned for the caller's decoder to reject.
func ExtractJSON(text string) (string, error) {
	cleaned := StripCodeFences(text)
	first := ""
	for offset := 0; offset < len(cleaned); {
		rel := strings.IndexAny(cleaned[offset:], "{[")
		if rel < 0 {
			break
		}
		start := offset + rel
		offset = start + 1

		closer := byte('}')
		if cleaned[start] == '[' {
			closer = ']'
		}
		end := strings.LastIndexByte(cleaned, closer)
		if end <= start {
			continue
		}
		candidate := cleaned[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
		if first == "" {
			first = candidate
		}
	}
	if first == "" {
		return "", ErrNoJSON
	}
	return first, nil
}
