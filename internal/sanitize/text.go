// Package sanitize strips markup from user supplied text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxPasses bounds how many layers of entity encoding Text will peel.
const maxPasses = 8

// Text removes all HTML and trims surrounding whitespace. Entities escaped by the
// policy are decoded again so plain ampersands and quotes survive a round trip.
// Decoding can surface markup that was entity encoded, so the two steps repeat
// until the value stops changing.
func Text(s string) string {
	out := s
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(strict.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	// Still changing: keep the policy's escaped form rather than decoded markup.
	return strings.TrimSpace(strict.Sanitize(out))
}

// Ptr applies Text to an optional value. Blank results become nil.
func Ptr(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	if out == "" {
		return nil
	}
	return &out
}

// TextSlice sanitizes each entry and drops the ones left empty.
func TextSlice(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if clean := Text(v); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
