// Package sanitize strips markup from user supplied free text before it is
// stored or echoed back on the public status page.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxPasses bounds the sanitize/unescape loop. Each pass peels one level of
// entity encoding, so deeper nesting than this is left escaped.
const maxPasses = 8

type Sanitizer struct {
	policy *bluemonday.Policy
}

func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text removes every tag and trims surrounding whitespace. Entities produced
// by the policy are decoded again so that plain text like "A & B" survives,
// and the result is fed back through the policy until it no longer changes.
// Entity encoded markup therefore cannot come back as live tags.
func (s *Sanitizer) Text(raw string) string {
	current := raw
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(current))
		if next == current {
			return strings.TrimSpace(next)
		}
		current = next
	}
	return strings.TrimSpace(s.policy.Sanitize(current))
}

// Ptr sanitizes an optional field. Values that end up empty become nil.
func (s *Sanitizer) Ptr(raw *string) *string {
	if raw == nil {
		return nil
	}
	cleaned := s.Text(*raw)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
