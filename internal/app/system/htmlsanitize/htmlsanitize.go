// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips dangerous markup from user-supplied thread
// text before it is persisted. Basic formatting survives; scripts, event
// handlers and javascript: URLs do not.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	return p
}()

// Sanitize returns s with disallowed markup removed.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// SanitizeAndTrim sanitizes s and trims surrounding whitespace. Callers
// validating thread text use this so that markup-only input collapses to
// the empty string and fails the length check.
func SanitizeAndTrim(s string) string {
	return strings.TrimSpace(Sanitize(s))
}
