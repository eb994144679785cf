package model

import (
	"strings"

	"github.com/google/uuid"
)

// NewID builds a readable unique id: the slug of name followed by a short
// random suffix, e.g. "welcome-message-3f9a1c2b".
func NewID(name string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	slug := Slugify(name)
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}

// Slugify lowercases s and replaces every run of characters outside
// [a-z0-9] with a single dash.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
