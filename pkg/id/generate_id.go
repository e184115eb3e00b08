package id

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var reCompact = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewRequestID returns a random v4 UUID as 32 lowercase hex characters.
// Clients may send it as Ax-Request-Id; the server uses it for X-Request-Id.
func NewRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Compact reports whether s has the NewRequestID format.
func Compact(s string) bool { return reCompact.MatchString(s) }
