package middleware

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lenoa-backend/pkg/id"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	HeaderReplayed  = "Ax-Idempotent-Replay"
)

var reUUID = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)

// requestID normalizes an Ax-Request-Id to lowercase and reports whether it
// is a UUID (v1-v5) or a compact 32-hex id.
func requestID(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	return s, reUUID.MatchString(s) || id.Compact(s)
}

// requestAt parses Ax-Request-At as epoch seconds, epoch milliseconds, or an
// RFC 3339 timestamp carrying a zone.
func requestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

func withinSkew(at, now time.Time, skew time.Duration) bool {
	return !at.Before(now.Add(-skew)) && !at.After(now.Add(skew))
}
