package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

// replay is what the store keeps per idempotency key. Pending is set while
// the first request is still inside its handler.
type replay struct {
	Pending    bool      `json:"pending"`
	Status     int       `json:"status,omitempty"`
	Body       []byte    `json:"body,omitempty"`
	BodySHA256 string    `json:"body_sha256"`
	RequestAt  int64     `json:"request_at_ms"`
	StoredAt   time.Time `json:"stored_at"`
}

// replayStore keeps one replay per (method, route, account, request id).
type replayStore struct {
	rdb     *redis.Client
	lockTTL time.Duration
	ttl     time.Duration
}

func replayKey(method, route string, account common.Address, reqID string) string {
	return strings.Join([]string{
		"lenoa:idemp",
		strings.ToLower(method),
		route,
		strings.ToLower(account.Hex()),
		reqID,
	}, ":")
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// reserve claims key for a new request. It returns false when the key is
// already held by a pending or completed request.
func (s *replayStore) reserve(ctx context.Context, key string, r replay) (bool, error) {
	r.Pending = true
	payload, err := json.Marshal(r)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, s.lockTTL).Result()
}

// load returns the replay under key. A missing key is reported as ok=false.
func (s *replayStore) load(ctx context.Context, key string) (replay, bool, error) {
	var r replay
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return r, false, nil
	}
	if err != nil {
		return r, false, err
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return r, false, err
	}
	return r, true, nil
}

// commit stores the final response so retries replay it until ttl expires.
func (s *replayStore) commit(ctx context.Context, key string, r replay) error {
	r.Pending = false
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

// release drops key so the client may retry with the same request id.
func (s *replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
