package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

const processingMarker = "processing"

// ErrInProgress means another request with the same key has not finished yet.
var ErrInProgress = errors.New("request with this idempotency key is in progress")

// CachedResponse is the replayable part of a completed request
type CachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// IdempotencyStore records request outcomes in Redis so retries replay them
type IdempotencyStore struct {
	prefix    string
	lockTTL   time.Duration
	retention time.Duration
}

var (
	setIdempotencyValue   = Set
	getIdempotencyValue   = Get
	setNXIdempotencyValue = SetNX
	delIdempotencyValue   = Del
)

// NewIdempotencyStore creates a store. lockTTL bounds how long a crashed request blocks retries.
func NewIdempotencyStore(prefix string, lockTTL, retention time.Duration) *IdempotencyStore {
	return &IdempotencyStore{prefix: prefix, lockTTL: lockTTL, retention: retention}
}

// Begin claims key. A non-nil response means the request already completed and should be replayed.
func (s *IdempotencyStore) Begin(ctx context.Context, key string) (*CachedResponse, error) {
	storageKey := s.prefix + key

	val, err := getIdempotencyValue(ctx, storageKey)
	switch {
	case err == nil && val == processingMarker:
		return nil, ErrInProgress
	case err == nil:
		var cached CachedResponse
		if err := json.Unmarshal([]byte(val), &cached); err != nil {
			return nil, err
		}
		return &cached, nil
	case !IsNil(err):
		return nil, err
	}

	ok, err := setNXIdempotencyValue(ctx, storageKey, processingMarker, s.lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInProgress
	}
	return nil, nil
}

// Complete stores resp for replay
func (s *IdempotencyStore) Complete(ctx context.Context, key string, resp *CachedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return setIdempotencyValue(ctx, s.prefix+key, data, s.retention)
}

// Abort releases key so the client can retry
func (s *IdempotencyStore) Abort(ctx context.Context, key string) error {
	return delIdempotencyValue(ctx, s.prefix+key)
}
