package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub005/pkg/logger"
	"github.com/Faitltd/FAIT-sub005/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	codeIdempotencyConflict = "ERR_IDEMPOTENCY_CONFLICT"
)

// IdempotencyStore claims and records request outcomes
type IdempotencyStore interface {
	Begin(ctx context.Context, key string) (*redis.CachedResponse, error)
	Complete(ctx context.Context, key string, resp *redis.CachedResponse) error
	Abort(ctx context.Context, key string) error
}

var redisEnabled = redis.Enabled

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response when a client retries with the same Idempotency-Key.
// Keys are scoped to the caller and route. Without redis, or without the header, requests pass through.
func IdempotencyMiddleware(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || store == nil || !redisEnabled() {
			c.Next()
			return
		}

		userID, _ := GetUserID(c)
		storageKey := userID.String() + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key
		ctx := c.Request.Context()

		cached, err := store.Begin(ctx, storageKey)
		switch {
		case errors.Is(err, redis.ErrInProgress):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    codeIdempotencyConflict,
				"message": "Request already in progress",
			})
			return
		case err != nil:
			logger.Warn(ctx, "Idempotency store unavailable, processing request", zap.Error(err))
			c.Next()
			return
		case cached != nil:
			c.Header("X-Idempotency-Hit", "true")
			c.Data(cached.Status, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			if err := store.Complete(ctx, storageKey, &redis.CachedResponse{
				Status:      status,
				ContentType: c.Writer.Header().Get("Content-Type"),
				Body:        w.body.Bytes(),
			}); err != nil {
				logger.Warn(ctx, "Failed to store idempotent response", zap.Error(err))
			}
			return
		}
		// failures stay retryable
		_ = store.Abort(ctx, storageKey)
	}
}
