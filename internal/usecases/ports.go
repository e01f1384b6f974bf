package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
)

// DocumentStore holds uploaded document bytes
type DocumentStore interface {
	Put(ctx context.Context, providerID uuid.UUID, docType entities.DocumentType, contentType string, data []byte) (*entities.StoredObject, error)
	SignedURL(ctx context.Context, ref string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Notifier delivers templated messages and records them in the in-app feed
type Notifier interface {
	Send(ctx context.Context, recipient uuid.UUID, kind entities.NotificationKind, nc entities.NotificationContext) error
}
