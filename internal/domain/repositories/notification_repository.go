package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
)

// NotificationRepository stores the in-app feed
type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

// ProviderContactRepository resolves where provider mail goes
type ProviderContactRepository interface {
	Upsert(ctx context.Context, c *entities.ProviderContact) error
	GetByProviderID(ctx context.Context, providerID uuid.UUID) (*entities.ProviderContact, error)
}
