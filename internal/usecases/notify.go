package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/metrics"
	"github.com/Faitltd/FAIT-sub005/pkg/logger"
)

// dispatch runs after commit; failures are logged and counted, never returned.
func dispatch(ctx context.Context, n Notifier, m *metrics.Metrics, recipient uuid.UUID, kind entities.NotificationKind, nc entities.NotificationContext) bool {
	if n == nil {
		return true
	}
	err := n.Send(ctx, recipient, kind, nc)
	if err == nil {
		return true
	}

	if errors.Is(err, domainerrors.ErrInAppRecordFailed) {
		m.IncNotificationFailure(string(kind), "in_app")
	}
	if errors.Is(err, domainerrors.ErrDeliveryFailed) {
		m.IncNotificationFailure(string(kind), "delivery")
	}
	if !errors.Is(err, domainerrors.ErrInAppRecordFailed) && !errors.Is(err, domainerrors.ErrDeliveryFailed) {
		m.IncNotificationFailure(string(kind), "unknown")
	}
	logger.Warn(ctx, "Notification failed",
		zap.String("recipient", recipient.String()),
		zap.String("kind", string(kind)),
		zap.String("caseId", nc.CaseID.String()),
		zap.Error(err),
	)
	return false
}

func statusContext(c *entities.VerificationCase, from entities.VerificationStatus) entities.NotificationContext {
	nc := entities.NotificationContext{
		CaseID:          c.ID,
		PreviousStatus:  from,
		NewStatus:       c.Status,
		RejectionReason: c.RejectionReason.String,
	}
	if c.ExpirationDate.Valid {
		nc.ExpirationDate = c.ExpirationDate.Time
	}
	return nc
}
