package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/domain/repositories"
	"github.com/Faitltd/FAIT-sub005/pkg/logger"
)

// Notifier records an in-app notification and then mails the provider.
type Notifier struct {
	notifications repositories.NotificationRepository
	contacts      repositories.ProviderContactRepository
	renderer      *Renderer
	mailer        Mailer
	now           func() time.Time
}

func NewNotifier(
	notifications repositories.NotificationRepository,
	contacts repositories.ProviderContactRepository,
	renderer *Renderer,
	mailer Mailer,
) *Notifier {
	return &Notifier{
		notifications: notifications,
		contacts:      contacts,
		renderer:      renderer,
		mailer:        mailer,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type feedData struct {
	VerificationID uuid.UUID                `json:"verification_id"`
	Kind           entities.NotificationKind `json:"kind"`
	DocumentType   entities.DocumentType    `json:"document_type,omitempty"`
}

// Send always attempts the in-app record before delivery. The returned error
// wraps ErrInAppRecordFailed, ErrDeliveryFailed, or both.
func (n *Notifier) Send(ctx context.Context, recipient uuid.UUID, kind entities.NotificationKind, nc entities.NotificationContext) error {
	contact, contactErr := n.contacts.GetByProviderID(ctx, recipient)
	if contactErr == nil && nc.ProviderName == "" {
		nc.ProviderName = contact.DisplayName
	}

	var errs []error
	content, renderErr := n.renderer.Render(kind, nc)
	if renderErr != nil {
		logger.Error(ctx, "Failed to render notification, recording fallback",
			zap.String("recipient", recipient.String()),
			zap.String("kind", string(kind)),
			zap.Error(renderErr),
		)
		content = fallbackContent()
	}

	if err := n.record(ctx, recipient, kind, nc, content); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", domainerrors.ErrInAppRecordFailed, err))
	}

	switch {
	case renderErr != nil:
		errs = append(errs, fmt.Errorf("%w: render: %v", domainerrors.ErrDeliveryFailed, renderErr))
	case errors.Is(contactErr, domainerrors.ErrNotFound):
		logger.Debug(ctx, "No contact on file, skipping mail delivery",
			zap.String("recipient", recipient.String()),
			zap.String("kind", string(kind)),
		)
	case contactErr != nil:
		errs = append(errs, fmt.Errorf("%w: resolve contact: %v", domainerrors.ErrDeliveryFailed, contactErr))
	default:
		if err := n.mailer.Send(ctx, Mail{
			To:      contact.Email,
			ToName:  contact.DisplayName,
			Subject: content.Subject,
			HTML:    content.HTML,
			Text:    content.Text,
		}); err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", domainerrors.ErrDeliveryFailed, err))
		}
	}

	return errors.Join(errs...)
}

func fallbackContent() *Content {
	return &Content{
		Title:   "Verification Status Update",
		Message: "Your verification status has been updated. Please check your email for details.",
	}
}

func (n *Notifier) record(ctx context.Context, recipient uuid.UUID, kind entities.NotificationKind, nc entities.NotificationContext, content *Content) error {
	data, err := json.Marshal(feedData{
		VerificationID: nc.CaseID,
		Kind:           kind,
		DocumentType:   nc.DocumentType,
	})
	if err != nil {
		return err
	}
	return n.notifications.Create(ctx, &entities.Notification{
		UserID:    recipient,
		Title:     content.Title,
		Message:   content.Message,
		Type:      entities.NotificationTypeVerification,
		Read:      false,
		Data:      null.JSONFrom(data),
		CreatedAt: n.now(),
	})
}
