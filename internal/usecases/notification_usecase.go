package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/domain/repositories"
	"github.com/Faitltd/FAIT-sub005/pkg/utils"
)

// NotificationUsecase serves the in-app feed and provider contact details
type NotificationUsecase struct {
	notificationRepo repositories.NotificationRepository
	contactRepo      repositories.ProviderContactRepository
	validate         *validator.Validate
	now              func() time.Time
}

func NewNotificationUsecase(notificationRepo repositories.NotificationRepository, contactRepo repositories.ProviderContactRepository) *NotificationUsecase {
	return &NotificationUsecase{
		notificationRepo: notificationRepo,
		contactRepo:      contactRepo,
		validate:         validator.New(validator.WithRequiredStructEnabled()),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// List returns the user's notifications, newest first
func (u *NotificationUsecase) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.Notification, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	items, total, err := u.notificationRepo.ListByUserID(ctx, userID, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return items, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// MarkRead flags one of the user's notifications as read
func (u *NotificationUsecase) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return u.notificationRepo.MarkRead(ctx, userID, notificationID)
}

// UpsertContact sets where the provider's mail is delivered.
func (u *NotificationUsecase) UpsertContact(ctx context.Context, providerID uuid.UUID, email, displayName string) (*entities.ProviderContact, error) {
	c := &entities.ProviderContact{
		ProviderID:  providerID,
		Email:       strings.TrimSpace(email),
		DisplayName: strings.TrimSpace(displayName),
		UpdatedAt:   u.now(),
	}
	if err := u.validate.Struct(c); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrValidation, err)
	}
	if err := u.contactRepo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *NotificationUsecase) GetContact(ctx context.Context, providerID uuid.UUID) (*entities.ProviderContact, error) {
	return u.contactRepo.GetByProviderID(ctx, providerID)
}
