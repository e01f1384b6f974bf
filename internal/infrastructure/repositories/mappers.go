package repositories

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/models"
)

// isDuplicateKey covers GORM's translated error and raw lib/pq unique violations.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullTimeFromPtr(t *time.Time) null.Time {
	if t == nil {
		return null.Time{}
	}
	return null.TimeFrom(t.UTC())
}

func ptrFromNullTime(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullStringFromPtr(s *string) null.String {
	if s == nil {
		return null.String{}
	}
	return null.StringFrom(*s)
}

func ptrFromNullString(s null.String) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullIntFromPtr(i *int) null.Int {
	if i == nil {
		return null.Int{}
	}
	return null.IntFrom(*i)
}

func ptrFromNullInt(i null.Int) *int {
	if !i.Valid {
		return nil
	}
	v := i.Int
	return &v
}

func copyUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// column values for map based Updates; nil writes NULL
func timeOrNil(t null.Time) interface{} {
	if !t.Valid {
		return nil
	}
	return t.Time.UTC()
}

func stringOrNil(s null.String) interface{} {
	if !s.Valid {
		return nil
	}
	return s.String
}

func uuidOrNil(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func toCaseEntity(m *models.VerificationCase) *entities.VerificationCase {
	c := &entities.VerificationCase{
		ID:               m.ID,
		ProviderID:       m.ProviderID,
		Level:            entities.VerificationLevel(m.Level),
		Status:           entities.VerificationStatus(m.Status),
		IsVerified:       m.IsVerified,
		VerificationDate: nullTimeFromPtr(m.VerificationDate),
		ExpirationDate:   nullTimeFromPtr(m.ExpirationDate),
		RejectionReason:  nullStringFromPtr(m.RejectionReason),
		ReviewerID:       copyUUID(m.ReviewerID),
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
	if len(m.Documents) > 0 {
		c.Documents = make([]*entities.VerificationDocument, 0, len(m.Documents))
		for i := range m.Documents {
			c.Documents = append(c.Documents, toDocumentEntity(&m.Documents[i]))
		}
	}
	return c
}

func toCaseModel(c *entities.VerificationCase) *models.VerificationCase {
	return &models.VerificationCase{
		ID:               c.ID,
		ProviderID:       c.ProviderID,
		Level:            string(c.Level),
		Status:           string(c.Status),
		IsVerified:       c.IsVerified,
		VerificationDate: ptrFromNullTime(c.VerificationDate),
		ExpirationDate:   ptrFromNullTime(c.ExpirationDate),
		RejectionReason:  ptrFromNullString(c.RejectionReason),
		ReviewerID:       copyUUID(c.ReviewerID),
		CreatedAt:        c.CreatedAt.UTC(),
		UpdatedAt:        c.UpdatedAt.UTC(),
	}
}

func toDocumentEntity(m *models.VerificationDocument) *entities.VerificationDocument {
	return &entities.VerificationDocument{
		ID:               m.ID,
		CaseID:           m.CaseID,
		DocumentType:     entities.DocumentType(m.DocumentType),
		Status:           entities.DocumentStatus(m.Status),
		StorageRef:       m.StorageRef,
		DisplayName:      m.DisplayName,
		ContentType:      m.ContentType,
		SizeBytes:        m.SizeBytes,
		Checksum:         m.Checksum,
		DocumentNumber:   nullStringFromPtr(m.DocumentNumber),
		IssuingAuthority: nullStringFromPtr(m.IssuingAuthority),
		ExpirationDate:   nullTimeFromPtr(m.ExpirationDate),
		RejectionReason:  nullStringFromPtr(m.RejectionReason),
		VerifiedBy:       copyUUID(m.VerifiedBy),
		VerifiedAt:       nullTimeFromPtr(m.VerifiedAt),
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

func toDocumentModel(d *entities.VerificationDocument) *models.VerificationDocument {
	return &models.VerificationDocument{
		ID:               d.ID,
		CaseID:           d.CaseID,
		DocumentType:     string(d.DocumentType),
		Status:           string(d.Status),
		StorageRef:       d.StorageRef,
		DisplayName:      d.DisplayName,
		ContentType:      d.ContentType,
		SizeBytes:        d.SizeBytes,
		Checksum:         d.Checksum,
		DocumentNumber:   ptrFromNullString(d.DocumentNumber),
		IssuingAuthority: ptrFromNullString(d.IssuingAuthority),
		ExpirationDate:   ptrFromNullTime(d.ExpirationDate),
		RejectionReason:  ptrFromNullString(d.RejectionReason),
		VerifiedBy:       copyUUID(d.VerifiedBy),
		VerifiedAt:       ptrFromNullTime(d.VerifiedAt),
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
}

func toHistoryEntity(m *models.VerificationHistory) *entities.HistoryEntry {
	return &entities.HistoryEntry{
		ID:             m.ID,
		CaseID:         m.CaseID,
		Action:         entities.HistoryAction(m.Action),
		PreviousStatus: entities.VerificationStatus(m.PreviousStatus),
		NewStatus:      entities.VerificationStatus(m.NewStatus),
		Notes:          nullStringFromPtr(m.Notes),
		PerformedBy:    copyUUID(m.PerformedBy),
		ThresholdDays:  nullIntFromPtr(m.ThresholdDays),
		DaysRemaining:  nullIntFromPtr(m.DaysRemaining),
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

func toHistoryModel(e *entities.HistoryEntry) *models.VerificationHistory {
	return &models.VerificationHistory{
		ID:             e.ID,
		CaseID:         e.CaseID,
		Action:         string(e.Action),
		PreviousStatus: string(e.PreviousStatus),
		NewStatus:      string(e.NewStatus),
		Notes:          ptrFromNullString(e.Notes),
		PerformedBy:    copyUUID(e.PerformedBy),
		ThresholdDays:  ptrFromNullInt(e.ThresholdDays),
		DaysRemaining:  ptrFromNullInt(e.DaysRemaining),
		CreatedAt:      e.CreatedAt.UTC(),
	}
}
