package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/models"
)

// FileSigner issues and checks download tokens
type FileSigner interface {
	SignFileToken(path string, ttl time.Duration) (string, error)
	ParseFileToken(token string) (string, error)
}

// Blob is a stored object with its bytes
type Blob struct {
	entities.StoredObject
	Data []byte
}

// BlobStore keeps document bytes in the verification_blobs table
type BlobStore struct {
	db      *gorm.DB
	signer  FileSigner
	baseURL string
	now     func() time.Time
}

func NewBlobStore(db *gorm.DB, signer FileSigner, publicBaseURL string) *BlobStore {
	return &BlobStore{
		db:      db,
		signer:  signer,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		now:     time.Now,
	}
}

// ObjectPath builds {providerId}/{unixMillis}_{documentType}.{ext}
func ObjectPath(providerID uuid.UUID, docType entities.DocumentType, contentType string, at time.Time) string {
	ext := ".bin"
	if m := mimetype.Lookup(contentType); m != nil && m.Extension() != "" {
		ext = m.Extension()
	}
	return fmt.Sprintf("%s/%d_%s%s", providerID, at.UnixMilli(), slug.Make(string(docType)), ext)
}

// Checksum is the hex blake2b-256 digest of data
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *BlobStore) Put(ctx context.Context, providerID uuid.UUID, docType entities.DocumentType, contentType string, data []byte) (*entities.StoredObject, error) {
	blob := &models.VerificationBlob{
		Path:        ObjectPath(providerID, docType, contentType, s.now()),
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Checksum:    Checksum(data),
		Data:        data,
	}
	if err := s.db.WithContext(ctx).Create(blob).Error; err != nil {
		return nil, fmt.Errorf("put %s: %w", blob.Path, err)
	}
	return &entities.StoredObject{
		Ref:         blob.Path,
		ContentType: blob.ContentType,
		SizeBytes:   blob.SizeBytes,
		Checksum:    blob.Checksum,
	}, nil
}

// SignedURL returns a download link for ref that stops working after ttl
func (s *BlobStore) SignedURL(_ context.Context, ref string, ttl time.Duration) (string, error) {
	token, err := s.signer.SignFileToken(ref, ttl)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", ref, err)
	}
	return s.baseURL + "/api/v1/files/" + token, nil
}

// Get loads the blob stored at ref
func (s *BlobStore) Get(ctx context.Context, ref string) (*Blob, error) {
	var m models.VerificationBlob
	if err := s.db.WithContext(ctx).Where("path = ?", ref).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &Blob{
		StoredObject: entities.StoredObject{
			Ref:         m.Path,
			ContentType: m.ContentType,
			SizeBytes:   m.SizeBytes,
			Checksum:    m.Checksum,
		},
		Data: m.Data,
	}, nil
}

// Open resolves a download token to its blob
func (s *BlobStore) Open(ctx context.Context, token string) (*Blob, error) {
	ref, err := s.signer.ParseFileToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrUnauthorized, err)
	}
	return s.Get(ctx, ref)
}

// Delete removes ref. Deleting a missing object is not an error.
func (s *BlobStore) Delete(ctx context.Context, ref string) error {
	return s.db.WithContext(ctx).Where("path = ?", ref).Delete(&models.VerificationBlob{}).Error
}
