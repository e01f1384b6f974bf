package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/storage"
)

type blobOpenerStub map[string]*storage.Blob

func (s blobOpenerStub) Open(_ context.Context, token string) (*storage.Blob, error) {
	b, ok := s[token]
	if !ok {
		return nil, fmt.Errorf("%w: token rejected", domainerrors.ErrUnauthorized)
	}
	return b, nil
}

type errOpener struct{ err error }

func (o errOpener) Open(context.Context, string) (*storage.Blob, error) { return nil, o.err }

func TestFileHandler_Download(t *testing.T) {
	blobs := blobOpenerStub{
		"good": {StoredObject: entities.StoredObject{ContentType: "application/pdf"}, Data: []byte("%PDF-1.4")},
	}
	r := newRouter(uuid.Nil, "")
	r.GET("/files/:token", NewFileHandler(blobs).Download)

	w := doJSON(r, http.MethodGet, "/files/good", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())

	w = doJSON(r, http.MethodGet, "/files/forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFileHandler_MissingBlob(t *testing.T) {
	r := newRouter(uuid.Nil, "")
	r.GET("/files/:token", NewFileHandler(errOpener{domainerrors.ErrNotFound}).Download)
	w := doJSON(r, http.MethodGet, "/files/x", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	r = newRouter(uuid.Nil, "")
	r.GET("/files/:token", NewFileHandler(errOpener{errors.New("db down")}).Download)
	w = doJSON(r, http.MethodGet, "/files/x", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
