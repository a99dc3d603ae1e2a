package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeMediaStore keeps uploads in memory.
type fakeMediaStore struct {
	objects map[string][]byte
	err     error
}

func (f *fakeMediaStore) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	if f.err != nil {
		return f.err
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = b
	return nil
}

func (f *fakeMediaStore) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://media.local/" + key, nil
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.Copy(fw, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func mountMedia(store *fakeMediaStore) *gin.Engine {
	r := gin.New()
	NewMediaHandler(store).Register(r.Group("/"))
	return r
}

func TestMediaUpload_StoresFileAndReturnsURL(t *testing.T) {
	store := &fakeMediaStore{}
	r := mountMedia(store)

	body, contentType := multipartUpload(t, "file", "cover.png", "png-bytes")
	req := httptest.NewRequest("POST", "/media/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp["key"], "uploads/"))
	require.True(t, strings.HasSuffix(resp["key"], ".png"))
	require.Equal(t, "http://media.local/"+resp["key"], resp["url"])
	require.Equal(t, "png-bytes", string(store.objects[resp["key"]]))
}

func TestMediaUpload_MissingFilePart(t *testing.T) {
	r := mountMedia(&fakeMediaStore{})

	body, contentType := multipartUpload(t, "document", "cover.png", "png-bytes")
	req := httptest.NewRequest("POST", "/media/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMediaUpload_StorageFailure(t *testing.T) {
	r := mountMedia(&fakeMediaStore{err: io.ErrUnexpectedEOF})

	body, contentType := multipartUpload(t, "file", "cover.png", "png-bytes")
	req := httptest.NewRequest("POST", "/media/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
