package handler

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/portfolio_server/config"
	"github.com/qs3c/portfolio_server/internal/pkg/response"
	"github.com/qs3c/portfolio_server/internal/pkg/storage"
	"github.com/qs3c/portfolio_server/internal/pkg/uploader"
	"github.com/qs3c/portfolio_server/internal/service"
)

func setupUploadRouter(t *testing.T) (*gin.Engine, *storage.Memory) {
	t.Helper()

	cfg := config.Default()
	cfg.JWT.Secret = testJWTSecret
	store := storage.NewMemory("http://cdn.test")
	h := NewUploadHandler(service.NewUploadService(store, cfg))

	router := gin.New()
	router.POST("/api/upload", h.Proxied)
	router.POST("/api/upload/direct", h.Direct)
	router.POST("/api/upload/direct/complete", h.Complete)
	return router, store
}

func multipartRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadHandler_Proxied(t *testing.T) {
	router, store := setupUploadRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "cv.pdf", "application/pdf", []byte("%PDF-1.4")))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[uploader.ProxiedResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "cv.pdf", resp.OriginalName)
	assert.Equal(t, "application/pdf", resp.Type)
	assert.True(t, strings.HasPrefix(resp.URL, "http://cdn.test/uploads/"))
	assert.True(t, strings.HasSuffix(resp.Filename, "-cv.pdf"))

	data, _, ok := store.Get("uploads/" + resp.Filename)
	require.True(t, ok)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestUploadHandler_Proxied_NoFile(t *testing.T) {
	router, _ := setupUploadRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file provided", parseError(t, w).Error)
}

func TestUploadHandler_Proxied_UnsupportedType(t *testing.T) {
	router, _ := setupUploadRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "run.exe", "application/x-msdownload", []byte("MZ")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, parseError(t, w).Error, "File type not supported")
}

func TestUploadHandler_Proxied_TooLarge(t *testing.T) {
	router, _ := setupUploadRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "big.pdf", "application/pdf", bytes.Repeat([]byte("x"), 5<<20)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	body := parseError(t, w)
	assert.Equal(t, response.CodeTooLarge, body.Code)
	assert.True(t, body.ShouldUseDirectUpload)
	assert.Equal(t, "Use direct upload for files over 4.5MB", body.Suggestion)
}

func TestUploadHandler_DirectAndComplete(t *testing.T) {
	router, store := setupUploadRouter(t)

	w := performRequest(router, http.MethodPost, "/api/upload/direct", gin.H{
		"pathname":    "resume.pdf",
		"contentType": "application/pdf",
		"size":        5,
		"payload":     "resume",
	})
	require.Equal(t, http.StatusOK, w.Code)

	auth := decode[uploader.DirectAuthorization](t, w)
	assert.Equal(t, http.MethodPut, auth.Method)
	assert.NotEmpty(t, auth.UploadURL)
	require.NotEmpty(t, auth.Token)

	w = performRequest(router, http.MethodPost, "/api/upload/direct/complete", gin.H{"token": auth.Token})
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, err := store.Put(context.Background(), auth.Pathname, strings.NewReader("hello"), 5, "application/pdf")
	require.NoError(t, err)

	w = performRequest(router, http.MethodPost, "/api/upload/direct/complete", gin.H{"token": auth.Token})
	require.Equal(t, http.StatusOK, w.Code)

	done := decode[uploader.CompleteResponse](t, w)
	assert.Equal(t, "http://cdn.test/"+auth.Pathname, done.URL)
	assert.Equal(t, "resume", done.Payload)
	assert.EqualValues(t, 5, done.Size)
}

func TestUploadHandler_Direct_BadRequest(t *testing.T) {
	router, _ := setupUploadRouter(t)

	w := performRequest(router, http.MethodPost, "/api/upload/direct", gin.H{"pathname": "a.pdf"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodPost, "/api/upload/direct", gin.H{
		"pathname": "huge.png", "contentType": "image/png", "size": 50 << 20,
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, parseError(t, w).ShouldUseDirectUpload)
}

func TestUploadHandler_Complete_InvalidToken(t *testing.T) {
	router, _ := setupUploadRouter(t)

	w := performRequest(router, http.MethodPost, "/api/upload/direct/complete", gin.H{"token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(router, http.MethodPost, "/api/upload/direct/complete", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
