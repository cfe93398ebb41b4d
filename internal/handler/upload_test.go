package handler_test

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elegant-dining/reservation-api/internal/handler"
)

// pngBytes encodes a solid image of the given dimensions.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// multipartUpload builds a multipart request carrying one "image"
// field named filename with the given content.
func multipartUpload(t *testing.T, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/upload", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req, httptest.NewRecorder()
}

func uploadFixture(t *testing.T) (*echo.Echo, string) {
	t.Helper()
	dir := t.TempDir()
	e := echo.New()
	e.POST("/v1/upload", handler.NewUploadHandler(dir).Upload)
	return e, dir
}

func TestUploadStoresImage(t *testing.T) {
	e, dir := uploadFixture(t)

	req, rec := multipartUpload(t, "party.png", pngBytes(t, 10, 20))
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := rec.Body.String()
	assert.Contains(t, body, `"success":true`)
	assert.Contains(t, body, `"image_width":10`)
	assert.Contains(t, body, `"image_height":20`)
	assert.Contains(t, body, `"original_name":"party.png"`)

	// Exactly one file landed in the upload dir, with a generated
	// name keeping the original extension.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	name := entries[0].Name()
	assert.True(t, strings.HasPrefix(name, "img_"))
	assert.Equal(t, ".png", filepath.Ext(name))
	assert.Contains(t, body, `"image_path":"uploads/`+name+`"`)
}

func TestUploadRejectsBadExtension(t *testing.T) {
	e, dir := uploadFixture(t)

	req, rec := multipartUpload(t, "notes.txt", []byte("hello"))
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid file type")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadRejectsNonImagePayload(t *testing.T) {
	e, dir := uploadFixture(t)

	// Right extension, not actually an image.
	req, rec := multipartUpload(t, "fake.png", []byte("this is not a png"))
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a valid image")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadRejectsOversizedDimensions(t *testing.T) {
	e, _ := uploadFixture(t)

	req, rec := multipartUpload(t, "huge.png", pngBytes(t, handler.MaxImageWidth+1, 10))
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Image dimensions too large")
}

func TestUploadRequiresFile(t *testing.T) {
	e, _ := uploadFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/upload", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file uploaded")
}
