package handler

import (
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	// Register the decoders the allow-list permits so
	// image.DecodeConfig can recognize them.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Upload limits matching the booking form: small photos of the party
// or occasion, nothing more.
const (
	MaxUploadBytes = 5 << 20 // 5MB
	MaxImageWidth  = 2000
	MaxImageHeight = 2000
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// UploadHandler accepts a single multipart image, validates it and
// stores it under Dir with a generated unique filename. The returned
// relative path is what clients pass back as image_path when creating
// a reservation.
type UploadHandler struct {
	Dir string
}

func NewUploadHandler(dir string) *UploadHandler { return &UploadHandler{Dir: dir} }

// Upload handles POST with a multipart "image" field. Validation
// order: file present, extension allow-list, size cap, real image
// decodability, pixel dimensions.
func (h *UploadHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "No file uploaded."})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExts[ext] {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid file type. Only JPG, JPEG, PNG and GIF files are allowed."})
	}
	if fileHeader.Size > MaxUploadBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "File too large. Maximum size is 5MB."})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "File upload error."})
	}
	defer src.Close()

	// DecodeConfig reads only the header: enough to prove the payload
	// is a real image and to learn its dimensions without decoding
	// pixels.
	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "File is not a valid image."})
	}
	if cfg.Width > MaxImageWidth || cfg.Height > MaxImageHeight {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": fmt.Sprintf("Image dimensions too large. Maximum: %dx%dpx.", MaxImageWidth, MaxImageHeight),
		})
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to save uploaded file."})
	}

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to save uploaded file."})
	}
	filename := "img_" + uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.Dir, filename))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to save uploaded file."})
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to save uploaded file."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"message":       "File uploaded successfully.",
		"image_path":    "uploads/" + filename,
		"original_name": fileHeader.Filename,
		"file_size":     fileHeader.Size,
		"image_width":   cfg.Width,
		"image_height":  cfg.Height,
	})
}
