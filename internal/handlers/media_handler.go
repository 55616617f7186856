package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"firebase.google.com/go/v4/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// maxUploadSize caps a single media upload at 10 MB.
const maxUploadSize = 10 << 20

var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"video/mp4":  true,
}

// MediaHandler uploads media files to the CDN bucket and hands back
// public URLs. Posts and messages reference the URLs; the files
// themselves never touch the databases.
type MediaHandler struct {
	storageClient *storage.Client
	bucket        string
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(storageClient *storage.Client, bucket string) *MediaHandler {
	return &MediaHandler{storageClient: storageClient, bucket: bucket}
}

// RegisterMediaRoutes registers media upload routes
func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.POST("/media", h.UploadMedia)
}

// UploadMedia stores one multipart file under a random object name and
// returns its public URL.
func (h *MediaHandler) UploadMedia(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file")
	}
	if fileHeader.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedMediaTypes[contentType] {
		return echo.NewHTTPError(http.StatusBadRequest, "Unsupported media type")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer src.Close()

	bucket, err := h.storageClient.Bucket(h.bucket)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	objectName := fmt.Sprintf("media/%d/%s%s", currentUserID, uuid.New().String(), filepath.Ext(fileHeader.Filename))

	ctx := c.Request().Context()
	writer := bucket.Object(objectName).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := io.Copy(writer, src); err != nil {
		writer.Close()
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := writer.Close(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", h.bucket, objectName)

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"url": url}})
}
