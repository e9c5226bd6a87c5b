package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// MediaHandler serves the upload handshake and media downloads
type MediaHandler struct {
	media *services.MediaService
}

func NewMediaHandler(media *services.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// RegisterUploadRoutes registers the authenticated upload routes
func (h *MediaHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/media/upload-url", h.GenerateUploadURL)
	g.PUT("/media/upload/:ref", h.Upload)
}

// RegisterPublicRoutes registers the download route durable URLs point at
func (h *MediaHandler) RegisterPublicRoutes(e *echo.Echo) {
	e.GET("/media/:ref", h.Download)
}

func (h *MediaHandler) GenerateUploadURL(c echo.Context) error {
	target, err := h.media.IssueUploadTarget(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, target)
}

// Upload stores the raw request body under the reference
func (h *MediaHandler) Upload(c echo.Context) error {
	req := c.Request()
	contentType := req.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	obj, err := h.media.Upload(req.Context(), getUserIDFromContext(c), c.Param("ref"), contentType, req.Body)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, obj)
}

func (h *MediaHandler) Download(c echo.Context) error {
	obj, rc, err := h.media.Open(c.Request().Context(), c.Param("ref"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	defer rc.Close()
	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(obj.Size, 10))
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.Stream(http.StatusOK, obj.ContentType, rc)
}
