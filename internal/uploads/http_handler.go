package uploads

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/OpenNSW/aadhaar/internal/aadhaar/model"
)

type HTTPHandler struct {
	Service *UploadService
}

func NewHTTPHandler(service *UploadService) *HTTPHandler {
	return &HTTPHandler{Service: service}
}

// RegisterRoutes mounts GET /uploads/:key on the given router group
func (h *HTTPHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/uploads/:key", h.Download)
}

// Download streams a stored document back to the caller
func (h *HTTPHandler) Download(c *gin.Context) {
	key := c.Param("key")
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		writeError(c, http.StatusBadRequest, "invalid key")
		return
	}

	reader, contentType, err := h.Service.Download(c.Request.Context(), key)
	if err != nil {
		writeError(c, http.StatusNotFound, "file not found")
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		slog.WarnContext(c.Request.Context(), "download interrupted", "key", key, "error", err)
	}
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, model.ErrorResponse{Success: false, Error: message, StatusCode: status})
}
