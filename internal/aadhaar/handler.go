package aadhaar

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/OpenNSW/aadhaar/internal/aadhaar/model"
	"github.com/OpenNSW/aadhaar/internal/validator"
)

// Handler exposes the verification service over HTTP
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the Aadhaar endpoints on r
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/aadhaar")
	g.POST("/upload", h.Upload)
	g.GET("/verifications", h.ListVerifications)
	g.GET("/verifications/:id", h.GetVerification)
	g.POST("/verifications/:id/review", h.ReviewVerification)
}

// WriteError answers with the JSON error body clients expect
func WriteError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, model.ErrorResponse{
		Success:    false,
		Error:      message,
		StatusCode: status,
	})
}

// Upload handles POST /aadhaar/upload with the document in field "file"
func (h *Handler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	header, err := c.FormFile(model.UploadField)
	if err != nil {
		WriteError(c, http.StatusBadRequest, "Please select a file to upload")
		return
	}

	f, err := header.Open()
	if err != nil {
		WriteError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer f.Close()

	data, err := h.service.Submit(ctx, header.Filename, header.Header.Get("Content-Type"), f)
	if err != nil {
		var verr *validator.Error
		if errors.As(err, &verr) {
			WriteError(c, http.StatusUnprocessableEntity, verr.Reason)
			return
		}
		slog.ErrorContext(ctx, "failed to accept document", "file", header.Filename, "error", err)
		WriteError(c, http.StatusInternalServerError, "Upload failed. Please try again.")
		return
	}

	c.JSON(http.StatusCreated, model.UploadResponse{
		Success: true,
		Data:    data,
		Message: data.Message,
	})
}

// ListVerifications handles GET /aadhaar/verifications?status=&page=&limit=
func (h *Handler) ListVerifications(c *gin.Context) {
	ctx := c.Request.Context()
	status := model.VerificationStatus(c.Query("status"))

	list, err := h.service.List(ctx, status, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			WriteError(c, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(ctx, "failed to list verifications", "error", err)
		WriteError(c, http.StatusInternalServerError, "Failed to list verifications")
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetVerification handles GET /aadhaar/verifications/:id
func (h *Handler) GetVerification(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	v, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrVerificationNotFound) {
			WriteError(c, http.StatusNotFound, "Verification not found")
			return
		}
		slog.ErrorContext(ctx, "failed to get verification", "id", id, "error", err)
		WriteError(c, http.StatusInternalServerError, "Failed to get verification")
		return
	}

	c.JSON(http.StatusOK, model.VerificationResponse{Success: true, Data: v})
}

// ReviewVerification handles POST /aadhaar/verifications/:id/review
func (h *Handler) ReviewVerification(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, http.StatusBadRequest, "Decision must be either approve or reject")
		return
	}

	ctx := c.Request.Context()
	v, err := h.service.Review(ctx, id, req.Decision, req.ReviewerNotes)
	switch {
	case err == nil:
	case errors.Is(err, ErrVerificationNotFound):
		WriteError(c, http.StatusNotFound, "Verification not found")
		return
	case errors.Is(err, ErrAlreadyReviewed):
		WriteError(c, http.StatusConflict, err.Error())
		return
	case errors.Is(err, ErrInvalidDecision):
		WriteError(c, http.StatusBadRequest, err.Error())
		return
	default:
		slog.ErrorContext(ctx, "failed to review verification", "id", id, "error", err)
		WriteError(c, http.StatusInternalServerError, "Failed to review verification")
		return
	}

	c.JSON(http.StatusOK, model.VerificationResponse{
		Success: true,
		Data:    v,
		Message: "Verification reviewed successfully",
	})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		WriteError(c, http.StatusBadRequest, "invalid verification id")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) *int {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
