package aadhaar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/OpenNSW/aadhaar/internal/aadhaar/model"
	"github.com/OpenNSW/aadhaar/internal/config"
	"github.com/OpenNSW/aadhaar/internal/filedata"
	"github.com/OpenNSW/aadhaar/internal/uploads"
	"github.com/OpenNSW/aadhaar/internal/validator"
	"github.com/OpenNSW/aadhaar/utils"
)

var (
	// ErrVerificationNotFound is returned when no verification has the given ID
	ErrVerificationNotFound = errors.New("verification not found")
	// ErrAlreadyReviewed is returned when a decided verification is reviewed again
	ErrAlreadyReviewed = errors.New("verification already reviewed")
	ErrInvalidDecision = errors.New("decision must be either approve or reject")
	ErrInvalidStatus   = errors.New("unknown verification status")
)

const queuedMessage = "Document received and queued for verification"

// Service accepts Aadhaar documents and tracks their verification
type Service struct {
	store   *VerificationStore
	uploads *uploads.UploadService
	upload  config.UploadConfig
	metrics *Metrics
}

func NewService(store *VerificationStore, uploadService *uploads.UploadService, upload config.UploadConfig, metrics *Metrics) *Service {
	if upload.Accept == "" {
		upload.Accept = config.DefaultAccept
	}
	if upload.MaxSize <= 0 {
		upload.MaxSize = config.DefaultMaxUploadSize
	}
	return &Service{store: store, uploads: uploadService, upload: upload, metrics: metrics}
}

// Submit checks the document against the accept-spec and size limit, stores
// it and records it as processing. The MIME type is sniffed from the
// content; the type declared by the client is only logged. Rejections are
// returned as *validator.Error.
func (s *Service) Submit(ctx context.Context, fileName, declaredType string, r io.Reader) (*model.UploadData, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.upload.MaxSize+1))
	if err != nil {
		s.metrics.uploadFailed()
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	detected, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	file := filedata.New(fileName, detected, data)

	if err := validator.Validate(file, s.upload.Accept, s.upload.MaxSize); err != nil {
		s.metrics.uploadRejected()
		slog.InfoContext(ctx, "document rejected", "file", fileName, "declared", declaredType, "detected", file.Type, "reason", err)
		return nil, err
	}

	meta, err := s.uploads.Upload(ctx, fileName, bytes.NewReader(data), file.Size, file.Type)
	if err != nil {
		s.metrics.uploadFailed()
		return nil, err
	}

	rec := &VerificationRecord{
		ID:         meta.ID,
		FileName:   fileName,
		StorageKey: meta.Key,
		URL:        meta.URL,
		FileSize:   meta.Size,
		MimeType:   meta.MimeType,
		Status:     model.StatusProcessing,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		if rmErr := s.uploads.Remove(ctx, meta.Key); rmErr != nil {
			slog.WarnContext(ctx, "failed to remove orphaned document", "key", meta.Key, "error", rmErr)
		}
		s.metrics.uploadFailed()
		return nil, fmt.Errorf("failed to store verification: %w", err)
	}

	s.metrics.uploadAccepted(meta.Size)
	slog.InfoContext(ctx, "verification created", "id", rec.ID, "file", fileName, "size", meta.Size)

	return &model.UploadData{
		ID:       rec.ID.String(),
		FileName: rec.FileName,
		URL:      rec.URL,
		FileSize: validator.FormatSize(rec.FileSize),
		Status:   rec.Status,
		Message:  queuedMessage,
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Verification, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := rec.ToModel()
	return &v, nil
}

// List returns one page of verifications, optionally filtered by status.
// page is 1-based; nil page or limit fall back to the defaults.
func (s *Service) List(ctx context.Context, status model.VerificationStatus, page, limit *int) (*model.VerificationList, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}

	p := utils.GetPaginationParams(page, limit)
	recs, total, err := s.store.List(ctx, status, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	out := &model.VerificationList{
		Data: make([]model.Verification, len(recs)),
		Pagination: model.Pagination{
			CurrentPage:  p.Page,
			TotalPages:   utils.TotalPages(total, p.Limit),
			TotalItems:   total,
			ItemsPerPage: p.Limit,
		},
	}
	for i := range recs {
		out.Data[i] = recs[i].ToModel()
	}
	return out, nil
}

// Review records a reviewer's decision. Only pending or processing
// verifications can be decided.
func (s *Service) Review(ctx context.Context, id uuid.UUID, decision model.Decision, reviewerNotes string) (*model.Verification, error) {
	var status model.VerificationStatus
	switch decision {
	case model.DecisionApprove:
		status = model.StatusVerified
	case model.DecisionReject:
		status = model.StatusRejected
	default:
		return nil, ErrInvalidDecision
	}

	updated, err := s.store.UpdateReview(ctx, id, status, reviewerNotes)
	if err != nil {
		return nil, fmt.Errorf("failed to update verification: %w", err)
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrAlreadyReviewed
	}

	s.metrics.reviewed(string(status))
	slog.InfoContext(ctx, "verification reviewed", "id", id, "status", status)
	v := rec.ToModel()
	return &v, nil
}
