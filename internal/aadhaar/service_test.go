package aadhaar

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNSW/aadhaar/internal/aadhaar/model"
	"github.com/OpenNSW/aadhaar/internal/config"
	"github.com/OpenNSW/aadhaar/internal/database"
	"github.com/OpenNSW/aadhaar/internal/uploads"
	"github.com/OpenNSW/aadhaar/internal/uploads/drivers"
	"github.com/OpenNSW/aadhaar/internal/validator"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1}

type fixture struct {
	service *Service
	store   *VerificationStore
	driver  *drivers.LocalFSDriver
	metrics *Metrics
}

func newFixture(t *testing.T, upload config.UploadConfig) *fixture {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store, err := NewVerificationStore(db)
	require.NoError(t, err)

	driver, err := drivers.NewLocalFSDriver(t.TempDir(), "/api/uploads")
	require.NoError(t, err)

	metrics := NewMetrics(prometheus.NewRegistry())
	return &fixture{
		service: NewService(store, uploads.NewUploadService(driver), upload, metrics),
		store:   store,
		driver:  driver,
		metrics: metrics,
	}
}

func TestSubmit_StoresAndRecordsProcessing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.UploadConfig{})

	data, err := f.service.Submit(ctx, "card.png", "image/png", bytes.NewReader(pngBytes))
	require.NoError(t, err)

	assert.Equal(t, model.StatusProcessing, data.Status)
	assert.Equal(t, "card.png", data.FileName)
	assert.Equal(t, "20 B", data.FileSize)
	assert.Equal(t, queuedMessage, data.Message)
	assert.Contains(t, data.URL, "/api/uploads/")

	id, err := uuid.Parse(data.ID)
	require.NoError(t, err)
	rec, err := f.store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "image/png", rec.MimeType)
	assert.Equal(t, int64(len(pngBytes)), rec.FileSize)
	assert.FileExists(t, f.driver.LocalPath(rec.StorageKey))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.uploads.WithLabelValues("accepted")))
}

func TestSubmit_RejectsByContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.UploadConfig{})

	_, err := f.service.Submit(ctx, "card.png", "image/png", bytes.NewReader([]byte("%PDF-1.4 not an image")))

	var verr *validator.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, validator.KindType, verr.Kind)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.uploads.WithLabelValues("rejected")))
}

func TestSubmit_RejectsOversize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.UploadConfig{Accept: config.DefaultAccept, MaxSize: 16})

	_, err := f.service.Submit(ctx, "card.png", "image/png", bytes.NewReader(pngBytes))

	var verr *validator.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, validator.KindSize, verr.Kind)
	assert.Equal(t, "File size exceeds 0.00 MB limit", verr.Reason)
}

func TestReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.UploadConfig{})

	data, err := f.service.Submit(ctx, "card.png", "", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	id := uuid.MustParse(data.ID)

	v, err := f.service.Review(ctx, id, model.DecisionApprove, "looks fine")
	require.NoError(t, err)
	assert.Equal(t, model.StatusVerified, v.Status)
	assert.Equal(t, "looks fine", v.ReviewerNotes)
	assert.NotNil(t, v.ReviewedAt)

	_, err = f.service.Review(ctx, id, model.DecisionReject, "")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	_, err = f.service.Review(ctx, uuid.New(), model.DecisionReject, "")
	assert.ErrorIs(t, err, ErrVerificationNotFound)

	_, err = f.service.Review(ctx, id, model.Decision("maybe"), "")
	assert.ErrorIs(t, err, ErrInvalidDecision)

	got, err := f.service.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusVerified, got.Status)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.UploadConfig{})

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		data, err := f.service.Submit(ctx, "card.png", "", bytes.NewReader(pngBytes))
		require.NoError(t, err)
		ids = append(ids, uuid.MustParse(data.ID))
	}
	_, err := f.service.Review(ctx, ids[0], model.DecisionReject, "blurry")
	require.NoError(t, err)

	all, err := f.service.List(ctx, "", nil, nil)
	require.NoError(t, err)
	assert.Len(t, all.Data, 3)
	assert.Equal(t, model.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 3, ItemsPerPage: 20}, all.Pagination)

	processing, err := f.service.List(ctx, model.StatusProcessing, nil, nil)
	require.NoError(t, err)
	assert.Len(t, processing.Data, 2)

	page, limit := 2, 2
	second, err := f.service.List(ctx, "", &page, &limit)
	require.NoError(t, err)
	assert.Len(t, second.Data, 1)
	assert.Equal(t, 2, second.Pagination.TotalPages)

	_, err = f.service.List(ctx, "approved", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t, config.UploadConfig{})
	_, err := f.service.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrVerificationNotFound)
}
