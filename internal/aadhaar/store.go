package aadhaar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenNSW/aadhaar/internal/aadhaar/model"
)

// VerificationRecord is one uploaded Aadhaar document and its review state
type VerificationRecord struct {
	ID            uuid.UUID                `gorm:"type:uuid;primaryKey"`
	FileName      string                   `gorm:"type:varchar(255);not null"`
	StorageKey    string                   `gorm:"type:varchar(255);not null;uniqueIndex"`
	URL           string                   `gorm:"type:varchar(1024);not null"`
	FileSize      int64                    `gorm:"not null"`
	MimeType      string                   `gorm:"type:varchar(100);not null"`
	Status        model.VerificationStatus `gorm:"type:varchar(20);not null;index;default:'pending'"`
	ReviewerNotes string                   `gorm:"type:text"`
	ReviewedAt    *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (VerificationRecord) TableName() string {
	return "aadhaar_verifications"
}

// ToModel converts the record into its wire representation
func (r *VerificationRecord) ToModel() model.Verification {
	return model.Verification{
		ID:            r.ID.String(),
		FileName:      r.FileName,
		URL:           r.URL,
		FileSize:      r.FileSize,
		MimeType:      r.MimeType,
		Status:        r.Status,
		ReviewerNotes: r.ReviewerNotes,
		ReviewedAt:    r.ReviewedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// VerificationStore handles database operations for verification records
type VerificationStore struct {
	db *gorm.DB
}

// NewVerificationStore migrates the schema and returns a store on db
func NewVerificationStore(db *gorm.DB) (*VerificationStore, error) {
	if err := db.AutoMigrate(&VerificationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &VerificationStore{db: db}, nil
}

func (s *VerificationStore) Create(ctx context.Context, rec *VerificationRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

// GetByID returns ErrVerificationNotFound when no record has id
func (s *VerificationStore) GetByID(ctx context.Context, id uuid.UUID) (*VerificationRecord, error) {
	var rec VerificationRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// List returns one page of records, newest first, and the total count.
// An empty status matches every record.
func (s *VerificationStore) List(ctx context.Context, status model.VerificationStatus, offset, limit int) ([]VerificationRecord, int64, error) {
	filtered := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&VerificationRecord{})
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []VerificationRecord
	if err := filtered().Order("created_at DESC").Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// UpdateReview moves a record that is still awaiting review to status.
// It reports false when the record does not exist or was already decided.
func (s *VerificationStore) UpdateReview(ctx context.Context, id uuid.UUID, status model.VerificationStatus, reviewerNotes string) (bool, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&VerificationRecord{}).
		Where("id = ? AND status IN ?", id, []model.VerificationStatus{model.StatusPending, model.StatusProcessing}).
		Updates(map[string]interface{}{
			"status":         status,
			"reviewer_notes": reviewerNotes,
			"reviewed_at":    now,
			"updated_at":     now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
