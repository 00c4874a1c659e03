// Package model holds the Aadhaar wire types shared by the server and the
// upload client.
package model

import (
	"time"
)

// VerificationStatus is the lifecycle state of an uploaded document.
type VerificationStatus string

const (
	StatusPending    VerificationStatus = "pending"
	StatusProcessing VerificationStatus = "processing"
	StatusVerified   VerificationStatus = "verified"
	StatusRejected   VerificationStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s VerificationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusVerified, StatusRejected:
		return true
	}
	return false
}

// Final reports whether no further review can change s.
func (s VerificationStatus) Final() bool {
	return s == StatusVerified || s == StatusRejected
}

// UploadField is the multipart field carrying the document.
const UploadField = "file"

// UploadData describes a stored document as returned by the upload endpoint.
type UploadData struct {
	ID       string             `json:"id,omitempty"`
	FileName string             `json:"fileName"`
	URL      string             `json:"url"`
	FileSize string             `json:"fileSize"`
	Status   VerificationStatus `json:"status"`
	Message  string             `json:"message,omitempty"`
}

// UploadResponse is the body of POST /aadhaar/upload.
type UploadResponse struct {
	Success bool        `json:"success"`
	Data    *UploadData `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Verification is the public view of a verification record.
type Verification struct {
	ID            string             `json:"id"`
	FileName      string             `json:"fileName"`
	URL           string             `json:"url"`
	FileSize      int64              `json:"fileSize"`
	MimeType      string             `json:"mimeType"`
	Status        VerificationStatus `json:"status"`
	ReviewerNotes string             `json:"reviewerNotes,omitempty"`
	ReviewedAt    *time.Time         `json:"reviewedAt,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// VerificationResponse wraps a single verification.
type VerificationResponse struct {
	Success bool          `json:"success"`
	Data    *Verification `json:"data,omitempty"`
	Message string        `json:"message,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

// VerificationList is the body of GET /aadhaar/verifications.
type VerificationList struct {
	Data       []Verification `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// Decision is a reviewer's verdict.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ReviewRequest is the body of POST /aadhaar/verifications/{id}/review.
type ReviewRequest struct {
	Decision      Decision `json:"decision" binding:"required,oneof=approve reject"`
	ReviewerNotes string   `json:"reviewerNotes"`
}

// ErrorResponse is what the server sends for any failed request.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}
