package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusApproved FileStatus = "approved"
	FileStatusRejected FileStatus = "rejected"
)

func ValidFileStatus(s string) bool {
	switch FileStatus(s) {
	case FileStatusPending, FileStatusApproved, FileStatusRejected:
		return true
	}
	return false
}

type FileType string

const (
	FileTypeText      FileType = "text"      // book body
	FileTypeCover     FileType = "cover"     // cover artwork
	FileTypeDocuments FileType = "documents" // license/identity documents
)

func ValidFileType(s string) bool {
	switch FileType(s) {
	case FileTypeText, FileTypeCover, FileTypeDocuments:
		return true
	}
	return false
}

var ErrEmptyRejectionReason = errors.New("rejection reason must not be empty")

// OrderFile is an uploaded asset attached to an order. Files are never hard
// deleted; removal sets deleted_at and the row drops out of every listing.
type OrderFile struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	OrderID uint      `gorm:"not null;index" json:"order_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	OriginalFilename string   `gorm:"type:varchar(255);not null" json:"original_filename"`
	StoredFilename   string   `gorm:"type:varchar(255);not null" json:"stored_filename"`
	FileType         FileType `gorm:"type:varchar(20);not null;index" json:"file_type"`
	FileSize         int64    `json:"file_size"`
	Version          int      `gorm:"not null;default:1" json:"version"`

	Status          FileStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Order *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

// MarkApproved applies the approve transition unconditionally (last write
// wins) and clears any previous rejection reason.
func (f *OrderFile) MarkApproved(reviewer uuid.UUID, now time.Time) {
	f.Status = FileStatusApproved
	f.RejectionReason = ""
	f.ReviewedBy = &reviewer
	f.ReviewedAt = &now
}

// MarkRejected validates the reason before touching any state.
func (f *OrderFile) MarkRejected(reason string, reviewer uuid.UUID, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrEmptyRejectionReason
	}
	f.Status = FileStatusRejected
	f.RejectionReason = reason
	f.ReviewedBy = &reviewer
	f.ReviewedAt = &now
	return nil
}
