package domain

import (
	"context"
	"io"
)

// DocumentType is an identity document accepted for KYC.
type DocumentType string

const (
	DocumentAadhaar        DocumentType = "aadhaar"
	DocumentPAN            DocumentType = "pan"
	DocumentPassport       DocumentType = "passport"
	DocumentDrivingLicense DocumentType = "driving_license"
)

// DocumentTypes lists the accepted document types in display order.
var DocumentTypes = []DocumentType{DocumentAadhaar, DocumentPAN, DocumentPassport, DocumentDrivingLicense}

// Valid reports whether d is one of DocumentTypes.
func (d DocumentType) Valid() bool {
	switch d {
	case DocumentAadhaar, DocumentPAN, DocumentPassport, DocumentDrivingLicense:
		return true
	default:
		return false
	}
}

// KYCStatus is the review state of a submission.
type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCApproved KYCStatus = "approved"
	KYCRejected KYCStatus = "rejected"
)

// KYCSubmission is one identity document submitted for review.
type KYCSubmission struct {
	BaseModel
	UserID         string       `gorm:"size:36;index;not null" json:"userId"`
	DocumentType   DocumentType `gorm:"size:32;not null" json:"documentType"`
	DocumentNumber string       `gorm:"size:64;not null" json:"documentNumber"`
	FileName       string       `gorm:"size:255" json:"fileName"`
	ContentType    string       `gorm:"size:100" json:"contentType"`
	Size           int64        `json:"size"`
	StoragePath    string       `gorm:"size:500" json:"-"`
	Status         KYCStatus    `gorm:"size:20;index;not null" json:"status"`
	ReviewNote     string       `gorm:"size:500" json:"reviewNote,omitempty"`
}

// TableName pins the table name used by the open-submission index.
func (KYCSubmission) TableName() string { return "kyc_submissions" }

// KYCDocument is an uploaded document on its way to storage.
type KYCDocument struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// KYCRepository is the data access interface for KYC submissions.
type KYCRepository interface {
	Submit(ctx context.Context, sub *KYCSubmission, doc KYCDocument) error
	LatestForUser(ctx context.Context, userID string) (*KYCSubmission, error)
	List(ctx context.Context, req PageRequest) (*PageResult[KYCSubmission], error)
	Review(ctx context.Context, id string, status KYCStatus, note string) (*KYCSubmission, error)
}

// DashboardStats are the headline figures of the admin dashboard.
type DashboardStats struct {
	TotalUsers    int64   `json:"totalUsers"`
	TotalProducts int64   `json:"totalProducts"`
	TotalOrders   int64   `json:"totalOrders"`
	PaidOrders    int64   `json:"paidOrders"`
	Revenue       float64 `json:"revenue"`
	PendingKYC    int64   `json:"pendingKyc"`
}

// StatsRepository computes dashboard statistics.
type StatsRepository interface {
	Stats(ctx context.Context) (*DashboardStats, error)
}
