package kyc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/metrics"
	"github.com/simp-lee/rentfront/internal/session"
)

// FilterStatus is the list filter on a submission's review status.
const FilterStatus = "status"

// maxDocumentNumber matches the column size of KYCSubmission.DocumentNumber.
const maxDocumentNumber = 64

const maxReviewNote = 500

// allowedContentTypes are the sniffed types accepted as identity documents.
var allowedContentTypes = []string{"image/jpeg", "image/png", "application/pdf"}

// Upload is a document file received from the browser. Body must be
// rewindable so its content can be sniffed before it is stored.
type Upload struct {
	FileName string
	Size     int64
	Body     io.ReadSeeker
}

// Decision is an admin's verdict on a pending submission.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) status() (domain.KYCStatus, bool) {
	switch d {
	case DecisionApprove:
		return domain.KYCApproved, true
	case DecisionReject:
		return domain.KYCRejected, true
	default:
		return "", false
	}
}

// Service defines the KYC operations.
type Service interface {
	// Status returns the viewer's latest submission, or nil when there is none.
	Status(ctx context.Context) (*domain.KYCSubmission, error)
	Submit(ctx context.Context, docType domain.DocumentType, number string, upload Upload) (*domain.KYCSubmission, error)
	List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.KYCSubmission], error)
	Review(ctx context.Context, id string, decision Decision, note string) (*domain.KYCSubmission, error)
}

type kycService struct {
	repo      domain.KYCRepository
	maxBytes  int64
	collector *metrics.Collector
}

// NewService creates a KYC Service accepting documents up to maxUploadMB
// megabytes. collector may be nil.
func NewService(repo domain.KYCRepository, maxUploadMB int, collector *metrics.Collector) Service {
	return &kycService{
		repo:      repo,
		maxBytes:  int64(maxUploadMB) << 20,
		collector: collector,
	}
}

func (s *kycService) Status(ctx context.Context) (*domain.KYCSubmission, error) {
	sess := session.FromContext(ctx)
	if !sess.LoggedIn() {
		return nil, domain.ErrUnauthorized
	}
	sub, err := s.repo.LatestForUser(ctx, sess.UserID())
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// Submit validates the document and stores it for review. A viewer with a
// pending or approved submission cannot submit again.
func (s *kycService) Submit(ctx context.Context, docType domain.DocumentType, number string, upload Upload) (*domain.KYCSubmission, error) {
	sess := session.FromContext(ctx)
	if !sess.LoggedIn() {
		return nil, domain.ErrUnauthorized
	}

	if !docType.Valid() {
		return nil, domain.NewAppError(domain.CodeValidation, "unsupported document type", nil)
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "document number is required", nil)
	}
	if len(number) > maxDocumentNumber {
		return nil, domain.NewAppError(domain.CodeValidation,
			fmt.Sprintf("document number must be at most %d characters", maxDocumentNumber), nil)
	}
	if upload.Body == nil || upload.Size <= 0 {
		return nil, domain.NewAppError(domain.CodeValidation, "document file is required", nil)
	}
	if upload.Size > s.maxBytes {
		return nil, domain.NewAppError(domain.CodeValidation,
			fmt.Sprintf("document must be at most %d MB", s.maxBytes>>20), nil)
	}

	contentType, err := sniff(upload.Body)
	if err != nil {
		return nil, err
	}

	latest, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		switch latest.Status {
		case domain.KYCPending:
			return nil, domain.NewAppError(domain.CodeAlreadyExists, "your documents are already under review", nil)
		case domain.KYCApproved:
			return nil, domain.NewAppError(domain.CodeAlreadyExists, "your identity is already verified", nil)
		case domain.KYCRejected:
		}
	}

	sub := &domain.KYCSubmission{
		UserID:         sess.UserID(),
		DocumentType:   docType,
		DocumentNumber: number,
		Status:         domain.KYCPending,
	}
	doc := domain.KYCDocument{
		FileName:    upload.FileName,
		ContentType: contentType,
		Size:        upload.Size,
		Body:        upload.Body,
	}
	if err := s.repo.Submit(ctx, sub, doc); err != nil {
		return nil, err
	}

	s.collector.RecordKYCSubmission()
	slog.InfoContext(ctx, "kyc submitted",
		slog.String("submission_id", sub.ID),
		slog.String("document_type", string(docType)),
	)
	return sub, nil
}

// sniff detects the document's type from its content and rewinds it.
func sniff(body io.ReadSeeker) (string, error) {
	mt, err := mimetype.DetectReader(body)
	if err != nil {
		return "", domain.NewAppError(domain.CodeValidation, "document could not be read", err)
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "rewind document", err)
	}
	for _, allowed := range allowedContentTypes {
		if mt.Is(allowed) {
			return allowed, nil
		}
	}
	return "", domain.NewAppError(domain.CodeValidation, "document must be a JPEG, PNG or PDF file", nil)
}

func (s *kycService) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.KYCSubmission], error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	status := domain.KYCStatus(strings.TrimSpace(req.Filter[FilterStatus]))
	req.Filter = nil
	if validStatus(status) {
		req.Filter = map[string]string{FilterStatus: string(status)}
	}
	if req.Sort == "" {
		req.Sort = "created_at:desc"
	}
	return s.repo.List(ctx, req)
}

// Review records an admin decision. Rejections must carry a note for the
// customer.
func (s *kycService) Review(ctx context.Context, id string, decision Decision, note string) (*domain.KYCSubmission, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	status, ok := decision.status()
	if !ok {
		return nil, domain.NewAppError(domain.CodeValidation, "decision must be approve or reject", nil)
	}
	note = strings.TrimSpace(note)
	if status == domain.KYCRejected && note == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "a note is required when rejecting", nil)
	}
	if len(note) > maxReviewNote {
		return nil, domain.NewAppError(domain.CodeValidation,
			fmt.Sprintf("note must be at most %d characters", maxReviewNote), nil)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errSubmissionNotFound
	}

	sub, err := s.repo.Review(ctx, id, status, note)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, errSubmissionNotFound
		}
		return nil, err
	}

	s.collector.RecordKYCReview(string(status))
	slog.InfoContext(ctx, "kyc reviewed",
		slog.String("submission_id", sub.ID),
		slog.String("status", string(status)),
		slog.String("reviewer_id", session.FromContext(ctx).UserID()),
	)
	return sub, nil
}

func requireAdmin(ctx context.Context) error {
	sess := session.FromContext(ctx)
	if !sess.LoggedIn() {
		return domain.ErrUnauthorized
	}
	if !sess.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func validStatus(s domain.KYCStatus) bool {
	return s == domain.KYCPending || s == domain.KYCApproved || s == domain.KYCRejected
}

var errSubmissionNotFound = domain.NewAppError(domain.CodeNotFound, "submission not found", nil)
