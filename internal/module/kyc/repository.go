package kyc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/pkg"
)

var (
	allowedSortFields   = []string{"created_at", "status"}
	allowedFilterFields = []string{FilterStatus}
)

// kycRepository implements domain.KYCRepository with GORM rows and document
// files under uploadDir.
type kycRepository struct {
	db        *gorm.DB
	uploadDir string
}

// NewKYCRepository creates a KYCRepository backed by the local database.
// Documents are written to uploadDir, which is created on first use.
func NewKYCRepository(db *gorm.DB, uploadDir string) domain.KYCRepository {
	return &kycRepository{db: db, uploadDir: uploadDir}
}

// Submit writes the document under a random name and records the
// submission. The file is removed again when the row cannot be inserted.
// A second pending or approved submission for the same user violates the
// open-submission index and is reported as AlreadyExists.
func (r *kycRepository) Submit(ctx context.Context, sub *domain.KYCSubmission, doc domain.KYCDocument) error {
	path, written, err := r.store(doc)
	if err != nil {
		return err
	}

	sub.FileName = filepath.Base(doc.FileName)
	sub.ContentType = doc.ContentType
	sub.Size = written
	sub.StoragePath = path
	if sub.Status == "" {
		sub.Status = domain.KYCPending
	}

	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			slog.WarnContext(ctx, "remove orphaned kyc document",
				slog.String("path", path),
				slog.String("error", rmErr.Error()),
			)
		}
		if err = pkg.MapDBError(err); domain.IsAlreadyExists(err) {
			return domain.NewAppError(domain.CodeAlreadyExists, "a submission is already under review or approved", err)
		}
		return err
	}
	return nil
}

func (r *kycRepository) store(doc domain.KYCDocument) (string, int64, error) {
	if err := os.MkdirAll(r.uploadDir, 0o750); err != nil {
		return "", 0, domain.NewAppError(domain.CodeInternal, "create upload directory", err)
	}

	ext := ""
	if mt := mimetype.Lookup(doc.ContentType); mt != nil {
		ext = mt.Extension()
	}
	path := filepath.Join(r.uploadDir, uuid.NewString()+ext)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", 0, domain.NewAppError(domain.CodeInternal, "create document file", err)
	}
	written, copyErr := io.Copy(f, doc.Body)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return "", 0, domain.NewAppError(domain.CodeInternal, "write document file", err)
	}
	return path, written, nil
}

func (r *kycRepository) LatestForUser(ctx context.Context, userID string) (*domain.KYCSubmission, error) {
	var sub domain.KYCSubmission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &sub, nil
}

func (r *kycRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.KYCSubmission], error) {
	base := r.db.WithContext(ctx).Model(&domain.KYCSubmission{}).
		Scopes(pkg.Filter(req, allowedFilterFields))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	var subs []domain.KYCSubmission
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields),
	).Find(&subs).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return pkg.NewPageResult(subs, total, req), nil
}

// Review moves a pending submission to status. A submission that was
// already decided is left untouched.
func (r *kycRepository) Review(ctx context.Context, id string, status domain.KYCStatus, note string) (*domain.KYCSubmission, error) {
	var sub domain.KYCSubmission
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		res := tx.Model(&domain.KYCSubmission{}).
			Where("id = ? AND status = ?", id, domain.KYCPending).
			Updates(map[string]any{
				"status":      status,
				"review_note": note,
			})
		if res.Error != nil {
			return pkg.MapDBError(res.Error)
		}
		if err := tx.Where("id = ?", id).First(&sub).Error; err != nil {
			return pkg.MapDBError(err)
		}
		if res.RowsAffected == 0 {
			return domain.NewAppError(domain.CodeValidation, "submission has already been reviewed", nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
