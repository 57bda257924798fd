package kyc

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/domain"
)

// DocumentField is the multipart field carrying the document file.
const DocumentField = "document"

// SubmitForm holds the text fields of a KYC upload. Their content is
// validated by the service.
type SubmitForm struct {
	DocumentType   string `json:"documentType" form:"document_type"`
	DocumentNumber string `json:"documentNumber" form:"document_number"`
}

// ReviewRequest is an admin's decision on a submission.
type ReviewRequest struct {
	Decision Decision `json:"decision" form:"decision" binding:"required,oneof=approve reject"`
	Note     string   `json:"note" form:"note" binding:"max=500"`
}

// errDocumentTooLarge is reported when the request body hit the body limit
// before the document was read.
var errDocumentTooLarge = domain.NewAppError(domain.CodeValidation, "document is too large", nil)

// formUpload opens the uploaded document of the request. A missing file
// yields an empty Upload so the service can report it. The returned close
// function is always safe to call.
func formUpload(c *gin.Context) (Upload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile(DocumentField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return Upload{}, noop, errDocumentTooLarge
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return Upload{}, noop, nil
		default:
			return Upload{}, noop, domain.NewAppError(domain.CodeValidation, "document upload could not be read", err)
		}
	}

	f, err := fh.Open()
	if err != nil {
		return Upload{}, noop, domain.NewAppError(domain.CodeInternal, "open uploaded document", err)
	}
	return newUpload(fh, f), func() { _ = f.Close() }, nil
}

func newUpload(fh *multipart.FileHeader, f multipart.File) Upload {
	return Upload{FileName: fh.Filename, Size: fh.Size, Body: f}
}

// canSubmit reports whether a viewer whose latest submission is sub may
// upload a document.
func canSubmit(sub *domain.KYCSubmission) bool {
	return sub == nil || sub.Status == domain.KYCRejected
}
