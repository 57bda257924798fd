package kyc

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/pkg"
)

// KYCHandler handles REST API requests for KYC submissions.
type KYCHandler struct {
	svc Service
}

// NewKYCHandler creates a new KYCHandler with the given service.
func NewKYCHandler(svc Service) *KYCHandler {
	return &KYCHandler{svc: svc}
}

// Status handles GET /api/v1/kyc. Data is null before the first submission.
func (h *KYCHandler) Status(c *gin.Context) {
	sub, err := h.svc.Status(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, sub)
}

// Submit handles POST /api/v1/kyc (multipart/form-data).
func (h *KYCHandler) Submit(c *gin.Context) {
	upload, closeUpload, err := formUpload(c)
	defer closeUpload()
	if errors.Is(err, errDocumentTooLarge) {
		pkg.RenderError(c, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var form SubmitForm
	if !pkg.BindAndValidate(c, &form) {
		return
	}

	sub, err := h.svc.Submit(c.Request.Context(), domain.DocumentType(form.DocumentType), form.DocumentNumber, upload)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, sub)
}

// List handles GET /api/v1/admin/kyc.
func (h *KYCHandler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context(), pkg.ParsePageRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Review handles PATCH /api/v1/admin/kyc/:id.
func (h *KYCHandler) Review(c *gin.Context) {
	var req ReviewRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	sub, err := h.svc.Review(c.Request.Context(), c.Param("id"), req.Decision, req.Note)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, sub)
}
