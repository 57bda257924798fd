package kyc

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/pkg"
)

// Statuses lists the review states offered as admin list filters.
var Statuses = []domain.KYCStatus{domain.KYCPending, domain.KYCApproved, domain.KYCRejected}

// KYCPageHandler serves the customer KYC page and the admin review queue.
type KYCPageHandler struct {
	svc         Service
	maxUploadMB int
}

// NewPageHandler creates a new KYCPageHandler.
func NewPageHandler(svc Service, maxUploadMB int) *KYCPageHandler {
	return &KYCPageHandler{svc: svc, maxUploadMB: maxUploadMB}
}

// StatusPage handles GET /kyc.
func (h *KYCPageHandler) StatusPage(c *gin.Context) {
	sub, err := h.svc.Status(c.Request.Context())
	if err != nil {
		pkg.PageError(c, err)
		return
	}
	notice := ""
	if c.Query("status") == "submitted" {
		notice = "Your documents were submitted for review."
	}
	h.render(c, http.StatusOK, sub, SubmitForm{}, notice, "")
}

// Submit handles POST /kyc. Rejected input re-renders the form with the
// reason.
func (h *KYCPageHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	upload, closeUpload, err := formUpload(c)
	defer closeUpload()
	if errors.Is(err, errDocumentTooLarge) {
		pkg.RenderError(c, http.StatusRequestEntityTooLarge, "The document is too large.")
		return
	}
	if err != nil {
		pkg.PageError(c, err)
		return
	}
	var form SubmitForm
	if err := c.ShouldBind(&form); err != nil {
		pkg.RenderError(c, http.StatusBadRequest, "The upload form is incomplete.")
		return
	}

	_, err = h.svc.Submit(ctx, domain.DocumentType(form.DocumentType), form.DocumentNumber, upload)
	if err == nil {
		c.Redirect(http.StatusSeeOther, "/kyc?status=submitted")
		return
	}
	if !domain.IsValidation(err) && !domain.IsAlreadyExists(err) {
		pkg.PageError(c, err)
		return
	}

	latest, statusErr := h.svc.Status(ctx)
	if statusErr != nil {
		pkg.PageError(c, statusErr)
		return
	}
	h.render(c, domain.HTTPStatusCode(err), latest, form, "", pkg.UserMessage(err))
}

func (h *KYCPageHandler) render(c *gin.Context, status int, sub *domain.KYCSubmission, form SubmitForm, notice, errMsg string) {
	c.HTML(status, "kyc/index.html", pkg.View(c, gin.H{
		"Title":         "Identity verification",
		"Submission":    sub,
		"CanSubmit":     canSubmit(sub),
		"DocumentTypes": domain.DocumentTypes,
		"MaxUploadMB":   h.maxUploadMB,
		"Form":          form,
		"Notice":        notice,
		"Error":         errMsg,
	}))
}

// AdminListPage handles GET /admin/kyc.
func (h *KYCPageHandler) AdminListPage(c *gin.Context) {
	ctx := c.Request.Context()
	req := pkg.ParsePageRequest(c)

	result, err := h.svc.List(ctx, req)
	if err != nil {
		pkg.PageError(c, err)
		return
	}
	if clamped := pkg.ClampPage(req.Page, result.TotalPages); clamped != req.Page {
		req.Page = clamped
		if result, err = h.svc.List(ctx, req); err != nil {
			pkg.PageError(c, err)
			return
		}
	}

	c.HTML(http.StatusOK, "admin/kyc.html", pkg.View(c, gin.H{
		"Title":       "KYC review",
		"Submissions": result.Items,
		"Pagination":  pkg.NewPageView(result, "/admin/kyc", c.Request.URL.Query()),
		"Status":      c.Query(FilterStatus),
		"Statuses":    Statuses,
	}))
}

// Review handles POST /admin/kyc/:id/review and returns to the list the
// admin came from.
func (h *KYCPageHandler) Review(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		pkg.RenderError(c, http.StatusBadRequest, "Choose approve or reject.")
		return
	}
	if _, err := h.svc.Review(c.Request.Context(), c.Param("id"), req.Decision, req.Note); err != nil {
		pkg.PageError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, reviewReturn(c.PostForm("return")))
}

func reviewReturn(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path != "/admin/kyc" {
		return "/admin/kyc"
	}
	return u.RequestURI()
}
