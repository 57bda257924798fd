package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/simp-lee/rentfront/internal/domain"
)

type submissionResponse struct {
	Submission domain.KYCSubmission `json:"submission"`
}

type submissionListResponse struct {
	Submissions      []domain.KYCSubmission `json:"submissions"`
	TotalPages       int                    `json:"totalPages"`
	TotalSubmissions int64                  `json:"totalSubmissions"`
}

type reviewRequest struct {
	Status domain.KYCStatus `json:"status"`
	Note   string           `json:"note,omitempty"`
}

type kycRepository struct {
	client *Client
}

// NewKYCRepository returns a domain.KYCRepository served by the backend.
func NewKYCRepository(c *Client) domain.KYCRepository {
	return &kycRepository{client: c}
}

// Submit uploads the document as multipart/form-data with the fields
// documentType, documentNumber and document. sub is replaced with the
// backend's record.
func (r *kycRepository) Submit(ctx context.Context, sub *domain.KYCSubmission, doc domain.KYCDocument) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := writeSubmission(mw, sub, doc); err != nil {
		return domain.NewAppError(domain.CodeInternal, "encode kyc upload", err)
	}

	var resp submissionResponse
	if err := r.client.sendRaw(ctx, "POST /kyc", http.MethodPost, "/kyc", &buf, mw.FormDataContentType(), &resp); err != nil {
		return err
	}
	*sub = resp.Submission
	return nil
}

func writeSubmission(mw *multipart.Writer, sub *domain.KYCSubmission, doc domain.KYCDocument) error {
	if err := mw.WriteField("documentType", string(sub.DocumentType)); err != nil {
		return err
	}
	if err := mw.WriteField("documentNumber", sub.DocumentNumber); err != nil {
		return err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="document"; filename=%q`, doc.FileName))
	h.Set("Content-Type", doc.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, doc.Body); err != nil {
		return err
	}
	return mw.Close()
}

func (r *kycRepository) LatestForUser(ctx context.Context, _ string) (*domain.KYCSubmission, error) {
	var resp submissionResponse
	if err := r.client.get(ctx, "GET /kyc/me", "/kyc/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Submission, nil
}

func (r *kycRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.KYCSubmission], error) {
	q := pageQuery(req)
	if status := req.Filter["status"]; status != "" {
		q.Set("status", status)
	}
	var resp submissionListResponse
	if err := r.client.get(ctx, "GET /admin/kyc", "/admin/kyc", q, &resp); err != nil {
		return nil, err
	}
	return pageResult(resp.Submissions, resp.TotalSubmissions, resp.TotalPages, req), nil
}

func (r *kycRepository) Review(ctx context.Context, id string, status domain.KYCStatus, note string) (*domain.KYCSubmission, error) {
	var resp submissionResponse
	path := "/admin/kyc/" + url.PathEscape(id)
	if err := r.client.send(ctx, "PATCH /admin/kyc/{id}", http.MethodPatch, path, reviewRequest{Status: status, Note: note}, &resp); err != nil {
		return nil, err
	}
	return &resp.Submission, nil
}
