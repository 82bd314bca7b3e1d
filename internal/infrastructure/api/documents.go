package api

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"equipment-console/internal/domain"
)

// Documents carry a binary attachment, so create and update go out as
// multipart forms instead of JSON.
type Documents struct {
	c    *Client
	path string
}

func (d *Documents) item(id int64) string { return fmt.Sprintf("%s/%d", d.path, id) }

// List includes the products each document is attached to.
func (d *Documents) List(ctx context.Context) (domain.Collection[domain.Document], error) {
	return getCollection[domain.Document](ctx, d.c, d.path, map[string]string{"with": "products"})
}

func (d *Documents) Get(ctx context.Context, id int64) (domain.Document, error) {
	return getEntity[domain.Document](ctx, d.c, d.item(id))
}

// Create requires a file.
func (d *Documents) Create(ctx context.Context, upload domain.DocumentUpload) (domain.Document, error) {
	if upload.File == nil || upload.File.Content == nil {
		return domain.Document{}, fmt.Errorf("document file: %w", domain.ErrInvalidInput)
	}
	req := d.multipart(ctx, upload)
	return d.sendMultipart(ctx, req, d.path)
}

// Update posts the form with a method override. A nil File keeps the stored
// file: no file part is sent at all.
func (d *Documents) Update(ctx context.Context, id int64, upload domain.DocumentUpload) (domain.Document, error) {
	req := d.multipart(ctx, upload).SetMultipartFormData(map[string]string{"_method": http.MethodPut})
	return d.sendMultipart(ctx, req, d.item(id))
}

func (d *Documents) Delete(ctx context.Context, id int64) error {
	return sendAction(ctx, d.c, http.MethodDelete, d.item(id), nil)
}

// Archive toggles the archived flag server-side.
func (d *Documents) Archive(ctx context.Context, id int64) (domain.Document, error) {
	return sendEntity[domain.Document](ctx, d.c, http.MethodPatch, d.item(id)+"/archive", nil)
}

// Download returns the raw file bytes.
func (d *Documents) Download(ctx context.Context, id int64) (domain.DocumentFile, error) {
	req := d.c.request(ctx).SetHeader("Accept", "*/*")
	resp, err := d.c.send(ctx, req, http.MethodGet, d.item(id)+"/download")
	if err != nil {
		return domain.DocumentFile{}, err
	}
	file := domain.DocumentFile{
		ContentType: resp.Header().Get("Content-Type"),
		Content:     resp.Body(),
	}
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil {
		file.FileName = params["filename"]
	}
	return file, nil
}

func (d *Documents) multipart(ctx context.Context, upload domain.DocumentUpload) *resty.Request {
	form := url.Values{}
	form.Set("name", upload.Name)
	form.Set("document_type_id", strconv.FormatInt(upload.DocumentTypeID, 10))
	form.Set("reference", upload.Reference)
	form.Set("version", upload.Version)
	form.Set("issue_date", upload.IssueDate.String())
	if upload.ExpiryDate != nil && !upload.ExpiryDate.IsZero() {
		form.Set("expiry_date", upload.ExpiryDate.String())
	}
	for _, id := range upload.ProductIDs {
		form.Add("product_ids[]", strconv.FormatInt(id, 10))
	}

	req := d.c.request(ctx).SetFormDataFromValues(form)
	if upload.File != nil && upload.File.Content != nil {
		name := strings.TrimSpace(upload.File.Name)
		if name == "" {
			name = "document"
		}
		req.SetFileReader("file", name, upload.File.Content)
	}
	return req
}

func (d *Documents) sendMultipart(ctx context.Context, req *resty.Request, path string) (domain.Document, error) {
	resp, err := d.c.send(ctx, req, http.MethodPost, path)
	if err != nil {
		return domain.Document{}, err
	}
	return decodeEntity[domain.Document](resp.Body())
}
