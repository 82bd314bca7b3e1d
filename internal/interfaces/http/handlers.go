package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"equipment-console/internal/application"
	"equipment-console/internal/domain"
	"equipment-console/internal/infrastructure/api"
	"equipment-console/internal/infrastructure/auth"
)

func handleError(c echo.Context, err error) error {
	var apiErr *domain.APIError
	switch {
	case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrNotAuthenticated):
		return c.JSON(stdhttp.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrPermissionDeny):
		return c.JSON(stdhttp.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(stdhttp.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrTransport):
		return c.JSON(stdhttp.StatusBadGateway, map[string]string{"error": "equipment api unreachable"})
	case errors.As(err, &apiErr):
		return c.JSON(stdhttp.StatusBadGateway, map[string]string{"error": apiErr.Message})
	default:
		return c.JSON(stdhttp.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s: %w", name, domain.ErrInvalidInput)
	}
	return id, nil
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (domain.AuthResult, error)
	Register(ctx context.Context, reg api.Registration) (domain.AuthResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (domain.User, error)
}

type TokenSource interface {
	Token() string
}

type SessionHandler struct {
	auth  Authenticator
	token TokenSource
	now   func() time.Time
}

func NewSessionHandler(a Authenticator, token TokenSource) *SessionHandler {
	return &SessionHandler{auth: a, token: token, now: time.Now}
}

func (h *SessionHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, sessionResponse(result))
}

func (h *SessionHandler) Register(c echo.Context) error {
	var req api.Registration
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if req.Password != req.PasswordConfirmation {
		return handleError(c, fmt.Errorf("password confirmation does not match: %w", domain.ErrInvalidInput))
	}
	result, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusCreated, sessionResponse(result))
}

// Logout always ends the local session; a failed server call is reported
// but does not change the outcome.
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context()); err != nil && !errors.Is(err, domain.ErrSessionExpired) {
		return c.JSON(stdhttp.StatusOK, map[string]string{"warning": err.Error()})
	}
	return c.NoContent(stdhttp.StatusNoContent)
}

func (h *SessionHandler) Status(c echo.Context) error {
	info := auth.Inspect(h.token.Token(), h.now())
	if !info.Present {
		return c.JSON(stdhttp.StatusOK, map[string]any{"authenticated": false})
	}
	user, err := h.auth.CurrentUser(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]any{
		"authenticated": true,
		"token":         info,
		"user":          user,
		"permissions":   user.PermissionNames(),
	})
}

// sessionResponse never echoes the token back to the caller.
func sessionResponse(r domain.AuthResult) map[string]any {
	return map[string]any{
		"user":        r.User,
		"permissions": r.Permissions,
		"roles":       r.Roles,
		"message":     r.Message,
	}
}

type DashboardReader interface {
	Stats(ctx context.Context) (application.DashboardStats, error)
}

type DashboardHandler struct{ service DashboardReader }

func NewDashboardHandler(service DashboardReader) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Get(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, stats)
}

type PermissionsHandler struct {
	editor *application.PermissionEditor
}

func NewPermissionsHandler(editor *application.PermissionEditor) *PermissionsHandler {
	return &PermissionsHandler{editor: editor}
}

func (h *PermissionsHandler) Catalog(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, h.editor.Catalog().Grouped())
}

func (h *PermissionsHandler) Users(c echo.Context) error {
	users, err := h.editor.Load(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, users)
}

// Update replaces the user's selection and reconciles it. Failed calls are
// reported alongside the partial result.
func (h *PermissionsHandler) Update(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	var req struct {
		PermissionIDs []int `json:"permission_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := h.editor.SetSelection(c.Request().Context(), userID, req.PermissionIDs); err != nil {
		return handleError(c, err)
	}
	result, err := h.editor.Save(c.Request().Context(), userID)
	if err != nil {
		if len(result.Failures) == 0 {
			return handleError(c, err)
		}
		status := stdhttp.StatusMultiStatus
		if errors.Is(err, domain.ErrSessionExpired) {
			status = stdhttp.StatusUnauthorized
		}
		return c.JSON(status, map[string]any{"error": err.Error(), "result": result})
	}
	return c.JSON(stdhttp.StatusOK, result)
}

type DocumentReader interface {
	Get(ctx context.Context, id int64) (domain.Document, error)
	Download(ctx context.Context, id int64) (domain.DocumentFile, error)
}

type DocumentsHandler struct {
	documents DocumentReader
	window    time.Duration
	now       func() time.Time
}

func NewDocumentsHandler(documents DocumentReader, window time.Duration) *DocumentsHandler {
	if window <= 0 {
		window = domain.ExpiryWarningWindow
	}
	return &DocumentsHandler{documents: documents, window: window, now: time.Now}
}

func (h *DocumentsHandler) Download(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	file, err := h.documents.Download(c.Request().Context(), id)
	if err != nil {
		return handleError(c, err)
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	if file.FileName != "" {
		disposition := "attachment"
		if c.QueryParam("inline") == "true" {
			disposition = "inline"
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", disposition, file.FileName))
	}
	return c.Blob(stdhttp.StatusOK, contentType, file.Content)
}

func (h *DocumentsHandler) Validity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	doc, err := h.documents.Get(c.Request().Context(), id)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]any{
		"document_id":   doc.ID,
		"document_type": doc.DocumentTypeName(),
		"expiry_date":   doc.ExpiryDate,
		"validity":      domain.ClassifyExpiry(doc.ExpiryDate, h.now(), h.window),
	})
}
