package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"equipment-console/internal/domain"
	"equipment-console/internal/infrastructure/session"
	"equipment-console/internal/ports"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000/api"
	DefaultTimeout = 30 * time.Second

	headerRequestID = "X-Request-ID"
	contentJSON     = "application/json"
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is the single gateway to the remote equipment API. It reads the
// bearer credential from its session on every request.
type Client struct {
	rest    *resty.Client
	session *session.Session
	logger  ports.Logger

	Domains        *Domains
	Families       *Families
	EquipmentTypes *EquipmentTypes
	Brands         *Brands
	DocumentTypes  *DocumentTypes
	Products       *Products
	Documents      *Documents
	Inventories    *Inventories
	Users          *Users
}

func New(cfg Config, sess *session.Session, logger ports.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if sess == nil {
		sess = session.New(nil)
	}

	var rest *resty.Client
	if cfg.HTTPClient != nil {
		rest = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rest = resty.New()
	}
	rest.
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", contentJSON)

	c := &Client{rest: rest, session: sess, logger: logger}
	rest.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if token := c.session.Token(); token != "" {
			r.SetAuthToken(token)
		}
		if r.Header.Get(headerRequestID) == "" {
			r.SetHeader(headerRequestID, uuid.NewString())
		}
		return nil
	})

	c.Domains = &Domains{newResource[domain.Domain, domain.DomainCreate, domain.DomainUpdate](c, "/domains")}
	c.Families = &Families{newResource[domain.Family, domain.FamilyCreate, domain.FamilyUpdate](c, "/families")}
	c.EquipmentTypes = &EquipmentTypes{newResource[domain.EquipmentType, domain.EquipmentTypeCreate, domain.EquipmentTypeUpdate](c, "/equipment-types")}
	c.Brands = &Brands{newResource[domain.Brand, domain.BrandCreate, domain.BrandUpdate](c, "/brands")}
	c.DocumentTypes = &DocumentTypes{newResource[domain.DocumentType, domain.DocumentTypeCreate, domain.DocumentTypeUpdate](c, "/document-types")}
	c.Products = &Products{newResource[domain.Product, domain.ProductCreate, domain.ProductUpdate](c, "/products")}
	c.Documents = &Documents{c: c, path: "/documents"}
	c.Inventories = &Inventories{newResource[domain.Inventory, domain.InventoryCreate, domain.InventoryUpdate](c, "/inventories")}
	c.Users = &Users{newResource[domain.User, domain.UserCreate, domain.UserUpdate](c, "/users")}
	return c
}

// request starts a request bound to ctx. Callers add a body or form data.
func (c *Client) request(ctx context.Context) *resty.Request {
	return c.rest.R().SetContext(ctx)
}

// jsonRequest marks the request as carrying a JSON body.
func (c *Client) jsonRequest(ctx context.Context, body any) *resty.Request {
	r := c.request(ctx).SetHeader("Content-Type", contentJSON)
	if body != nil {
		r.SetBody(body)
	}
	return r
}

// send executes r and returns the raw body of a 2xx response. Any 401 clears
// the session before the error is returned.
func (c *Client) send(ctx context.Context, r *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := r.Execute(method, path)
	if err != nil {
		c.logger.Warn(ctx, "api request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrTransport, method, path, err)
	}
	c.logger.Debug(ctx, "api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode(),
		"duration_ms", resp.Time().Milliseconds(),
		"request_id", r.Header.Get(headerRequestID),
	)
	if resp.IsSuccess() {
		return resp, nil
	}
	return nil, c.check(ctx, resp, method, path)
}

func (c *Client) check(ctx context.Context, resp *resty.Response, method, path string) error {
	status := resp.StatusCode()
	if status == http.StatusUnauthorized {
		// Only the credential the request was sent with is dropped. A login
		// that completed while the request was in flight survives.
		cleared, err := c.session.ClearIf(ctx, resp.Request.Token)
		if err != nil {
			c.logger.Error(ctx, "failed to drop stored credential", "error", err)
		}
		c.logger.Warn(ctx, "session expired", "method", method, "path", path, "cleared", cleared)
		return &domain.APIError{Status: status}
	}
	msg := serverMessage(resp.Body())
	if msg == "" {
		msg = statusLine(resp)
	}
	c.logger.Warn(ctx, "api request rejected", "method", method, "path", path, "status", status, "message", msg)
	return &domain.APIError{Status: status, Message: msg}
}

func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

// statusLine renders "<code> <text>" from the response status.
func statusLine(resp *resty.Response) string {
	if s := strings.TrimSpace(resp.Status()); s != "" {
		return s
	}
	code := resp.StatusCode()
	return strings.TrimSpace(fmt.Sprintf("%d %s", code, http.StatusText(code)))
}

// IsSessionExpired reports whether err came from a 401 response.
func IsSessionExpired(err error) bool {
	return errors.Is(err, domain.ErrSessionExpired)
}
