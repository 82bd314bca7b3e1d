package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-console/internal/adapters/logger"
	"equipment-console/internal/domain"
	"equipment-console/internal/infrastructure/session"
)

type testEnv struct {
	client *Client
	sess   *session.Session
	store  *session.MemoryStore
}

func newTestEnv(t *testing.T, routes func(g *echo.Group)) testEnv {
	t.Helper()
	e := echo.New()
	routes(e.Group("/api"))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return newEnvForURL(t, srv.URL+"/api")
}

func newEnvForURL(t *testing.T, baseURL string) testEnv {
	t.Helper()
	store := session.NewMemoryStore()
	sess := session.New(store)
	require.NoError(t, sess.Set(context.Background(), "token-1"))
	log := logger.NewWithWriter(io.Discard, slog.LevelDebug)
	client := New(Config{BaseURL: baseURL, Timeout: 5 * time.Second}, sess, log)
	return testEnv{client: client, sess: sess, store: store}
}

func TestClient_SendsStandardHeaders(t *testing.T) {
	env := newTestEnv(t, func(g *echo.Group) {
		g.GET("/domains", func(c echo.Context) error {
			h := c.Request().Header
			if h.Get("Accept") != "application/json" ||
				h.Get("Content-Type") != "application/json" ||
				h.Get("Authorization") != "Bearer token-1" ||
				h.Get("X-Request-ID") == "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"message": "missing headers"})
			}
			return c.JSONBlob(http.StatusOK, []byte(`{"success":true,"data":[{"id":1,"name":"Electrique"},{"id":2,"name":"Hydraulique"}]}`))
		})
	})

	got, err := env.client.Domains.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Hydraulique", got.Items[1].Name)
	assert.Nil(t, got.Page)
}

func TestClient_AuthorizationFollowsLatestSessionState(t *testing.T) {
	var lastAuth atomic.Value
	env := newTestEnv(t, func(g *echo.Group) {
		g.GET("/brands", func(c echo.Context) error {
			lastAuth.Store(c.Request().Header.Get("Authorization"))
			return c.JSONBlob(http.StatusOK, []byte(`{"data":[]}`))
		})
	})
	ctx := context.Background()

	_, err := env.client.Brands.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-1", lastAuth.Load())

	require.NoError(t, env.client.ClearToken(ctx))
	_, err = env.client.Brands.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", lastAuth.Load())

	require.NoError(t, env.client.SetToken(ctx, "token-2"))
	_, err = env.client.Brands.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-2", lastAuth.Load())
}

func TestClient_UnauthorizedExpiresSessionOnEveryOperation(t *testing.T) {
	upload := domain.DocumentUpload{
		Name:      "Notice",
		IssueDate: domain.NewDate(2024, time.January, 2),
		File:      &domain.FileAttachment{Name: "notice.pdf", Content: strings.NewReader("pdf")},
	}
	ops := map[string]func(ctx context.Context, c *Client) error{
		"domains list":   func(ctx context.Context, c *Client) error { _, err := c.Domains.List(ctx); return err },
		"domains get":    func(ctx context.Context, c *Client) error { _, err := c.Domains.Get(ctx, 1); return err },
		"domains create": func(ctx context.Context, c *Client) error { _, err := c.Domains.Create(ctx, domain.DomainCreate{Name: "x"}); return err },
		"domains update": func(ctx context.Context, c *Client) error {
			name := "y"
			_, err := c.Domains.Update(ctx, 1, domain.DomainUpdate{Name: &name})
			return err
		},
		"domains delete":          func(ctx context.Context, c *Client) error { return c.Domains.Delete(ctx, 1) },
		"families by domain":      func(ctx context.Context, c *Client) error { _, err := c.Domains.Families(ctx, 1); return err },
		"families list":           func(ctx context.Context, c *Client) error { _, err := c.Families.List(ctx); return err },
		"equipment types get":     func(ctx context.Context, c *Client) error { _, err := c.EquipmentTypes.Get(ctx, 3); return err },
		"equipment types create":  func(ctx context.Context, c *Client) error { _, err := c.EquipmentTypes.Create(ctx, domain.EquipmentTypeCreate{Title: "t"}); return err },
		"brands delete":           func(ctx context.Context, c *Client) error { return c.Brands.Delete(ctx, 4) },
		"document types list":     func(ctx context.Context, c *Client) error { _, err := c.DocumentTypes.List(ctx); return err },
		"products page":           func(ctx context.Context, c *Client) error { _, err := c.Products.Page(ctx, domain.PageRequest{Page: 2}); return err },
		"products associate":      func(ctx context.Context, c *Client) error { return c.Products.Associate(ctx, 1, 2) },
		"products detach":         func(ctx context.Context, c *Client) error { return c.Products.DetachDocument(ctx, 1, 2) },
		"documents list":          func(ctx context.Context, c *Client) error { _, err := c.Documents.List(ctx); return err },
		"documents create":        func(ctx context.Context, c *Client) error { _, err := c.Documents.Create(ctx, upload); return err },
		"documents update":        func(ctx context.Context, c *Client) error { _, err := c.Documents.Update(ctx, 5, domain.DocumentUpload{Name: "n"}); return err },
		"documents archive":       func(ctx context.Context, c *Client) error { _, err := c.Documents.Archive(ctx, 5); return err },
		"documents download":      func(ctx context.Context, c *Client) error { _, err := c.Documents.Download(ctx, 5); return err },
		"inventories update":      func(ctx context.Context, c *Client) error { _, err := c.Inventories.Update(ctx, 6, domain.InventoryUpdate{}); return err },
		"users list":              func(ctx context.Context, c *Client) error { _, err := c.Users.List(ctx); return err },
		"users assign permission": func(ctx context.Context, c *Client) error { return c.Users.AssignPermission(ctx, 7, "view domains") },
		"current user":            func(ctx context.Context, c *Client) error { _, err := c.CurrentUser(ctx); return err },
	}

	env := newTestEnv(t, func(g *echo.Group) {
		g.Any("/*", func(c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
		})
	})

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, env.sess.Set(ctx, "token-1"))

			err := op(ctx, env.client)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrSessionExpired)
			var apiErr *domain.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
			assert.Equal(t, domain.ErrSessionExpired.Error(), err.Error())
			assert.False(t, env.client.IsAuthenticated())
			stored, _ := env.store.Load(ctx)
			assert.Empty(t, stored)
		})
	}
}

func TestClient_ErrorCarriesServerMessage(t *testing.T) {
	env := newTestEnv(t, func(g *echo.Group) {
		g.POST("/brands", func(c echo.Context) error {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"message": "The name field is required."})
		})
		g.GET("/brands/:id", func(c echo.Context) error {
			return c.NoContent(http.StatusInternalServerError)
		})
	})
	ctx := context.Background()

	_, err := env.client.Brands.Create(ctx, domain.BrandCreate{})
	require.Error(t, err)
	assert.Equal(t, "The name field is required.", err.Error())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.client.Brands.Get(ctx, 9)
	require.Error(t, err)
	assert.Equal(t, "500 Internal Server Error", err.Error())
	assert.True(t, env.client.IsAuthenticated())
}

func TestClient_TransportFailureIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	env := newEnvForURL(t, url+"/api")

	_, err := env.client.Domains.List(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.True(t, env.client.IsAuthenticated())
}

func TestProducts_PageSendsQueryAndKeepsPageInfo(t *testing.T) {
	env := newTestEnv(t, func(g *echo.Group) {
		g.GET("/products", func(c echo.Context) error {
			if c.QueryParam("page") != "2" || c.QueryParam("per_page") != "15" {
				return c.JSON(http.StatusBadRequest, map[string]string{"message": "bad query"})
			}
			return c.JSONBlob(http.StatusOK, []byte(`{
				"data":[{"id":16,"name":"Pompe","status":"maintenance"}],
				"current_page":2,"last_page":3,"per_page":15,"total":31,"from":16,"to":16,
				"links":{"first":"/products?page=1","last":"/products?page=3","next":"/products?page=3"}
			}`))
		})
	})

	got, err := env.client.Products.Page(context.Background(), domain.PageRequest{Page: 2, PerPage: 15})

	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, domain.ProductMaintenance, got.Items[0].Status)
	require.NotNil(t, got.Page)
	assert.Equal(t, 31, got.Page.Total)
	assert.True(t, got.Page.HasNext())
	assert.Equal(t, "/products?page=3", got.Page.Links.Next)
}

func TestDocuments_UpdateWithoutFileOmitsFilePart(t *testing.T) {
	type seen struct {
		method, override, contentType string
		products                      []string
		hasFile                       bool
		expiry                        string
	}
	var got seen
	env := newTestEnv(t, func(g *echo.Group) {
		g.POST("/documents/:id", func(c echo.Context) error {
			r := c.Request()
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
			}
			got = seen{
				method:      r.Method,
				override:    r.FormValue("_method"),
				contentType: r.Header.Get("Content-Type"),
				products:    r.MultipartForm.Value["product_ids[]"],
				expiry:      r.FormValue("expiry_date"),
			}
			_, got.hasFile = r.MultipartForm.File["file"]
			return c.JSONBlob(http.StatusOK, []byte(`{"success":true,"data":{"id":5,"name":"Notice","file_path":"docs/notice.pdf","file_size":2048}}`))
		})
	})

	expiry := domain.NewDate(2025, time.March, 1)
	doc, err := env.client.Documents.Update(context.Background(), 5, domain.DocumentUpload{
		Name:           "Notice",
		DocumentTypeID: 2,
		Version:        "2",
		IssueDate:      domain.NewDate(2024, time.March, 1),
		ExpiryDate:     &expiry,
		ProductIDs:     []int64{3, 4},
	})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "PUT", got.override)
	assert.True(t, strings.HasPrefix(got.contentType, "multipart/form-data"))
	assert.Equal(t, []string{"3", "4"}, got.products)
	assert.Equal(t, "2025-03-01", got.expiry)
	assert.False(t, got.hasFile)
	assert.Equal(t, int64(2048), doc.FileSize)
}

func TestDocuments_CreateUploadsFile(t *testing.T) {
	var content string
	env := newTestEnv(t, func(g *echo.Group) {
		g.POST("/documents", func(c echo.Context) error {
			fh, err := c.FormFile("file")
			if err != nil {
				return c.JSON(http.StatusUnprocessableEntity, map[string]string{"message": "file required"})
			}
			f, err := fh.Open()
			if err != nil {
				return err
			}
			defer f.Close()
			b, _ := io.ReadAll(f)
			content = string(b)
			return c.JSONBlob(http.StatusCreated, []byte(`{"data":{"id":8,"name":"Certificat","file_name":"`+fh.Filename+`"}}`))
		})
	})
	ctx := context.Background()

	_, err := env.client.Documents.Create(ctx, domain.DocumentUpload{Name: "Certificat"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	doc, err := env.client.Documents.Create(ctx, domain.DocumentUpload{
		Name:      "Certificat",
		IssueDate: domain.NewDate(2024, time.May, 2),
		File:      &domain.FileAttachment{Name: "cert.pdf", Content: strings.NewReader("%PDF-1.4")},
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", content)
	assert.Equal(t, "cert.pdf", doc.FileName)
}

func TestDocuments_ListAsksForProducts(t *testing.T) {
	env := newTestEnv(t, func(g *echo.Group) {
		g.GET("/documents", func(c echo.Context) error {
			if c.QueryParam("with") != "products" {
				return c.JSONBlob(http.StatusOK, []byte(`{"data":[]}`))
			}
			return c.JSONBlob(http.StatusOK, []byte(`{"data":[{"id":1,"name":"Notice","products":[{"id":3,"name":"Pompe"}]}]}`))
		})
	})

	got, err := env.client.Documents.List(context.Background())

	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Len(t, got.Items[0].Products, 1)
	assert.Equal(t, "Pompe", got.Items[0].Products[0].Name)
}

func TestDocuments_DownloadAndArchive(t *testing.T) {
	env := newTestEnv(t, func(g *echo.Group) {
		g.GET("/documents/:id/download", func(c echo.Context) error {
			c.Response().Header().Set("Content-Disposition", `attachment; filename="manual.pdf"`)
			return c.Blob(http.StatusOK, "application/pdf", []byte("%PDF-1.7 body"))
		})
		g.PATCH("/documents/:id/archive", func(c echo.Context) error {
			return c.JSONBlob(http.StatusOK, []byte(`{"success":true,"data":{"id":5,"is_archived":true}}`))
		})
	})
	ctx := context.Background()

	file, err := env.client.Documents.Download(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "manual.pdf", file.FileName)
	assert.Equal(t, []byte("%PDF-1.7 body"), file.Content)

	doc, err := env.client.Documents.Archive(ctx, 5)
	require.NoError(t, err)
	assert.True(t, doc.IsArchived)
}

func TestClient_LoginStoresToken(t *testing.T) {
	env := newTestEnv(t, func(g *echo.Group) {
		g.POST("/login", func(c echo.Context) error {
			var creds Credentials
			if err := c.Bind(&creds); err != nil || creds.Email != "admin@example.com" {
				return c.JSON(http.StatusUnprocessableEntity, map[string]string{"message": "Identifiants invalides"})
			}
			return c.JSONBlob(http.StatusOK, []byte(`{"success":true,"message":"Connexion réussie","data":{
				"user":{"id":1,"name":"Admin","email":"admin@example.com"},
				"token":"fresh-token","permissions":["view domains"],"roles":["admin"]}}`))
		})
		g.GET("/user", func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") != "Bearer fresh-token" {
				return c.NoContent(http.StatusUnauthorized)
			}
			return c.JSONBlob(http.StatusOK, []byte(`{"id":1,"name":"Admin","email":"admin@example.com"}`))
		})
	})
	ctx := context.Background()
	require.NoError(t, env.client.ClearToken(ctx))

	result, err := env.client.Login(ctx, "admin@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "fresh-token", result.Token)
	assert.Equal(t, []string{"view domains"}, result.Permissions)
	assert.Equal(t, "Connexion réussie", result.Message)
	stored, _ := env.store.Load(ctx)
	assert.Equal(t, "fresh-token", stored)

	user, err := env.client.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Admin", user.Name)
}

func TestClient_LoginRejectedKeepsSessionEmpty(t *testing.T) {
	env := newTestEnv(t, func(g *echo.Group) {
		g.POST("/login", func(c echo.Context) error {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"message": "Identifiants invalides"})
		})
	})
	ctx := context.Background()
	require.NoError(t, env.client.ClearToken(ctx))

	_, err := env.client.Login(ctx, "admin@example.com", "wrong")

	require.Error(t, err)
	assert.Equal(t, "Identifiants invalides", err.Error())
	assert.False(t, env.client.IsAuthenticated())
}

func TestClient_LogoutClearsEvenWhenServerFails(t *testing.T) {
	var calls atomic.Int32
	env := newTestEnv(t, func(g *echo.Group) {
		g.POST("/logout", func(c echo.Context) error {
			calls.Add(1)
			return c.NoContent(http.StatusInternalServerError)
		})
	})
	ctx := context.Background()

	err := env.client.Logout(ctx)

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, env.client.IsAuthenticated())
	stored, _ := env.store.Load(ctx)
	assert.Empty(t, stored)
}

func TestClient_LogoutClearsOnTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	env := newEnvForURL(t, url+"/api")

	err := env.client.Logout(context.Background())

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.False(t, env.client.IsAuthenticated())
}

func TestUsers_PermissionAndRoleCallsSendNames(t *testing.T) {
	bodies := map[string]map[string]string{}
	env := newTestEnv(t, func(g *echo.Group) {
		g.POST("/users/:id/:action", func(c echo.Context) error {
			var body map[string]string
			if err := c.Bind(&body); err != nil {
				return err
			}
			bodies[c.Param("id")+"/"+c.Param("action")] = body
			return c.JSON(http.StatusOK, map[string]any{"success": true})
		})
	})
	ctx := context.Background()

	require.NoError(t, env.client.Users.AssignPermission(ctx, 7, "edit domains"))
	require.NoError(t, env.client.Users.RemovePermission(ctx, 7, "view brands"))
	require.NoError(t, env.client.Users.AssignRole(ctx, 7, "manager"))
	assert.ErrorIs(t, env.client.Users.RemoveRole(ctx, 7, ""), domain.ErrInvalidInput)

	assert.Equal(t, map[string]string{"permission": "edit domains"}, bodies["7/assign-permission"])
	assert.Equal(t, map[string]string{"permission": "view brands"}, bodies["7/remove-permission"])
	assert.Equal(t, map[string]string{"role": "manager"}, bodies["7/assign-role"])
	assert.NotContains(t, bodies, "7/remove-role")
}

func TestInventories_CreateDefaultsQuantity(t *testing.T) {
	var quantity float64
	var fields any
	env := newTestEnv(t, func(g *echo.Group) {
		g.POST("/inventories", func(c echo.Context) error {
			var body map[string]any
			if err := c.Bind(&body); err != nil {
				return err
			}
			quantity, _ = body["quantity"].(float64)
			fields = body["additional_fields"]
			return c.JSONBlob(http.StatusCreated, []byte(`{"data":{"id":3,"product_id":2,"quantity":1,"additional_fields":"{\"capacity\":\"5kg\"}"}}`))
		})
	})

	inv, err := env.client.Inventories.Create(context.Background(), domain.InventoryCreate{ProductID: 2, Location: "Atelier"})

	require.NoError(t, err)
	assert.Equal(t, float64(1), quantity)
	assert.Equal(t, "{}", fields)
	assert.Equal(t, domain.Attributes{"capacity": "5kg"}, inv.AdditionalFields)
}

func TestEquipmentTypes_UpdateCanEmptyAdditionalFields(t *testing.T) {
	var body map[string]any
	env := newTestEnv(t, func(g *echo.Group) {
		g.PUT("/equipment-types/:id", func(c echo.Context) error {
			if err := c.Bind(&body); err != nil {
				return err
			}
			return c.JSONBlob(http.StatusOK, []byte(`{"data":{"id":4,"title":"Pompe","additional_fields":"{}"}}`))
		})
	})

	got, err := env.client.EquipmentTypes.Update(context.Background(), 4, domain.EquipmentTypeUpdate{AdditionalFields: &domain.FieldSchema{}})

	require.NoError(t, err)
	require.Contains(t, body, "additional_fields")
	assert.Equal(t, "{}", body["additional_fields"])
	assert.Empty(t, got.AdditionalFields)
}

func TestClient_UnauthorizedKeepsCredentialSetDuringRequest(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	env := newTestEnv(t, func(g *echo.Group) {
		g.GET("/brands", func(c echo.Context) error {
			close(arrived)
			<-release
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
		})
	})
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		_, err := env.client.Brands.List(ctx)
		errc <- err
	}()
	<-arrived
	require.NoError(t, env.client.SetToken(ctx, "fresh-login-token"))
	close(release)

	err := <-errc
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.True(t, env.client.IsAuthenticated())
	assert.Equal(t, "fresh-login-token", env.sess.Token())
	stored, _ := env.store.Load(ctx)
	assert.Equal(t, "fresh-login-token", stored)
}
