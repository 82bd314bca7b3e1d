package main

import (
	"context"
	"net/http"
	"os"

	"github.com/aws/aws-xray-sdk-go/xray"

	adaptermiddleware "equipment-console/internal/adapters/http/middleware"
	adapterlogger "equipment-console/internal/adapters/logger"
	"equipment-console/internal/application"
	"equipment-console/internal/config"
	"equipment-console/internal/domain"
	"equipment-console/internal/infrastructure/api"
	"equipment-console/internal/infrastructure/dynamodb"
	"equipment-console/internal/infrastructure/session"
	httpiface "equipment-console/internal/interfaces/http"
	"equipment-console/internal/ports"
)

func newTokenStore(ctx context.Context, cfg config.SessionConfig) (ports.TokenStore, error) {
	if cfg.Store == config.StoreDynamoDB {
		client, err := dynamodb.NewClient(ctx, cfg.Region, cfg.Table)
		if err != nil {
			return nil, err
		}
		return dynamodb.NewTokenStore(client, cfg.Profile), nil
	}
	return session.NewFileStore(cfg.File)
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		adapterlogger.New("info").Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	logger := adapterlogger.New(cfg.LogLevel)
	logger.InstallDefault()
	xray.Configure(xray.Config{LogLevel: "error"})

	store, err := newTokenStore(ctx, cfg.Session)
	if err != nil {
		logger.Error(ctx, "failed to initialize token store", "store", cfg.Session.Store, "error", err)
		os.Exit(1)
	}
	sess, err := session.Open(ctx, store)
	if err != nil {
		logger.Warn(ctx, "stored credential unreadable, starting logged out", "error", err)
	}

	client := api.New(api.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		HTTPClient: xray.Client(&http.Client{}),
	}, sess, logger)

	editor := application.NewPermissionEditor(client.Users, domain.DefaultCatalog(), logger, cfg.Permissions.Concurrency)
	dashboard := application.NewDashboardService(
		client.Products, client.Documents, client.Users, client.Inventories,
		logger, cfg.Documents.ExpiryWindow(),
	)

	authMiddleware, err := adaptermiddleware.AuthMiddleware(cfg.Server.AuthMode, cfg.Server.APIKey)
	if err != nil {
		logger.Error(ctx, "failed to initialize auth middleware", "error", err)
		os.Exit(1)
	}
	mw := httpiface.Middleware{
		Auth:          authMiddleware,
		XRay:          adaptermiddleware.XRayMiddleware("equipment-console"),
		RequestLogger: adaptermiddleware.RequestLogger(logger),
	}

	e := httpiface.NewRouter(httpiface.Handlers{
		Session:     httpiface.NewSessionHandler(client, sess),
		Dashboard:   httpiface.NewDashboardHandler(dashboard),
		Permissions: httpiface.NewPermissionsHandler(editor),
		Documents:   httpiface.NewDocumentsHandler(client.Documents, cfg.Documents.ExpiryWindow()),
	}, mw)

	logger.Info(ctx, "starting console gateway",
		"port", cfg.Server.Port,
		"api", cfg.API.BaseURL,
		"token_store", cfg.Session.Store,
		"authenticated", sess.IsAuthenticated(),
	)
	e.Logger.Fatal(e.Start(":" + cfg.Server.Port))
}
