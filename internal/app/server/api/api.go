// HTTP surface of the sync server:
//
//	GET  /api/v1/health                      # connectivity probe (public)
//	POST /api/v1/sync/push                   # land a device's batch (auth)
//	GET  /api/v1/sync/changes                # pull changes since watermark (auth)
//	GET  /api/v1/sync/devices                # known field installations (auth)
//	GET  /api/v1/records                     # live counts per collection (auth)
//	GET  /api/v1/records/{collection}        # browse a collection (auth)
//	GET  /api/v1/records/{collection}/{id}   # single record (auth)
package api

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	healthAPI "fibertrace/internal/app/server/api/http/health"
	"fibertrace/internal/app/server/api/http/middleware"
	"fibertrace/internal/app/server/api/http/middleware/auth"
	"fibertrace/internal/app/server/api/http/middleware/logger"
	recordAPI "fibertrace/internal/app/server/api/http/record"
	syncAPI "fibertrace/internal/app/server/api/http/sync"
	"fibertrace/internal/app/server/config"
	"fibertrace/internal/domain/sync"
	"fibertrace/internal/infrastructure/storage/postgres"
)

type Handlers struct {
	Health *healthAPI.Handler
	Sync   *syncAPI.Handler
	Record *recordAPI.Handler
}

// New builds a *chi.Mux with every operation registered through huma.
func New(cfg *config.Config, storage *postgres.Storage, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	humaConfig := huma.DefaultConfig("FiberTrace API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConfig)

	h := handlers(cfg, storage, log)
	h.Health.SetupRoutes(API)
	h.Sync.SetupRoutes(API)
	h.Record.SetupRoutes(API)

	return mux
}

func handlers(cfg *config.Config, storage *postgres.Storage, log *slog.Logger) *Handlers {
	authMW := auth.New(cfg.Auth.TechnicianToken, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	syncRepo := postgres.NewSyncRepository(storage, log)
	syncService := sync.NewService(syncRepo, log, nil)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	syncHandler := syncAPI.NewHandler(syncService, log, middlewares.GetAllAndClear())

	recordRepo := postgres.NewRecordRepository(storage, log)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	recordHandler := recordAPI.NewHandler(recordRepo, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		Sync:   syncHandler,
		Record: recordHandler,
	}
}
