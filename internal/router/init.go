package router

import (
	"github.com/lostudea/lostudea-api/internal/container"
	handlers "github.com/lostudea/lostudea-api/internal/interface/http"
	"github.com/lostudea/lostudea-api/internal/router/modules"
)

// InitModules builds the HTTP handlers from the container singletons and
// registers every feature module. Call once during startup, after main
// has populated the container.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()

	userHandler := handlers.NewUserHandler(
		container.GetUserService(),
		logger,
		cfg.CookieDomain,
		cfg.CookieSecure,
	)
	reportHandler := handlers.NewReportHandler(
		container.GetItemStore(),
		container.GetUserService(),
		container.GetImageUploader(),
		container.GetReportIndex(),
		logger,
	)
	adminHandler := handlers.NewAdminHandler(
		container.GetItemStore(),
		container.GetLifecycle(),
		logger,
	)

	r.Add(modules.NewAuthModule(userHandler, jwt))
	r.Add(modules.NewReportModule(reportHandler, jwt))
	r.Add(modules.NewAdminModule(adminHandler, jwt))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
