package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lostudea/lostudea-api/internal/container"
	handlers "github.com/lostudea/lostudea-api/internal/interface/http"
	"github.com/lostudea/lostudea-api/internal/interface/middleware"
	"github.com/lostudea/lostudea-api/pkg/helpers"
)

// ReportModule wires lost/found report routes. Everything except the
// catalog endpoint requires a session; lost-report creation additionally
// requires seeker registration, enforced in the handler.
type ReportModule struct {
	Handler *handlers.ReportHandler
	JWT     *helpers.JWTManager
}

func NewReportModule(h *handlers.ReportHandler, jwt *helpers.JWTManager) *ReportModule {
	return &ReportModule{Handler: h, JWT: jwt}
}

func (m *ReportModule) Register(rg *gin.RouterGroup) {
	rg.GET("/catalogs", m.Handler.Catalogs)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/reports/lost", m.Handler.CreateLost)
		auth.GET("/reports/lost", m.Handler.ListLost)
		auth.GET("/reports/lost/:id", m.Handler.GetLost)
		auth.PATCH("/reports/lost/:id", m.Handler.UpdateLost)
		auth.DELETE("/reports/lost/:id", m.Handler.DeleteLost)

		auth.GET("/reports/lost/:id/candidates", m.Handler.Candidates)
		auth.GET("/reports/lost/:id/matches", m.Handler.Matches)
		auth.POST("/reports/lost/:id/confirm", m.Handler.ConfirmMatch)

		auth.POST("/reports/found", m.Handler.CreateFound)
		auth.GET("/reports/found", m.Handler.ListFound)
		auth.GET("/reports/found/mine", m.Handler.ListMine)
		auth.GET("/reports/found/:id", m.Handler.GetFound)
		auth.PATCH("/reports/found/:id", m.Handler.UpdateFound)
		auth.DELETE("/reports/found/:id", m.Handler.DeleteFound)

		auth.GET("/reports/search", m.Handler.Search)
	}
}
