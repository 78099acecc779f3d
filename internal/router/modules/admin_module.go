package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lostudea/lostudea-api/internal/container"
	handlers "github.com/lostudea/lostudea-api/internal/interface/http"
	"github.com/lostudea/lostudea-api/internal/interface/middleware"
	"github.com/lostudea/lostudea-api/pkg/helpers"
)

// AdminModule wires the staff routes under /api/admin.
type AdminModule struct {
	Handler *handlers.AdminHandler
	JWT     *helpers.JWTManager
}

func NewAdminModule(h *handlers.AdminHandler, jwt *helpers.JWTManager) *AdminModule {
	return &AdminModule{Handler: h, JWT: jwt}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(container.GetRedis(), m.JWT))
	admin.Use(middleware.RequireAdmin())
	admin.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		admin.GET("/dashboard", m.Handler.Dashboard)
		admin.GET("/reports/lost", m.Handler.ListLost)
		admin.GET("/reports/found", m.Handler.ListFound)
		admin.GET("/matches", m.Handler.ListMatches)
		admin.PATCH("/matches/:id", m.Handler.UpdateMatchStatus)
		admin.POST("/reports/found/:id/delivered", m.Handler.MarkDelivered)
	}
}
