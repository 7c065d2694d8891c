package transport

import (
	"time"

	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/ds124wfegd/negative-web/internal/transport/middleware"
	"github.com/ds124wfegd/negative-web/internal/web"
	"github.com/gin-gonic/gin"
)

func InitRoutes(h *Handler, sessionCookie string, timeout time.Duration) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())
	router.Use(middleware.Timeout(timeout))

	router.SetHTMLTemplate(web.Templates())

	router.GET("/health", h.Health)
	router.GET("/health/backends", h.BackendHealth)

	ui := router.Group("/", middleware.Session(h.services.Sessions, sessionCookie))
	{
		ui.GET("", h.Index)
		ui.POST("/input", h.SetInput)
		ui.POST("/service1", h.CallService(entity.Service1))
		ui.POST("/service2", h.CallService(entity.Service2))
		ui.POST("/file", h.SelectFile)
		ui.POST("/negative", h.CreateNegative)
		ui.POST("/reset", h.Reset)

		ui.GET("/artifacts/:id", h.DownloadArtifact)
		ui.GET("/artifacts/:id/preview", h.PreviewArtifact)
	}

	api := router.Group("/api", middleware.Session(h.services.Sessions, sessionCookie))
	{
		api.GET("/state", h.State)
		api.POST("/input", h.SetInput)
		api.POST("/service1", h.CallService(entity.Service1))
		api.POST("/service2", h.CallService(entity.Service2))
		api.POST("/file", h.SelectFile)
		api.POST("/negative", h.CreateNegative)
		api.POST("/reset", h.Reset)
		api.DELETE("/session", h.EndSession)
	}

	return router
}
