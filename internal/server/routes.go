package server

import (
	"resumechat/internal/core"

	"github.com/gin-gonic/gin"
)

func (s *Server) setupRoutes() {
	gin.SetMode(s.ginMode)
	s.router = gin.New()

	s.router.Use(gin.Logger())
	s.router.Use(gin.CustomRecovery(s.recoverPanic))
	s.router.Use(requestIDMiddleware())
	s.router.Use(s.corsMiddleware())

	s.router.GET(core.RouteHealth, s.healthCheck)
	s.router.GET(core.RouteStats, s.getStatsData)
	s.router.GET(core.RouteMetrics, gin.WrapH(s.metricsService.Handler()))

	s.router.POST(core.RouteChat, s.maxBodySizeMiddleware(), s.chatHandler)

	// everything else is a static asset, whatever the method
	s.router.NoRoute(s.serveAsset)
}
