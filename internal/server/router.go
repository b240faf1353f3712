package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) SetUpRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestId())
	router.Use(Logger())
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "ok",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	// Serve the visualizer build
	uiDir := s.conf.UIDir
	router.Static("/assets", filepath.Join(uiDir, "assets"))
	router.NoRoute(func(c *gin.Context) {
		// API requests should 404
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		// All other routes go to index.html for client-side routing
		c.File(filepath.Join(uiDir, "index.html"))
	})

	api := router.Group("/api")
	s.SetUpApiRouter(api)

	return router
}

func (s *Server) SetUpApiRouter(api *gin.RouterGroup) {
	api.GET("/fetch", s.handleFetch)
	api.GET("/fetch_video", s.handleFetchVideo)
	api.GET("/clear", s.handleClear)

	api.GET("/wordcloud", s.handleWordcloud)
	api.GET("/top_danmakus", s.handleTopDanmakus)

	api.GET("/export_excel", s.handleExportExcel)
	api.GET("/import_excel", s.handleImportExcel)

	api.GET("/db_info", s.handleDbInfo)
	api.GET("/db_data", s.handleDbData)
}
