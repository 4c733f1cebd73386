package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pichpich13/user-dashboard/config"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// SetupRouter creates and configures the Gin router.
// metrics may be nil, in which case /metrics is not mounted.
func SetupRouter(cfg *config.Config, handler *Handler, metrics http.Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.SetHTMLTemplate(dashboardTemplates)

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins, corsPrefixes...))

	router.GET("/health", handler.HealthCheck)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	// Dashboard page and its chart images
	router.GET("/", handler.Dashboard)
	charts := router.Group("/charts")
	{
		charts.GET("/score-density.png", handler.ScoreDensityChart)
		charts.GET("/grade-counts.png", handler.GradeCountsChart)
		charts.GET("/category-means.png", handler.CategoryMeansChart)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/records", handler.Records)
		v1.POST("/refresh", handler.Refresh)

		summary := v1.Group("/summary")
		{
			summary.GET("/distribution", handler.DistributionSummary)
			summary.GET("/categories", handler.CategorySummary)
		}
	}

	return router
}
