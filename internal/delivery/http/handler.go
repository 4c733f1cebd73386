package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pichpich13/user-dashboard/internal/delivery/chart"
	"github.com/pichpich13/user-dashboard/internal/domain"
)

// dashboardTitle heads the single dashboard page
const dashboardTitle = "Scanned products analysis"

// ReportProvider is the dashboard data layer as seen by the handlers
type ReportProvider interface {
	Report(ctx context.Context) (*domain.Report, error)
	Refresh(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	dashboard ReportProvider
}

// NewHandler creates a new HTTP handler
func NewHandler(dashboard ReportProvider) *Handler {
	return &Handler{dashboard: dashboard}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "user-dashboard",
		"version": "1.0.0",
	})
}

// Dashboard renders the page with the two collapsible chart sections
func (h *Handler) Dashboard(c *gin.Context) {
	report, err := h.report(c)
	if err != nil {
		c.HTML(http.StatusBadGateway, "dashboard.html", gin.H{
			"Title": dashboardTitle,
			"Error": err.Error(),
		})
		return
	}

	found := 0
	for _, record := range report.Records {
		if record.Score.Sentinel != domain.SentinelNotFound && record.Score.Sentinel != domain.SentinelRequestError {
			found++
		}
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":      dashboardTitle,
		"Products":   len(report.Records),
		"Found":      found,
		"HasScores":  len(report.Distribution.Scores) > 0,
		"HasGrades":  len(report.Distribution.GradeCounts) > 0,
		"Categories": report.Categories.Rows,
	})
}

// Records returns the fetched per-barcode records
func (h *Handler) Records(c *gin.Context) {
	report, ok := h.reportOrAbort(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": report.Records})
}

// DistributionSummary returns the cleaned score and grade views
func (h *Handler) DistributionSummary(c *gin.Context) {
	report, ok := h.reportOrAbort(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report.Distribution)
}

// CategorySummary returns the mean score per primary category
func (h *Handler) CategorySummary(c *gin.Context) {
	report, ok := h.reportOrAbort(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report.Categories)
}

// Refresh drops the cached report; the next request refetches every barcode
func (h *Handler) Refresh(c *gin.Context) {
	if h.dashboard == nil {
		notConfigured(c)
		return
	}
	if err := h.dashboard.Refresh(c.Request.Context()); err != nil {
		log.Printf("[Dashboard] Refresh failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to refresh report"})
		return
	}

	// Plain form posts from the dashboard page go back to it
	if c.ContentType() == "application/x-www-form-urlencoded" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}

// ScoreDensityChart serves the score density plot
func (h *Handler) ScoreDensityChart(c *gin.Context) {
	h.servePNG(c, func(report *domain.Report) ([]byte, error) {
		return chart.ScoreDensity(report.Distribution.Scores)
	})
}

// GradeCountsChart serves the grade count plot
func (h *Handler) GradeCountsChart(c *gin.Context) {
	h.servePNG(c, func(report *domain.Report) ([]byte, error) {
		return chart.GradeCounts(report.Distribution.GradeCounts)
	})
}

// CategoryMeansChart serves the category bar chart
func (h *Handler) CategoryMeansChart(c *gin.Context) {
	h.servePNG(c, func(report *domain.Report) ([]byte, error) {
		return chart.CategoryMeans(report.Categories.Rows)
	})
}

func (h *Handler) servePNG(c *gin.Context, draw func(*domain.Report) ([]byte, error)) {
	report, ok := h.reportOrAbort(c)
	if !ok {
		return
	}

	img, err := draw(report)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[Dashboard] Chart rendering failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render chart"})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", img)
}

func (h *Handler) report(c *gin.Context) (*domain.Report, error) {
	if h.dashboard == nil {
		return nil, errors.New("dashboard service not configured")
	}
	return h.dashboard.Report(c.Request.Context())
}

// reportOrAbort writes a JSON error and returns false when no report is available
func (h *Handler) reportOrAbort(c *gin.Context) (*domain.Report, bool) {
	if h.dashboard == nil {
		notConfigured(c)
		return nil, false
	}

	report, err := h.dashboard.Report(c.Request.Context())
	if err != nil {
		log.Printf("[Dashboard] Report failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Report temporarily unavailable"})
		return nil, false
	}
	return report, true
}

func notConfigured(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dashboard service not configured"})
}
