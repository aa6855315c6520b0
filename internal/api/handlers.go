package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/eventcrawl/internal/domain"
	"github.com/jonesrussell/eventcrawl/internal/logger"
)

// CrawlService is the crawler surface the handlers expose.
type CrawlService interface {
	CrawlNextVenue(ctx context.Context) (*domain.Summary, error)
	ScanArea(ctx context.Context, areaID int, startDate string) (*domain.Summary, error)
	SyncVenues(ctx context.Context) (*domain.SyncSummary, error)
}

// CrawlHandler serves the trigger endpoints.
type CrawlHandler struct {
	service       CrawlService
	defaultAreaID int
	logger        logger.Interface
}

// NewCrawlHandler creates the trigger handler. defaultAreaID is scanned when
// a scan request names no area.
func NewCrawlHandler(service CrawlService, defaultAreaID int, log logger.Interface) *CrawlHandler {
	return &CrawlHandler{
		service:       service,
		defaultAreaID: defaultAreaID,
		logger:        log,
	}
}

// CrawlNext crawls the next due venue. Having no venue due is a success with
// an explanatory message, not an error.
func (h *CrawlHandler) CrawlNext(c *gin.Context) {
	summary, err := h.service.CrawlNextVenue(c.Request.Context())
	if err != nil {
		h.logger.Error("Crawl failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Crawl failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

type scanRequest struct {
	AreaID    int    `json:"area_id"`
	StartDate string `json:"start_date"`
}

// Scan ingests upcoming events for an area. The body is optional; an absent
// or zero area falls back to the configured default, and an absent start date
// to today.
func (h *CrawlHandler) Scan(c *gin.Context) {
	var req scanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}
	if req.AreaID == 0 {
		req.AreaID = h.defaultAreaID
	}

	summary, err := h.service.ScanArea(c.Request.Context(), req.AreaID, req.StartDate)
	if err != nil {
		h.logger.Error("Scan failed", "area_id", req.AreaID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Scan failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Sync refreshes the venue rotation from live listings.
func (h *CrawlHandler) Sync(c *gin.Context) {
	summary, err := h.service.SyncVenues(c.Request.Context())
	if err != nil {
		h.logger.Error("Venue sync failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Venue sync failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
