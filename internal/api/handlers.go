package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sitewise/server/internal/analysis"
	"sitewise/server/internal/database"
	"sitewise/server/internal/models"
)

const (
	recentSearchesLimit    = 50
	recentComparisonsLimit = 20
	nearbySearchesLimit    = 20
)

// Store is the subset of the document store the handlers need.
type Store interface {
	SaveSearch(ctx context.Context, record *models.AnalysisRecord) error
	GetSearch(ctx context.Context, searchID string) (*models.AnalysisRecord, error)
	RecentSearches(ctx context.Context, limit int) ([]models.AnalysisRecord, error)
	SearchesNear(ctx context.Context, lat, lng float64, maxMeters int, limit int) ([]models.AnalysisRecord, error)
	SaveComparison(ctx context.Context, record *models.ComparisonRecord) error
	RecentComparisons(ctx context.Context, limit int) ([]models.ComparisonRecord, error)
}

// Analyzer runs the enrichment pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, query models.LocationQuery) models.AnalysisRecord
	Compare(ctx context.Context, queries []models.LocationQuery) (*models.ComparisonRecord, error)
}

type Handler struct {
	store    Store
	analyzer Analyzer
	logger   *logrus.Logger
}

func NewHandler(store Store, analyzer Analyzer, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		store:    store,
		analyzer: analyzer,
		logger:   logger,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "location-intelligence-advanced",
	})
}

// SearchCompetitorsAdvanced runs the full analysis pipeline for one location,
// persists the record, and returns the flattened result.
func (h *Handler) SearchCompetitorsAdvanced(c *gin.Context) {
	var query models.LocationQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		h.logger.WithError(err).Error("Failed to parse search request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	record := h.analyzer.Analyze(c.Request.Context(), query)

	if err := h.store.SaveSearch(c.Request.Context(), &record); err != nil {
		h.logger.WithError(err).Error("Failed to store analysis record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"search_id":           record.SearchID,
		"location":            record.Location,
		"center_coordinates":  models.Coordinate{Lat: record.CenterLat, Lng: record.CenterLng},
		"business_type":       record.BusinessType,
		"competitors":         record.Competitors,
		"competitor_count":    record.CompetitorCount,
		"saturation_score":    record.SaturationScore,
		"demographics":        record.Demographics,
		"rental_estimates":    record.RentalEstimates,
		"break_even_analysis": record.BreakEvenAnalysis,
		"foot_traffic_score":  record.FootTrafficScore,
		"radius":              record.Radius,
	})
}

// CompareLocations analyzes 2-4 locations and returns the comparison with a
// best-per-criterion summary.
func (h *Handler) CompareLocations(c *gin.Context) {
	var request models.ComparisonRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithError(err).Error("Failed to parse comparison request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	record, err := h.analyzer.Compare(c.Request.Context(), request.Locations)
	if errors.Is(err, analysis.ErrInvalidLocationCount) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Comparison failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SaveComparison(c.Request.Context(), record); err != nil {
		h.logger.WithError(err).Error("Failed to store comparison record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *Handler) GetSearchAnalysis(c *gin.Context) {
	searchID := c.Param("search_id")

	record, err := h.store.GetSearch(c.Request.Context(), searchID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load analysis record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *Handler) GetRecentSearches(c *gin.Context) {
	records, err := h.store.RecentSearches(c.Request.Context(), recentSearchesLimit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load recent searches")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetNearbySearches returns stored analyses around a point, exercising the
// geospatial index on the analysis centroid.
func (h *Handler) GetNearbySearches(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})
		return
	}

	radius, err := strconv.Atoi(c.DefaultQuery("radius", "5000"))
	if err != nil || radius <= 0 {
		radius = 5000
	}

	records, err := h.store.SearchesNear(c.Request.Context(), lat, lng, radius, nearbySearchesLimit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load nearby searches")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetRecentComparisons(c *gin.Context) {
	records, err := h.store.RecentComparisons(c.Request.Context(), recentComparisonsLimit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load recent comparisons")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}
