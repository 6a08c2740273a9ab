package api

import (
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"seoulapt/server/internal/analysis"
	"seoulapt/server/internal/dataset"
	"seoulapt/server/internal/geometry"
	"seoulapt/server/internal/models"
)

type Handler struct {
	data    *dataset.Data
	layer   geometry.MapLayer
	summary models.DashboardSummary
	logger  *logrus.Logger
}

// CompareQuery holds the selector values of the comparison panel
type CompareQuery struct {
	District1 string `form:"district1"`
	Dong1     string `form:"dong1"`
	District2 string `form:"district2"`
	Dong2     string `form:"dong2"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	MinYear   string `form:"min_year"`
	MaxYear   string `form:"max_year"`
}

// NewHandler precomputes the map layer and the metric cards, both depend on the loaded data only
func NewHandler(data *dataset.Data, settings geometry.MapSettings, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if data == nil {
		data = &dataset.Data{}
	}
	if data.Transactions == nil {
		data.Transactions = analysis.NewTable(nil)
	}

	return &Handler{
		data:    data,
		layer:   geometry.Summarize(data.Regions, settings),
		summary: analysis.Summarize(data.Transactions),
		logger:  logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"transactions": h.data.Transactions.Len(),
		"regions":      len(h.data.Regions),
	})
}

// GetMap returns the bubble map layer, or the centroid points as GeoJSON with ?format=geojson
func (h *Handler) GetMap(c *gin.Context) {
	if c.Query("format") == "geojson" {
		c.JSON(http.StatusOK, h.layer.FeatureCollection())
		return
	}
	c.JSON(http.StatusOK, h.layer)
}

func (h *Handler) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.summary)
}

func (h *Handler) GetDistricts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"districts": analysis.Districts(h.data.Transactions)})
}

func (h *Handler) GetNeighborhoods(c *gin.Context) {
	district := c.Param("district")
	c.JSON(http.StatusOK, gin.H{
		"district":      district,
		"neighborhoods": analysis.Neighborhoods(h.data.Transactions, district),
	})
}

func (h *Handler) GetSelection(c *gin.Context) {
	sel, ok := h.resolve(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sel)
}

func (h *Handler) GetCompare(c *gin.Context) {
	sel, ok := h.resolve(c)
	if !ok {
		return
	}

	first, second, overall := analysis.Subsets(h.data.Transactions, sel)
	c.JSON(http.StatusOK, CompareResponse{
		Selection:    sel,
		Price:        priceTab(sel, first, second, overall),
		Volume:       volumeTab(sel, first, second, overall),
		Distribution: distributionTab(sel, first, second),
		Correlation:  correlationTab(sel, first, second),
	})
}

func (h *Handler) GetPriceTrend(c *gin.Context) {
	sel, ok := h.resolve(c)
	if !ok {
		return
	}
	first, second, overall := analysis.Subsets(h.data.Transactions, sel)
	c.JSON(http.StatusOK, priceTab(sel, first, second, overall))
}

func (h *Handler) GetVolumeTrend(c *gin.Context) {
	sel, ok := h.resolve(c)
	if !ok {
		return
	}
	first, second, overall := analysis.Subsets(h.data.Transactions, sel)
	c.JSON(http.StatusOK, volumeTab(sel, first, second, overall))
}

func (h *Handler) GetDistribution(c *gin.Context) {
	sel, ok := h.resolve(c)
	if !ok {
		return
	}
	first, second, _ := analysis.Subsets(h.data.Transactions, sel)
	c.JSON(http.StatusOK, distributionTab(sel, first, second))
}

func (h *Handler) GetCorrelation(c *gin.Context) {
	sel, ok := h.resolve(c)
	if !ok {
		return
	}
	first, second, _ := analysis.Subsets(h.data.Transactions, sel)
	c.JSON(http.StatusOK, correlationTab(sel, first, second))
}

// resolve binds the query and resolves the selection, answering 400 itself on bad input
func (h *Handler) resolve(c *gin.Context) (analysis.Selection, bool) {
	var query CompareQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.WithError(err).Warn("Failed to bind selection query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return analysis.Selection{}, false
	}

	req, err := query.Request()
	if err != nil {
		h.logger.WithError(err).Warn("Invalid selection query")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return analysis.Selection{}, false
	}

	return analysis.ResolveSelection(h.data.Transactions, req), true
}

// Request converts the raw query into a selection request. Empty values keep their defaults.
func (q CompareQuery) Request() (analysis.SelectionRequest, error) {
	req := analysis.SelectionRequest{
		District1:     strings.TrimSpace(q.District1),
		Neighborhood1: strings.TrimSpace(q.Dong1),
		District2:     strings.TrimSpace(q.District2),
		Neighborhood2: strings.TrimSpace(q.Dong2),
	}

	var err error
	if req.StartDate, err = optionalDate("start_date", q.StartDate); err != nil {
		return req, err
	}
	if req.EndDate, err = optionalDate("end_date", q.EndDate); err != nil {
		return req, err
	}
	if req.MinYear, err = optionalYear("min_year", q.MinYear); err != nil {
		return req, err
	}
	if req.MaxYear, err = optionalYear("max_year", q.MaxYear); err != nil {
		return req, err
	}

	return req, nil
}

func optionalDate(name, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, err := dataset.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD or YYYYMMDD", name, value)
	}
	return &d, nil
}

func optionalYear(name, value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: expected an integer year", name, value)
	}
	return &year, nil
}

// nullable maps NaN entries to nil so they encode as JSON null
func nullable(values [][]float64) [][]*float64 {
	out := make([][]*float64, len(values))
	for i, row := range values {
		out[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				v := row[j]
				out[i][j] = &v
			}
		}
	}
	return out
}
