package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"seoulapt/server/config"
	"seoulapt/server/internal/models"
)

// Center is the map viewport center
type Center struct {
	Longitude float64 `json:"lon"`
	Latitude  float64 `json:"lat"`
}

// MapSettings holds the presentation options of the bubble map
type MapSettings struct {
	Style      string `json:"style"`
	Zoom       int    `json:"zoom"`
	SizeMax    int    `json:"size_max"`
	ColorScale string `json:"color_scale"`
	Token      string `json:"token"`
}

// MapLayer is everything the front end needs to draw the district bubbles
type MapLayer struct {
	Regions  []models.RegionSummary `json:"regions"`
	Center   Center                 `json:"center"`
	Settings MapSettings            `json:"settings"`
}

// SettingsFromConfig copies the map section of the configuration. An empty token is passed through.
func SettingsFromConfig(cfg *config.Config) MapSettings {
	return MapSettings{
		Style:      cfg.Map.Style,
		Zoom:       cfg.Map.Zoom,
		SizeMax:    cfg.Map.SizeMax,
		ColorScale: cfg.Map.ColorScale,
		Token:      cfg.Map.Token,
	}
}

// Summarize computes the centroid, rounded averages and hover label of every region,
// in input order, and centers the map on the mean centroid
func Summarize(regions []models.Region, settings MapSettings) MapLayer {
	layer := MapLayer{
		Regions:  make([]models.RegionSummary, 0, len(regions)),
		Settings: settings,
	}

	for _, r := range regions {
		summary := SummarizeRegion(r)
		layer.Center.Longitude += summary.Longitude
		layer.Center.Latitude += summary.Latitude
		layer.Regions = append(layer.Regions, summary)
	}

	if n := float64(len(layer.Regions)); n > 0 {
		layer.Center.Longitude /= n
		layer.Center.Latitude /= n
	}

	return layer
}

// SummarizeRegion prepares a single region for the map
func SummarizeRegion(r models.Region) models.RegionSummary {
	centroid := Centroid(r.Geometry)

	summary := models.RegionSummary{
		District:         r.District,
		Longitude:        centroid.Lon(),
		Latitude:         centroid.Lat(),
		AveragePrice:     Round(r.AveragePrice),
		AverageArea:      Round(r.AverageArea),
		AverageYearBuilt: Round(r.AverageYearBuilt),
	}
	summary.HoverText = HoverText(summary)

	return summary
}

// Centroid is the area weighted planar centroid in lon/lat, the zero point for a nil geometry
func Centroid(g orb.Geometry) orb.Point {
	if g == nil {
		return orb.Point{}
	}
	centroid, _ := planar.CentroidArea(g)
	return centroid
}

// Round rounds to two decimals the way numpy does: the scaled binary value goes to the
// nearest integer, halves to even. 2.675 is stored just below the half and gives 2.67.
func Round(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// HoverText renders the label shown when hovering a district bubble
func HoverText(s models.RegionSummary) string {
	return s.District + "<br>" +
		"평균 물건 금액: " + formatNumber(s.AveragePrice) + "<br>" +
		"평균 건물 면적: " + formatNumber(s.AverageArea) + "<br>" +
		"평균 건축년도: " + formatNumber(s.AverageYearBuilt)
}

// formatNumber prints the shortest representation, keeping a trailing .0 on whole numbers
func formatNumber(v float64) string {
	s := decimal.NewFromFloat(v).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FeatureCollection exports the layer as centroid points carrying the rounded averages
func (l MapLayer) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range l.Regions {
		feature := geojson.NewFeature(orb.Point{r.Longitude, r.Latitude})
		feature.Properties = geojson.Properties{
			"district":           r.District,
			"average_price":      r.AveragePrice,
			"average_area":       r.AverageArea,
			"average_year_built": r.AverageYearBuilt,
			"hover_text":         r.HoverText,
		}
		fc.Append(feature)
	}
	return fc
}

// SaveFeatureCollection writes the exported layer to path, creating the directory
func SaveFeatureCollection(l MapLayer, path string, logger *logrus.Logger) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(l.FeatureCollection()); err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"regions": len(l.Regions),
			"path":    path,
		}).Info("Saved district centroids")
	}
	return nil
}
