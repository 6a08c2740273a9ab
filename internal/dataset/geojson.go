package dataset

import (
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"seoulapt/server/internal/models"
)

// readBoundaries parses the district FeatureCollection. Coordinates are taken as
// EPSG:4326 whatever the file declares.
func readBoundaries(path string, logger *logrus.Logger) ([]models.Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	regions, crs, err := ParseBoundaries(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if crs != "" && !isWGS84(crs) {
		logger.WithFields(logrus.Fields{
			"file": path,
			"crs":  crs,
		}).Warn("Boundary file declares a different CRS, treating coordinates as EPSG:4326")
	}

	return regions, nil
}

// ParseBoundaries decodes regions and returns the declared CRS name, if any
func ParseBoundaries(data []byte) ([]models.Region, string, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, "", err
	}

	regions := make([]models.Region, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, "", fmt.Errorf("feature %d: %w: geometry", i, ErrMissingColumn)
		}

		region := models.Region{Geometry: f.Geometry}
		var ok bool
		if region.District, ok = f.Properties[PropertyDistrict].(string); !ok {
			return nil, "", fmt.Errorf("feature %d: %w: %s", i, ErrMissingColumn, PropertyDistrict)
		}
		if region.AveragePrice, err = floatProperty(f, PropertyAveragePrice); err != nil {
			return nil, "", fmt.Errorf("feature %d: %w", i, err)
		}
		if region.AverageArea, err = floatProperty(f, PropertyAverageArea); err != nil {
			return nil, "", fmt.Errorf("feature %d: %w", i, err)
		}
		if region.AverageYearBuilt, err = floatProperty(f, PropertyAverageYearBuilt); err != nil {
			return nil, "", fmt.Errorf("feature %d: %w", i, err)
		}

		regions = append(regions, region)
	}

	return regions, declaredCRS(fc), nil
}

func floatProperty(f *geojson.Feature, key string) (float64, error) {
	v, ok := f.Properties[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingColumn, key)
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %v", ErrMalformedValue, key, v)
	}
	return n, nil
}

// declaredCRS reads the legacy {"crs": {"properties": {"name": ...}}} member
func declaredCRS(fc *geojson.FeatureCollection) string {
	crs, ok := fc.ExtraMembers["crs"].(map[string]interface{})
	if !ok {
		return ""
	}
	props, ok := crs["properties"].(map[string]interface{})
	if !ok {
		return ""
	}
	name, _ := props["name"].(string)
	return name
}

func isWGS84(crs string) bool {
	upper := strings.ToUpper(crs)
	return strings.HasSuffix(upper, "CRS84") || strings.HasSuffix(upper, "4326")
}
