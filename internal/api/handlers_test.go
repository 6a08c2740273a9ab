package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoulapt/server/internal/analysis"
	"seoulapt/server/internal/dataset"
	"seoulapt/server/internal/geometry"
	"seoulapt/server/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func testData() *dataset.Data {
	rows := []models.Transaction{
		{District: "강남구", Neighborhood: "역삼동", ContractDate: day(3), Price: 100000, BuildingArea: 80, Floor: 5, YearBuilt: 2010},
		{District: "강남구", Neighborhood: "역삼동", ContractDate: day(4), Price: 120000, BuildingArea: 85, Floor: 7, YearBuilt: 2015},
		{District: "강남구", Neighborhood: "삼성동", ContractDate: day(3), Price: 200000, BuildingArea: 110, Floor: 12, YearBuilt: 0},
		{District: "관악구", Neighborhood: "신림동", ContractDate: day(4), Price: 60000, BuildingArea: 59, Floor: 3, YearBuilt: 1998},
	}
	regions := []models.Region{
		{
			District:         "강남구",
			Geometry:         orb.Polygon{{{127.0, 37.5}, {127.1, 37.5}, {127.1, 37.6}, {127.0, 37.6}, {127.0, 37.5}}},
			AveragePrice:     158170.123,
			AverageArea:      88.456,
			AverageYearBuilt: 2004.789,
		},
	}
	return &dataset.Data{Transactions: analysis.NewTable(rows), Regions: regions}
}

func setupRouter(t *testing.T) (*gin.Engine, *test.Hook) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, hook := test.NewNullLogger()
	settings := geometry.MapSettings{Style: "light", Zoom: 10, SizeMax: 30, ColorScale: "Portland", Token: "pk.test"}
	handler := NewHandler(testData(), settings, logger)
	return NewRouter(handler, NewMetrics(), []string{"*"}, logger), hook
}

func get(t *testing.T, router *gin.Engine, path string, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(t, router, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(4), body["transactions"])
	assert.Equal(t, float64(1), body["regions"])
}

func TestGetMap(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(t, router, "/api/map", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var layer geometry.MapLayer
	decode(t, w, &layer)
	require.Len(t, layer.Regions, 1)
	assert.Equal(t, 158170.12, layer.Regions[0].AveragePrice)
	assert.InDelta(t, 127.05, layer.Center.Longitude, 1e-9)
	assert.Equal(t, "pk.test", layer.Settings.Token)
	assert.Equal(t, "Portland", layer.Settings.ColorScale)

	w = get(t, router, "/api/map", url.Values{"format": {"geojson"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"FeatureCollection"`)
}

func TestGetSummary(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(t, router, "/api/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary models.DashboardSummary
	decode(t, w, &summary)
	assert.Equal(t, 4, summary.TotalTransactions)
	assert.Equal(t, "강남구", summary.BusiestDistrict.District)
	assert.Equal(t, "강남구", summary.PriciestDistrict.District)
}

func TestGetDistrictsAndNeighborhoods(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(t, router, "/api/districts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var districts struct {
		Districts []string `json:"districts"`
	}
	decode(t, w, &districts)
	assert.Equal(t, []string{"강남구", "관악구"}, districts.Districts)

	w = get(t, router, "/api/districts/"+url.PathEscape("강남구")+"/neighborhoods", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var neighborhoods struct {
		District      string   `json:"district"`
		Neighborhoods []string `json:"neighborhoods"`
	}
	decode(t, w, &neighborhoods)
	assert.Equal(t, "강남구", neighborhoods.District)
	assert.Equal(t, []string{"역삼동", "삼성동"}, neighborhoods.Neighborhoods)

	w = get(t, router, "/api/districts/"+url.PathEscape("종로구")+"/neighborhoods", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &neighborhoods)
	assert.Empty(t, neighborhoods.Neighborhoods)
}

func TestGetSelectionDefaults(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(t, router, "/api/selection", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		District1    string   `json:"district1"`
		Dong1        string   `json:"dong1"`
		District2    string   `json:"district2"`
		Dong2        string   `json:"dong2"`
		Dong2Options []string `json:"dong2_options"`
		Dates        struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"dates"`
		Years models.YearRange `json:"years"`
	}
	decode(t, w, &body)

	assert.Equal(t, "강남구", body.District1)
	assert.Equal(t, "역삼동", body.Dong1)
	assert.Equal(t, "강남구", body.District2)
	assert.Equal(t, "삼성동", body.Dong2)
	assert.Equal(t, []string{"삼성동"}, body.Dong2Options)
	assert.Equal(t, "2024-01-03", body.Dates.Start)
	assert.Equal(t, "2024-01-04", body.Dates.End)
	assert.Equal(t, models.YearRange{Min: 1998, Max: 2015}, body.Years)
}

func TestGetCompare(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(t, router, "/api/compare", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body CompareResponse
	decode(t, w, &body)

	assert.Equal(t, "강남구 역삼동", body.Price.First.Region.Label)
	assert.Equal(t, []DatePoint{{Date: "2024-01-03", Value: 100000}, {Date: "2024-01-04", Value: 120000}}, body.Price.First.Points)
	// the default year range starts at 1998, the unknown year of 삼성동 falls outside it
	assert.Empty(t, body.Price.Second.Points)
	assert.Equal(t, []DatePoint{{Date: "2024-01-03", Value: 100000}, {Date: "2024-01-04", Value: 90000}}, body.Price.Overall)

	assert.Equal(t, []CountPoint{{Date: "2024-01-03", Count: 1}, {Date: "2024-01-04", Count: 1}}, body.Volume.First.Points)
	assert.Equal(t, []DatePoint{{Date: "2024-01-03", Value: 1}, {Date: "2024-01-04", Value: 1}}, body.Volume.OverallAverage)

	assert.Equal(t, []float64{100000, 120000}, body.Distribution.First.Prices)
	require.NotNil(t, body.Distribution.First.Box)
	assert.Equal(t, 110000.0, body.Distribution.First.Box.Median)
	assert.Nil(t, body.Distribution.Second.Box)

	assert.Equal(t, analysis.CorrelationFields, body.Correlation.First.Fields)
}

func TestGetCompareYearRangeIncludesUnknownYears(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(t, router, "/api/compare/price", url.Values{"min_year": {"0"}})
	require.Equal(t, http.StatusOK, w.Code)

	var tab PriceTab
	decode(t, w, &tab)
	assert.Equal(t, []DatePoint{{Date: "2024-01-03", Value: 200000}}, tab.Second.Points)
}

func TestGetCorrelationEncodesUndefinedAsNull(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(t, router, "/api/compare/correlation", url.Values{"min_year": {"0"}})
	require.Equal(t, http.StatusOK, w.Code)

	var tab CorrelationTab
	decode(t, w, &tab)

	// two rows moving together: every entry is defined
	require.Len(t, tab.First.Values, 4)
	for _, row := range tab.First.Values {
		for _, v := range row {
			require.NotNil(t, v)
			assert.InDelta(t, 1.0, *v, 1e-9)
		}
	}

	// a single row: nothing is defined
	for _, row := range tab.Second.Values {
		for _, v := range row {
			assert.Nil(t, v)
		}
	}
	assert.Contains(t, w.Body.String(), "null")
}

func TestCompareTabsAcceptCompactDates(t *testing.T) {
	router, _ := setupRouter(t)

	for _, path := range []string{"/api/compare", "/api/compare/price", "/api/compare/volume", "/api/compare/distribution", "/api/compare/correlation"} {
		t.Run(path, func(t *testing.T) {
			w := get(t, router, path, url.Values{"start_date": {"20240104"}, "end_date": {"2024-01-04"}})
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}

	w := get(t, router, "/api/compare/volume", url.Values{"start_date": {"20240104"}})
	var tab VolumeTab
	decode(t, w, &tab)
	assert.Equal(t, []CountPoint{{Date: "2024-01-04", Count: 1}}, tab.First.Points)
}

func TestCompareRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		params url.Values
		want   string
	}{
		{"Slashed date", url.Values{"start_date": {"2024/01/03"}}, "start_date"},
		{"Impossible date", url.Values{"end_date": {"2024-02-30"}}, "end_date"},
		{"Text year", url.Values{"min_year": {"new"}}, "min_year"},
		{"Fractional year", url.Values{"max_year": {"2010.5"}}, "max_year"},
	}

	router, hook := setupRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook.Reset()
			w := get(t, router, "/api/compare", tt.params)

			require.Equal(t, http.StatusBadRequest, w.Code)
			var body map[string]string
			decode(t, w, &body)
			assert.Contains(t, body["error"], tt.want)
			assert.NotEmpty(t, hook.AllEntries())
		})
	}
}

func TestCompareUnknownRegionFallsBack(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(t, router, "/api/compare/price", url.Values{"district1": {"종로구"}, "dong1": {"청운동"}})
	require.Equal(t, http.StatusOK, w.Code)

	var tab PriceTab
	decode(t, w, &tab)
	assert.Equal(t, "강남구", tab.First.Region.District)
	assert.Equal(t, "역삼동", tab.First.Region.Dong)
}

func TestCompareSecondSideWithoutOptions(t *testing.T) {
	router, _ := setupRouter(t)

	// 관악구 has a single dong, picking it twice leaves the second side empty
	w := get(t, router, "/api/compare/price", url.Values{"district1": {"관악구"}, "district2": {"관악구"}})
	require.Equal(t, http.StatusOK, w.Code)

	var tab PriceTab
	decode(t, w, &tab)
	assert.Equal(t, "", tab.Second.Region.Dong)
	assert.NotNil(t, tab.Second.Points)
	assert.Empty(t, tab.Second.Points)
}

func TestRequestIDAndCORS(t *testing.T) {
	router, hook := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, generated, hook.LastEntry().Data["request_id"])

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORSRestrictedOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS([]string{"https://dashboard.example.com"}))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	get(t, router, "/api/districts", nil)
	get(t, router, "/api/compare", url.Values{"min_year": {"x"}})

	w := get(t, router, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `dashboard_http_requests_total{method="GET",route="/api/districts",status="200"} 1`)
	assert.Contains(t, body, `dashboard_http_requests_total{method="GET",route="/api/compare",status="400"} 1`)
	assert.True(t, strings.Contains(body, "dashboard_http_request_duration_seconds_bucket"))
}

func TestNewHandlerWithoutData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	router := NewRouter(NewHandler(nil, geometry.MapSettings{}, logger), NewMetrics(), nil, logger)

	w := get(t, router, "/api/compare", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body CompareResponse
	decode(t, w, &body)
	assert.Empty(t, body.Price.Overall)
	assert.Empty(t, body.Selection.District1)
}
