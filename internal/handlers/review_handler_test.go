package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/stwalsh4118/hotelmatch/internal/errors"
	"github.com/stwalsh4118/hotelmatch/internal/logger"
	"github.com/stwalsh4118/hotelmatch/internal/middleware"
	"github.com/stwalsh4118/hotelmatch/internal/models"
	"github.com/stwalsh4118/hotelmatch/internal/repository"
	"github.com/stwalsh4118/hotelmatch/internal/review"
	"github.com/stwalsh4118/hotelmatch/internal/services"
	"github.com/stwalsh4118/hotelmatch/internal/subsets"
)

// fakeRepository serves a fixed day from memory.
type fakeRepository struct {
	day     string
	records []models.HotelRecord
	err     error
}

func (f *fakeRepository) LatestDay(context.Context) (string, error) {
	return f.day, f.err
}

func (f *fakeRepository) HotelsForDay(context.Context, string) (repository.HotelLoad, error) {
	records := make([]models.HotelRecord, len(f.records))
	copy(records, f.records)
	return repository.HotelLoad{Records: records}, f.err
}

var autoComment = "name+geo score 0.97"

func fixtureRecords() []models.HotelRecord {
	return []models.HotelRecord{
		{QL2ID: 100, Site: 1, PropertyID: "exp-1", HotelName: "Grand Plaza", Lat: 10, Lon: 20, Geobox: "G1", AutomatchComment: &autoComment},
		{QL2ID: 100, Site: 33, PropertyID: "bk-1", HotelName: "Grand Plaza", Lat: 10.0001, Lon: 20.0001, Geobox: "G1"},
		{QL2ID: 101, Site: 620, PropertyID: "ag-1", HotelName: "Harbor View", Lat: 10.0003, Lon: 20.0003, Geobox: "G1"},
		{QL2ID: 200, Site: 888, PropertyID: "tv-1", HotelName: "Riverside", Lat: 48, Lon: 2, Geobox: "G2"},
	}
}

func newTestService(t *testing.T, repo repository.MatchRepository, start bool) services.ReviewService {
	t.Helper()
	catalog, err := subsets.NewCatalog([]subsets.Source{{Code: 1, Name: "Expedia"}, {Code: 33, Name: "Booking"}})
	require.NoError(t, err)

	svc := services.NewReviewService(repo, services.ReviewOptions{
		Catalog:       catalog,
		DistanceSteps: []int{-1, 50, 100},
	}, logger.New("test"))
	if start {
		require.NoError(t, svc.Start(context.Background()))
	}
	return svc
}

func setupReviewRouter(svc services.ReviewService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.New("test")))

	NewReviewHandler(svc).Register(router.Group("/api/v1"))
	return router
}

func do(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeReview(t *testing.T, w *httptest.ResponseRecorder) ReviewResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp ReviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorResponse {
	t.Helper()
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestReviewHandler_Current(t *testing.T) {
	router := setupReviewRouter(newTestService(t, &fakeRepository{day: "2022-05-01", records: fixtureRecords()}, true))

	resp := decodeReview(t, do(t, router, http.MethodGet, "/api/v1/review", ""))

	assert.Equal(t, "2022-05-01", resp.Day)
	assert.Equal(t, 0, resp.Page)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "G1", resp.Geobox)
	assert.Equal(t, "exp-1", resp.Anchor.PropertyID)
	assert.Equal(t, "Expedia", resp.Anchor.Source)
	assert.Equal(t, review.ModeMatch, resp.Mode)
	assert.Equal(t, -1, resp.MaxDistance)
	require.Len(t, resp.Matched, 2)
	assert.True(t, resp.Matched[0].AutomatchFlag)
	assert.False(t, resp.Matched[1].AutomatchFlag)
	assert.True(t, resp.Anchor.AutomatchFlag)
	assert.Empty(t, resp.Surrounding)
	assert.Contains(t, resp.Headline, "Match # 1 / 2 - Expedia: Grand Plaza")
	assert.Equal(t, review.Center{Lat: 10, Lon: 20}, resp.Center)
	assert.Equal(t, 10.0, resp.MapBounds.MinLat)
	assert.Equal(t, 20.0001, resp.MapBounds.MaxLon)
}

func TestReviewHandler_Navigation(t *testing.T) {
	router := setupReviewRouter(newTestService(t, &fakeRepository{day: "2022-05-01", records: fixtureRecords()}, true))

	resp := decodeReview(t, do(t, router, http.MethodPost, "/api/v1/review/next", ""))
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, "G2", resp.Geobox)

	resp = decodeReview(t, do(t, router, http.MethodPost, "/api/v1/review/next", ""))
	assert.Equal(t, 0, resp.Page)

	resp = decodeReview(t, do(t, router, http.MethodPost, "/api/v1/review/previous", ""))
	assert.Equal(t, 1, resp.Page)

	resp = decodeReview(t, do(t, router, http.MethodPost, "/api/v1/review/advance", `{"direction": 0}`))
	assert.Equal(t, 1, resp.Page)

	resp = decodeReview(t, do(t, router, http.MethodPost, "/api/v1/review/advance", `{"direction": -1}`))
	assert.Equal(t, 0, resp.Page)
}

func TestReviewHandler_AdvanceValidation(t *testing.T) {
	router := setupReviewRouter(newTestService(t, &fakeRepository{day: "2022-05-01", records: fixtureRecords()}, true))

	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "missing direction", body: `{}`, code: apierrors.ErrValidation},
		{name: "out of range direction", body: `{"direction": 2}`, code: apierrors.ErrValidation},
		{name: "malformed json", body: `{"direction":`, code: apierrors.ErrBadRequest},
		{name: "wrong type", body: `{"direction": "next"}`, code: apierrors.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/review/advance", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
		})
	}
}

func TestReviewHandler_CycleDistanceAndToggle(t *testing.T) {
	router := setupReviewRouter(newTestService(t, &fakeRepository{day: "2022-05-01", records: fixtureRecords()}, true))

	resp := decodeReview(t, do(t, router, http.MethodPost, "/api/v1/review/distance/cycle", ""))
	assert.Equal(t, 50, resp.MaxDistance)
	require.Len(t, resp.Surrounding, 1)
	assert.Equal(t, "Harbor View", resp.Surrounding[0].HotelName)
	require.Len(t, resp.SurroundLayers, 1)
	assert.Equal(t, "Unmatched Hotels within 50m (1)", resp.SurroundLayers[0].Name)
	assert.Contains(t, resp.Headline, "and Surrounding properties within 50 meters")

	resp = decodeReview(t, do(t, router, http.MethodPost, "/api/v1/review/mode/toggle", ""))
	assert.Equal(t, review.ModeSurround, resp.Mode)
	require.Len(t, resp.SurroundLayers, 1)
	assert.Equal(t, subsets.OthersLabel+" (1)", resp.SurroundLayers[0].Name)
	require.Len(t, resp.MatchedLayers, 1)
	assert.Equal(t, "Matched Property", resp.MatchedLayers[0].Name)
	assert.Len(t, resp.SurroundingLinks, 1)
}

func TestReviewHandler_Groups(t *testing.T) {
	router := setupReviewRouter(newTestService(t, &fakeRepository{day: "2022-05-01", records: fixtureRecords()}, true))

	w := do(t, router, http.MethodGet, "/api/v1/review/groups", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp GroupsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "G1", resp.Groups[0].Geobox)
	assert.Equal(t, 3, resp.Groups[0].Records)
	assert.Equal(t, "Riverside", resp.Groups[1].Anchor)
}

func TestReviewHandler_Reload(t *testing.T) {
	repo := &fakeRepository{day: "2022-05-01", records: fixtureRecords()}
	router := setupReviewRouter(newTestService(t, repo, true))

	decodeReview(t, do(t, router, http.MethodPost, "/api/v1/review/next", ""))

	repo.day = "2022-05-02"
	resp := decodeReview(t, do(t, router, http.MethodPost, "/api/v1/review/reload", ""))
	assert.Equal(t, "2022-05-02", resp.Day)
	assert.Equal(t, 0, resp.Page)
}

func TestReviewHandler_ReloadNoData(t *testing.T) {
	repo := &fakeRepository{day: "2022-05-01", records: fixtureRecords()}
	router := setupReviewRouter(newTestService(t, repo, true))

	repo.err = errors.New("warehouse down")
	w := do(t, router, http.MethodPost, "/api/v1/review/reload", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apierrors.ErrNoData, decodeError(t, w).Error.Code)

	// the loaded session is still served
	resp := decodeReview(t, do(t, router, http.MethodGet, "/api/v1/review", ""))
	assert.Equal(t, "2022-05-01", resp.Day)
}

func TestReviewHandler_NotStarted(t *testing.T) {
	router := setupReviewRouter(newTestService(t, &fakeRepository{}, false))

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/review"},
		{http.MethodGet, "/api/v1/review/groups"},
		{http.MethodPost, "/api/v1/review/next"},
		{http.MethodPost, "/api/v1/review/distance/cycle"},
	} {
		w := do(t, router, tc.method, tc.path, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, tc.path)

		resp := decodeError(t, w)
		assert.Equal(t, apierrors.ErrNotStarted, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
	}
}
