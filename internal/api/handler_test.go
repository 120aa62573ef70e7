//nolint:noctx // Test file uses http.NewRequest for simplicity
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewatch/platewatch/internal/models"
	"github.com/platewatch/platewatch/internal/service/analytics"
	"github.com/platewatch/platewatch/internal/service/tagging"
	"github.com/platewatch/platewatch/pkg/logger"
)

// Mock Tagging Service
type mockTaggingService struct {
	result  *tagging.Result
	err     error
	lastReq tagging.Request
}

func (m *mockTaggingService) Submit(_ context.Context, req tagging.Request) (*tagging.Result, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// Mock Analytics Service
type mockAnalyticsService struct {
	plates  []analytics.PlateCount
	ranks   []analytics.UserRank
	regions []analytics.RegionCount
	taggers []analytics.TaggerCount
	reasons []analytics.ReasonCount
	summary analytics.Summary
	err     error
}

func (m *mockAnalyticsService) PlateLeaderboard(_ context.Context, _ models.Polarity, _ analytics.SortDirection) ([]analytics.PlateCount, error) {
	return m.plates, m.err
}

func (m *mockAnalyticsService) ExperienceLeaderboard(_ context.Context, _ analytics.SortDirection) ([]analytics.UserRank, error) {
	return m.ranks, m.err
}

func (m *mockAnalyticsService) Regions(_ context.Context) ([]analytics.RegionCount, error) {
	return m.regions, m.err
}

func (m *mockAnalyticsService) HourlyHistogram(_ context.Context) (analytics.Histogram, error) {
	return analytics.Histogram{Counts: make([]int, 24)}, m.err
}

func (m *mockAnalyticsService) WeekdayHistogram(_ context.Context) (analytics.Histogram, error) {
	return analytics.Histogram{Counts: make([]int, 7)}, m.err
}

func (m *mockAnalyticsService) TopTaggers(_ context.Context, _ int) ([]analytics.TaggerCount, error) {
	return m.taggers, m.err
}

func (m *mockAnalyticsService) TopReasons(_ context.Context, _ int) ([]analytics.ReasonCount, error) {
	return m.reasons, m.err
}

func (m *mockAnalyticsService) Summary(_ context.Context) (analytics.Summary, error) {
	return m.summary, m.err
}

// Mock Badge Service
type mockBadgeService struct {
	userBadges   map[uint][]models.UserBadge
	badges       map[uint]*models.Badge
	badgeHolders map[uint][]models.User
}

func newMockBadgeService() *mockBadgeService {
	return &mockBadgeService{
		userBadges:   make(map[uint][]models.UserBadge),
		badges:       make(map[uint]*models.Badge),
		badgeHolders: make(map[uint][]models.User),
	}
}

func (m *mockBadgeService) GetUserBadges(_ context.Context, userID uint) ([]models.UserBadge, error) {
	return m.userBadges[userID], nil
}

func (m *mockBadgeService) GetBadgeCatalog(_ context.Context) ([]models.Badge, error) {
	badges := make([]models.Badge, 0, len(m.badges))
	for _, badge := range m.badges {
		badges = append(badges, *badge)
	}
	return badges, nil
}

func (m *mockBadgeService) GetBadgeByID(_ context.Context, badgeID uint) (*models.Badge, error) {
	badge, exists := m.badges[badgeID]
	if !exists {
		return nil, fmt.Errorf("badge not found")
	}
	return badge, nil
}

func (m *mockBadgeService) GetBadgeHolders(_ context.Context, badgeID uint) ([]models.User, error) {
	return m.badgeHolders[badgeID], nil
}

// Mock User Getter
type mockUserGetter struct {
	users map[uint]*models.User
}

func (m *mockUserGetter) GetByID(id uint) (*models.User, error) {
	user, exists := m.users[id]
	if !exists {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

// Test Setup

type testServices struct {
	tagging   *mockTaggingService
	analytics *mockAnalyticsService
	badges    *mockBadgeService
	users     *mockUserGetter
}

func setupTestRouter() (*gin.Engine, *testServices) {
	gin.SetMode(gin.TestMode)

	services := &testServices{
		tagging:   &mockTaggingService{},
		analytics: &mockAnalyticsService{},
		badges:    newMockBadgeService(),
		users:     &mockUserGetter{users: make(map[uint]*models.User)},
	}
	handler := NewHandlerWithInterfaces(
		services.tagging,
		services.analytics,
		services.badges,
		services.users,
		logger.Nop(),
	)
	return NewRouter(handler, nil, "test"), services
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getJSON(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

// Tests

func TestSubmitTag_Success(t *testing.T) {
	router, services := setupTestRouter()
	services.tagging.result = &tagging.Result{
		TagID:     "11111111-1111-1111-1111-111111111111",
		ExpGained: 25,
		NewLevel:  1,
		NewBadges: []models.Badge{},
	}

	w := postJSON(router, "/api/v1/tags", gin.H{
		"creator_id":   1,
		"plate":        "ABC123",
		"jurisdiction": "NY",
		"polarity":     "negative",
		"reason":       "ran a red light",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	response := decode(t, w)
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "ABC123", services.tagging.lastReq.Plate)
	assert.Equal(t, models.PolarityNegative, services.tagging.lastReq.Polarity)
}

func TestSubmitTag_MissingFields(t *testing.T) {
	router, _ := setupTestRouter()

	w := postJSON(router, "/api/v1/tags", gin.H{"plate": "ABC123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitTag_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantInBody string
	}{
		{"invalid jurisdiction", models.ErrInvalidJurisdiction, http.StatusBadRequest, "state"},
		{"invalid plate", models.ErrInvalidPlate, http.StatusBadRequest, "3 to 8"},
		{"missing reason", models.ErrMissingReason, http.StatusBadRequest, "reason"},
		{"self tag", models.ErrSelfTag, http.StatusUnprocessableEntity, "your own plate"},
		{"insufficient balance", models.ErrInsufficientBalance, http.StatusConflict, "shop"},
		{"unknown submitter", models.ErrUserNotFound, http.StatusNotFound, "not found"},
		{"partial failure stays generic", errors.New("debit write failed"), http.StatusInternalServerError, "try again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, services := setupTestRouter()
			services.tagging.err = fmt.Errorf("wrapped: %w", tt.err)

			w := postJSON(router, "/api/v1/tags", gin.H{
				"creator_id":   1,
				"plate":        "ABC123",
				"jurisdiction": "NY",
				"polarity":     "negative",
				"reason":       "x",
			})

			assert.Equal(t, tt.wantStatus, w.Code)
			response := decode(t, w)
			assert.Contains(t, response["error"], tt.wantInBody)
		})
	}
}

func TestGetPlateLeaderboard_Success(t *testing.T) {
	router, services := setupTestRouter()
	services.analytics.plates = []analytics.PlateCount{
		{Jurisdiction: "NY", Plate: "AAA111", Total: 3, Negative: 3},
		{Jurisdiction: "CA", Plate: "BBB222", Total: 1, Positive: 1},
	}

	w := getJSON(router, "/api/v1/leaderboard/plates?polarity=negative&sort=desc")
	assert.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	assert.Equal(t, "negative", response["polarity"])
	assert.Equal(t, float64(2), response["total_plates"])
}

func TestGetPlateLeaderboard_LimitTruncates(t *testing.T) {
	router, services := setupTestRouter()
	services.analytics.plates = []analytics.PlateCount{
		{Jurisdiction: "NY", Plate: "AAA111", Total: 3, Negative: 3},
		{Jurisdiction: "CA", Plate: "BBB222", Total: 1, Positive: 1},
	}

	w := getJSON(router, "/api/v1/leaderboard/plates?limit=1")
	assert.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	rows := response["leaderboard"].([]interface{})
	assert.Len(t, rows, 1)
	assert.Equal(t, float64(2), response["total_plates"])
}

func TestGetPlateLeaderboard_InvalidParams(t *testing.T) {
	router, _ := setupTestRouter()

	w := getJSON(router, "/api/v1/leaderboard/plates?polarity=sideways")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = getJSON(router, "/api/v1/leaderboard/plates?sort=upward")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetExperienceLeaderboard_ServiceError(t *testing.T) {
	router, services := setupTestRouter()
	services.analytics.err = errors.New("store unavailable")

	w := getJSON(router, "/api/v1/leaderboard/experience")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetSummary_Success(t *testing.T) {
	router, services := setupTestRouter()
	services.analytics.summary = analytics.Summary{TotalTags: 10, PositiveTags: 4, NegativeTags: 6, PositivePercent: 40}

	w := getJSON(router, "/api/v1/analytics/summary")
	assert.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	summary := response["summary"].(map[string]interface{})
	assert.Equal(t, float64(40), summary["positive_percent"])
}

func TestGetUserStats(t *testing.T) {
	router, services := setupTestRouter()
	services.users.users[1] = &models.User{
		ID: 1, Username: "alice", Experience: 500, Level: 4,
		PositiveCredits: 2, NegativeCredits: 1,
	}
	services.badges.userBadges[1] = []models.UserBadge{{UserID: 1, BadgeID: 1}}

	w := getJSON(router, "/api/v1/users/1/stats")
	assert.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	assert.Equal(t, "alice", response["username"])
	assert.Equal(t, float64(500), response["experience"])
	assert.Equal(t, float64(1), response["badge_count"])
}

func TestGetUserStats_NotFound(t *testing.T) {
	router, _ := setupTestRouter()

	w := getJSON(router, "/api/v1/users/42/stats")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUserStats_InvalidID(t *testing.T) {
	router, _ := setupTestRouter()

	w := getJSON(router, "/api/v1/users/abc/stats")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBadgeByID_NotFound(t *testing.T) {
	router, _ := setupTestRouter()

	w := getJSON(router, "/api/v1/badges/7")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBadgeHolders_Limit(t *testing.T) {
	router, services := setupTestRouter()
	services.badges.badgeHolders[1] = []models.User{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob"},
		{ID: 3, Username: "carol"},
	}

	w := getJSON(router, "/api/v1/badges/1/holders?limit=2")
	assert.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	assert.Equal(t, float64(3), response["total_holders"])
	holders := response["holders"].([]interface{})
	assert.Len(t, holders, 2)
}

func TestHealth(t *testing.T) {
	router, _ := setupTestRouter()

	w := getJSON(router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth_Unhealthy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHandlerWithInterfaces(
		&mockTaggingService{}, &mockAnalyticsService{}, newMockBadgeService(),
		&mockUserGetter{users: map[uint]*models.User{}}, logger.Nop(),
	)
	router := NewRouter(handler, func() error { return errors.New("db down") }, "test")

	w := getJSON(router, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
