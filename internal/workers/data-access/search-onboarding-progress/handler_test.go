// internal/workers/data-access/search-onboarding-progress/handler_test.go
package searchonboardingprogress

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"onboarding-workers/internal/common/config"
	"onboarding-workers/internal/common/database"
	apperrors "onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/workers/data-access/search-onboarding-progress/queries"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:   5 * time.Second,
		IndexName: "onboarding-progress-test",
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

const searchResponse = `{
	"took": 3,
	"hits": {
		"total": {"value": 2, "relation": "eq"},
		"hits": [
			{"_id": "app-1", "_source": {"applicationId": "app-1", "employeeName": "Ada Lovelace", "employmentType": "W-2", "positionType": "RN", "percentage": 52, "pendingReview": 7, "needsRevision": 1}},
			{"_id": "app-2", "_source": {"applicationId": "app-2", "employeeName": "Grace Hopper", "employmentType": "W-2", "positionType": "RN", "percentage": 30, "pendingReview": 2, "needsRevision": 0}}
		]
	}
}`

type recordedRequest struct {
	path  string
	query url.Values
	body  []byte
}

// newTestHandler serves status and body for every search and records the
// last request.
func newTestHandler(t *testing.T, status int, body string) (*Handler, *recordedRequest) {
	t.Helper()
	last := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last.path = r.URL.Path
		last.query = r.URL.Query()
		last.body, _ = io.ReadAll(r.Body)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	es, err := database.NewElasticsearch(config.ElasticsearchConfig{URL: server.URL})
	require.NoError(t, err)
	return NewHandler(createTestConfig(), es, createTestLogger(t)), last
}

func intPtr(v int) *int { return &v }

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ReturnsApplications(t *testing.T) {
	handler, req := newTestHandler(t, http.StatusOK, searchResponse)

	output, err := handler.Execute(context.Background(), &Input{
		Filters: queries.Filters{
			PositionType:      "RN",
			MinPercentage:     intPtr(25),
			PendingReviewOnly: true,
		},
		SortBy:     "percentage",
		Pagination: queries.Pagination{From: 0, Size: 10},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), output.TotalHits)
	assert.Equal(t, int64(3), output.Took)
	require.Len(t, output.Applications, 2)
	assert.Equal(t, "Ada Lovelace", output.Applications[0].EmployeeName)
	assert.Equal(t, 52, output.Applications[0].Percentage)
	assert.Equal(t, 7, output.Applications[0].PendingReview)
	assert.Equal(t, "app-2", output.Applications[1].ApplicationID)

	assert.Equal(t, "/onboarding-progress-test/_search", req.path)
	assert.Equal(t, "10", req.query.Get("size"))

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(req.body, &sent))
	filter := sent["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	assert.Len(t, filter, 3)
	sort := sent["sort"].([]interface{})
	assert.Equal(t, map[string]interface{}{"percentage": "asc"}, sort[0])
}

func TestHandler_Execute_MissingIndexReturnsEmpty(t *testing.T) {
	handler, _ := newTestHandler(t, http.StatusNotFound,
		`{"error":{"type":"index_not_found_exception"},"status":404}`)

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Empty(t, output.Applications)
	assert.NotNil(t, output.Applications)
	assert.Equal(t, int64(0), output.TotalHits)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		input        *Input
		expectedCode apperrors.ErrorCode
	}{
		{
			name:         "cluster error",
			status:       http.StatusInternalServerError,
			body:         `{"error":"boom"}`,
			input:        &Input{},
			expectedCode: apperrors.ErrCodeSearchQueryFailed,
		},
		{
			name:         "malformed response",
			status:       http.StatusOK,
			body:         `{"hits": [`,
			input:        &Input{},
			expectedCode: apperrors.ErrCodeSearchQueryFailed,
		},
		{
			name:         "inverted percentage range",
			status:       http.StatusOK,
			body:         searchResponse,
			input:        &Input{Filters: queries.Filters{MinPercentage: intPtr(90), MaxPercentage: intPtr(10)}},
			expectedCode: apperrors.ErrCodeInputValidationFailed,
		},
		{
			name:         "unknown sort",
			status:       http.StatusOK,
			body:         searchResponse,
			input:        &Input{SortBy: "salary"},
			expectedCode: apperrors.ErrCodeInputValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t, tt.status, tt.body)

			output, err := handler.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.expectedCode, stdErr.Code)
		})
	}
}

func TestHandler_Execute_Timeout(t *testing.T) {
	handler, _ := newTestHandler(t, http.StatusOK, searchResponse)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := handler.Execute(ctx, &Input{})

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSearchTimeout, stdErr.Code)
}
