// internal/workers/data-access/index-onboarding-progress/handler_test.go
package indexonboardingprogress

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"onboarding-workers/internal/common/config"
	"onboarding-workers/internal/common/database"
	apperrors "onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/models"
	"onboarding-workers/internal/onboarding"
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

// fakeElasticsearch records requests and answers index calls.
type fakeElasticsearch struct {
	mu          sync.Mutex
	requests    []string
	documents   map[string]models.ProgressDocument
	indexExists bool
	failIndex   bool
	// createError, when set, answers the next index creation with a 400
	createError string
	indexDelay  time.Duration
}

func (f *fakeElasticsearch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch {
	case r.Method == http.MethodHead:
		if f.indexExists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && !strings.Contains(r.URL.Path, "/_doc/"):
		if f.createError != "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"` + f.createError + `","reason":"rejected"},"status":400}`))
			f.createError = ""
			return
		}
		f.indexExists = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case strings.Contains(r.URL.Path, "/_doc/"):
		if f.indexDelay > 0 {
			time.Sleep(f.indexDelay)
		}
		if f.failIndex {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
			return
		}
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		body, _ := io.ReadAll(r.Body)
		var doc models.ProgressDocument
		_ = json.Unmarshal(body, &doc)

		result := "created"
		if _, ok := f.documents[id]; ok {
			result = "updated"
		}
		f.documents[id] = doc
		_, _ = w.Write([]byte(`{"_id":"` + id + `","result":"` + result + `"}`))
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func newTestHandler(t *testing.T, fake *fakeElasticsearch) *Handler {
	t.Helper()
	if fake.documents == nil {
		fake.documents = map[string]models.ProgressDocument{}
	}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	es, err := database.NewElasticsearch(config.ElasticsearchConfig{URL: server.URL})
	require.NoError(t, err)
	return NewHandler(createTestConfig(), es, createTestLogger(t))
}

func createTestInput() *Input {
	return &Input{
		ApplicationID: "app-7",
		EmployeeName:  "Ada Lovelace",
		Snapshot: onboarding.Snapshot{
			Application: onboarding.SnapshotApplication{
				EmploymentType: "1099",
				Status:         "in_progress",
				CompletedForms: []string{"personalInformation"},
				CreatedAt:      "2024-03-01T09:00:00Z",
			},
			Forms: map[string]onboarding.FormRecord{
				"positionType": {Status: "approved", Fields: map[string]interface{}{"positionAppliedFor": "rn"}},
				"i9Form":       {Status: "rejected", Fields: map[string]interface{}{}},
				"w9Form":       {Status: "submitted", Fields: map[string]interface{}{}},
			},
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_IndexesProgress(t *testing.T) {
	fake := &fakeElasticsearch{}
	handler := newTestHandler(t, fake)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.Equal(t, "app-7", output.DocumentID)
	assert.Equal(t, "created", output.Result)
	// personalInformation, positionType and w9Form out of 22
	assert.Equal(t, 14, output.Percentage)

	doc := fake.documents["app-7"]
	assert.Equal(t, "Ada Lovelace", doc.EmployeeName)
	assert.Equal(t, "1099", doc.EmploymentType)
	assert.Equal(t, "RN", doc.PositionType)
	assert.Equal(t, 3, doc.CompletedCount)
	assert.Equal(t, 22, doc.TotalCount)
	assert.Equal(t, 1, doc.PendingReview)
	assert.Equal(t, 1, doc.NeedsRevision)
	assert.False(t, doc.IndexedAt.IsZero())

	assert.Equal(t, []string{
		"HEAD /onboarding-progress-test",
		"PUT /onboarding-progress-test",
		"PUT /onboarding-progress-test/_doc/app-7",
	}, fake.requests)
}

func TestHandler_Execute_ReindexUpdatesDocument(t *testing.T) {
	fake := &fakeElasticsearch{indexExists: true}
	handler := newTestHandler(t, fake)

	_, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.Equal(t, "updated", output.Result)
	// the index check runs once per handler
	assert.Equal(t, []string{
		"HEAD /onboarding-progress-test",
		"PUT /onboarding-progress-test/_doc/app-7",
		"PUT /onboarding-progress-test/_doc/app-7",
	}, fake.requests)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_IndexFailure(t *testing.T) {
	fake := &fakeElasticsearch{indexExists: true, failIndex: true}
	handler := newTestHandler(t, fake)

	output, err := handler.Execute(context.Background(), createTestInput())

	assert.Nil(t, output)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeIndexOperationFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_MissingApplicationID(t *testing.T) {
	handler := newTestHandler(t, &fakeElasticsearch{})

	_, err := handler.Execute(context.Background(), &Input{})

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInputValidationFailed, stdErr.Code)
}

func TestHandler_Execute_NormalizesKeywordFields(t *testing.T) {
	fake := &fakeElasticsearch{indexExists: true}
	handler := newTestHandler(t, fake)

	input := createTestInput()
	input.Snapshot.Application.Status = " In_Progress "
	input.Snapshot.Application.EmploymentType = "w-2"

	_, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	doc := fake.documents["app-7"]
	assert.Equal(t, "in_progress", doc.ApplicationStatus)
	assert.Equal(t, "W-2", doc.EmploymentType)
}

func TestHandler_Execute_IndexCreationRejected(t *testing.T) {
	fake := &fakeElasticsearch{createError: "mapper_parsing_exception"}
	handler := newTestHandler(t, fake)

	output, err := handler.Execute(context.Background(), createTestInput())
	assert.Nil(t, output)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeIndexOperationFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "mapper_parsing_exception")
	assert.Empty(t, fake.documents)

	// the next job checks the index again instead of assuming it exists
	output, err = handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, "created", output.Result)
	assert.Equal(t, []string{
		"HEAD /onboarding-progress-test",
		"PUT /onboarding-progress-test",
		"HEAD /onboarding-progress-test",
		"PUT /onboarding-progress-test",
		"PUT /onboarding-progress-test/_doc/app-7",
	}, fake.requests)
}

func TestHandler_Execute_IndexCreationRaceIsIgnored(t *testing.T) {
	fake := &fakeElasticsearch{createError: "resource_already_exists_exception"}
	handler := newTestHandler(t, fake)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, "created", output.Result)
}

func TestHandler_Execute_IndexTimeout(t *testing.T) {
	fake := &fakeElasticsearch{indexExists: true, indexDelay: 300 * time.Millisecond}
	handler := newTestHandler(t, fake)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, handler.ensureIndex(context.Background()))

	output, err := handler.Execute(ctx, createTestInput())

	assert.Nil(t, output)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeIndexOperationFailed, stdErr.Code)
	assert.Equal(t, true, stdErr.Metadata["timeout"])
	assert.True(t, stdErr.Retryable)
}
