// internal/common/observability/observability_test.go
package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	dto "github.com/prometheus/client_model/go"
)

func hasFamily(families []*dto.MetricFamily, prefix string) bool {
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), prefix) {
			return true
		}
	}
	return false
}

func TestObservability_Spans(t *testing.T) {
	recorder := tracetest.NewInMemoryExporter()
	obs, err := New("onboarding-test",
		WithRegisterer(promclient.NewRegistry()),
		WithSpanExporter(recorder),
	)
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	_, span := obs.StartSpan(context.Background(), "compute-onboarding-progress", 42)
	EndSpan(span, nil)

	_, span = obs.StartSpan(context.Background(), "update-form-status", 43)
	EndSpan(span, errors.New("locked"))

	spans := recorder.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "compute-onboarding-progress", spans[0].Name)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}

func TestObservability_MetricsExported(t *testing.T) {
	reg := promclient.NewRegistry()
	obs, err := New("onboarding-test", WithRegisterer(reg))
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	ctx := context.Background()
	obs.RecordJobProcessed(ctx, "classify-form-status", "completed")
	obs.RecordJobDuration(ctx, "classify-form-status", 15*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	assert.True(t, hasFamily(families, "jobs_processed"))
	assert.True(t, hasFamily(families, "jobs_duration"))
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	ctx, span := obs.StartSpan(context.Background(), "resolve-required-forms", 1)
	EndSpan(span, nil)

	obs.RecordJobProcessed(ctx, "resolve-required-forms", "completed")
	assert.NoError(t, obs.Shutdown(ctx))
}
