// internal/workers/onboarding/resolve-required-forms/handler_test.go
package resolverequiredforms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/onboarding"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return LoadConfig()
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		expectedTotal  int
		expectedExtras []string
	}{
		{
			name:           "W-2 PCA",
			input:          &Input{EmploymentType: "W-2", PositionType: "PCA"},
			expectedTotal:  23,
			expectedExtras: []string{onboarding.KeyW4Form, onboarding.KeyJobDescriptionPCA, onboarding.KeyPCATrainingQuestions},
		},
		{
			name:           "1099 CNA",
			input:          &Input{EmploymentType: "1099", PositionType: "CNA"},
			expectedTotal:  22,
			expectedExtras: []string{onboarding.KeyW9Form, onboarding.KeyJobDescriptionCNA},
		},
		{
			name:           "lower-case position",
			input:          &Input{EmploymentType: "W-2", PositionType: "rn"},
			expectedTotal:  22,
			expectedExtras: []string{onboarding.KeyJobDescriptionRN, onboarding.KeyEmployeeDetailsUpload},
		},
		{
			name:          "nothing selected",
			input:         &Input{},
			expectedTotal: 19,
		},
		{
			name:          "unknown position",
			input:         &Input{EmploymentType: "W-2", PositionType: "Surgeon"},
			expectedTotal: 20,
		},
	}

	handler := NewHandler(createTestConfig(), createTestLogger(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedTotal, output.TotalCount)
			assert.Len(t, output.RequiredForms, tt.expectedTotal)
			assert.Len(t, output.RequiredFormIDs, tt.expectedTotal)
			for _, key := range tt.expectedExtras {
				assert.Contains(t, output.RequiredForms, key)
			}
		})
	}
}

func TestHandler_Execute_FormIDs(t *testing.T) {
	handler := NewHandler(createTestConfig(), createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{EmploymentType: "W-2"})
	require.NoError(t, err)

	assert.Equal(t, onboarding.KeyPersonalInformation, output.RequiredForms[0])
	assert.Equal(t, "personal-information", output.RequiredFormIDs[0])
	assert.Equal(t, "w4-form", output.RequiredFormIDs[len(output.RequiredFormIDs)-1])
}
