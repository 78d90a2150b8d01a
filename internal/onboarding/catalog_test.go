// internal/onboarding/catalog_test.go
package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRequiredForms(t *testing.T) {
	tests := []struct {
		name           string
		employmentType string
		positionType   string
		expectedCount  int
		expectedTail   []string
		notExpected    []string
	}{
		{
			name:           "W-2 PCA",
			employmentType: EmploymentW2,
			positionType:   PositionPCA,
			expectedCount:  23,
			expectedTail:   []string{KeyW4Form, KeyJobDescriptionPCA, KeyEmployeeDetailsUpload, KeyPCATrainingQuestions},
			notExpected:    []string{KeyW9Form},
		},
		{
			name:           "1099 CNA",
			employmentType: Employment1099,
			positionType:   PositionCNA,
			expectedCount:  22,
			expectedTail:   []string{KeyW9Form, KeyJobDescriptionCNA, KeyEmployeeDetailsUpload},
			notExpected:    []string{KeyW4Form, KeyPCATrainingQuestions},
		},
		{
			name:           "W-2 RN",
			employmentType: EmploymentW2,
			positionType:   PositionRN,
			expectedCount:  22,
			expectedTail:   []string{KeyW4Form, KeyJobDescriptionRN, KeyEmployeeDetailsUpload},
		},
		{
			name:           "1099 LPN lower case",
			employmentType: Employment1099,
			positionType:   " lpn ",
			expectedCount:  22,
			expectedTail:   []string{KeyW9Form, KeyJobDescriptionLPN, KeyEmployeeDetailsUpload},
		},
		{
			name:           "employment type is case-insensitive",
			employmentType: " w-2 ",
			positionType:   "cna",
			expectedCount:  22,
			expectedTail:   []string{KeyW4Form, KeyJobDescriptionCNA, KeyEmployeeDetailsUpload},
			notExpected:    []string{KeyW9Form},
		},
		{
			name:           "W-2 without position",
			employmentType: EmploymentW2,
			positionType:   "",
			expectedCount:  20,
			expectedTail:   []string{KeyI9Form, KeyW4Form},
		},
		{
			name:           "unknown position adds nothing",
			employmentType: EmploymentW2,
			positionType:   "janitor",
			expectedCount:  20,
			expectedTail:   []string{KeyW4Form},
		},
		{
			name:           "nothing selected",
			employmentType: "",
			positionType:   "",
			expectedCount:  19,
			expectedTail:   []string{KeyOrientationChecklist, KeyI9Form},
			notExpected:    []string{KeyW4Form, KeyW9Form},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := ResolveRequiredForms(tt.employmentType, tt.positionType)

			require.Len(t, keys, tt.expectedCount)
			assert.Equal(t, tt.expectedTail, keys[len(keys)-len(tt.expectedTail):])
			for _, key := range tt.notExpected {
				assert.NotContains(t, keys, key)
			}
		})
	}
}

func TestResolveRequiredForms_BaseKeysFirst(t *testing.T) {
	keys := ResolveRequiredForms(EmploymentW2, PositionPCA)

	assert.Equal(t, BaseForms(), keys[:19])
	assert.Equal(t, KeyPersonalInformation, keys[0])
	assert.Equal(t, KeyI9Form, keys[18])
}

func TestResolveRequiredForms_NoDuplicates(t *testing.T) {
	for _, employment := range []string{"", EmploymentW2, Employment1099} {
		for _, position := range []string{"", PositionPCA, PositionCNA, PositionLPN, PositionRN} {
			keys := ResolveRequiredForms(employment, position)
			seen := make(map[string]bool, len(keys))
			for _, key := range keys {
				assert.False(t, seen[key], "duplicate %s for %s/%s", key, employment, position)
				seen[key] = true
			}
		}
	}
}

func TestResolveRequiredForms_Deterministic(t *testing.T) {
	first := ResolveRequiredForms(Employment1099, PositionPCA)
	second := ResolveRequiredForms(Employment1099, PositionPCA)
	assert.Equal(t, first, second)

	first[0] = "mutated"
	assert.Equal(t, KeyPersonalInformation, ResolveRequiredForms(Employment1099, PositionPCA)[0])
}

func TestCatalogMapping(t *testing.T) {
	assert.Equal(t, KeyPersonalInformation, BackendKey("personal-information"))
	assert.Equal(t, KeyI9Form, BackendKey("i9-form"))
	assert.Equal(t, KeyJobDescriptionPCA, BackendKey(KeyJobDescriptionPCA))
	assert.Equal(t, "somethingElse", BackendKey("somethingElse"))

	assert.Equal(t, "tb-symptom-screen", FormID(KeyTBSymptomScreen))
	assert.Equal(t, KeyEmployeeDetailsUpload, FormID(KeyEmployeeDetailsUpload))

	def, ok := Lookup("w4-form")
	require.True(t, ok)
	assert.Equal(t, KeyW4Form, def.Key)

	_, ok = Lookup("missing-form")
	assert.False(t, ok)
}

func TestCatalogCoversEveryRequiredKey(t *testing.T) {
	for _, employment := range []string{EmploymentW2, Employment1099} {
		for _, position := range []string{PositionPCA, PositionCNA, PositionLPN, PositionRN} {
			for _, key := range ResolveRequiredForms(employment, position) {
				_, ok := Lookup(key)
				assert.True(t, ok, "no catalog entry for %s", key)
			}
		}
	}
}
