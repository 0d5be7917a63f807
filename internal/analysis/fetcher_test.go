// internal/analysis/fetcher_test.go
package analysis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smarttender-engine/internal/common/errors"
	"smarttender-engine/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readyPayload = `{
	"tender_requirements": {
		"role": "Cloud Engineer",
		"experience_years": 5,
		"skills": ["AWS", "Docker"]
	},
	"candidates": [
		{
			"id": "c1",
			"score": 72,
			"llm_used": true,
			"profile": {"name": "Jordan Doe", "email": "jordan@example.com"},
			"matchingInfo": {
				"matching_explanation": {
					"experience_match": "Meets",
					"sector_match": "Yes",
					"matched_skills": ["aws certified"],
					"missing_skills": ["Docker"],
					"certification_match": []
				}
			},
			"bidDraft": "We propose Jordan."
		},
		{
			"id": "c2",
			"score": 31,
			"profile": {"name": "Sam Roe"},
			"matchingInfo": {
				"matching_explanation": {
					"experience_match": "Does not meet",
					"sector_match": "No",
					"matched_skills": [],
					"missing_skills": ["AWS", "Docker"]
				}
			}
		}
	],
	"total_candidates": 2
}`

func newTestFetcher(t *testing.T, url string) *Fetcher {
	t.Helper()
	return NewFetcher(&Config{AnalyzeURL: url, Timeout: 2 * time.Second}, logger.NewTestLogger(t))
}

// ==========================
// Classification Tests
// ==========================

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantClass Classification
		wantCode  errors.ErrorCode
	}{
		{
			name:      "ready with candidates",
			status:    http.StatusOK,
			body:      readyPayload,
			wantClass: ClassReady,
		},
		{
			name:      "empty roster",
			status:    http.StatusOK,
			body:      `{"tender_requirements": {"skills": []}, "candidates": []}`,
			wantClass: ClassEmpty,
		},
		{
			name:      "missing candidates key is empty, not malformed",
			status:    http.StatusOK,
			body:      `{"tender_requirements": {"skills": ["AWS"]}}`,
			wantClass: ClassEmpty,
		},
		{
			name:      "server error with structured body",
			status:    http.StatusInternalServerError,
			body:      `{"error": "No tender uploaded"}`,
			wantClass: ClassServerError,
			wantCode:  errors.ErrCodeServerFailure,
		},
		{
			name:      "server error with opaque body",
			status:    http.StatusBadGateway,
			body:      `upstream exploded`,
			wantClass: ClassServerError,
			wantCode:  errors.ErrCodeServerFailure,
		},
		{
			name:      "malformed json on 2xx",
			status:    http.StatusOK,
			body:      `{"candidates": [`,
			wantClass: ClassServerError,
			wantCode:  errors.ErrCodeInvalidPayload,
		},
		{
			name:      "schema violation: score out of range",
			status:    http.StatusOK,
			body:      `{"tender_requirements": {"skills": []}, "candidates": [{"id": "c1", "score": 140, "profile": {"name": "X"}}]}`,
			wantClass: ClassServerError,
			wantCode:  errors.ErrCodeInvalidPayload,
		},
		{
			name:      "schema violation: missing candidate id",
			status:    http.StatusOK,
			body:      `{"tender_requirements": {"skills": []}, "candidates": [{"score": 50, "profile": {"name": "X"}}]}`,
			wantClass: ClassServerError,
			wantCode:  errors.ErrCodeInvalidPayload,
		},
		{
			name:      "schema violation: requirements without skills",
			status:    http.StatusOK,
			body:      `{"tender_requirements": {}, "candidates": []}`,
			wantClass: ClassServerError,
			wantCode:  errors.ErrCodeInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.status, []byte(tt.body))

			assert.Equal(t, tt.wantClass, result.Classification)
			if tt.wantCode != "" {
				require.NotNil(t, result.Err)
				assert.Equal(t, tt.wantCode, result.Err.Code)
			}
		})
	}
}

func TestClassify_ReadyCarriesRosterAndRequirements(t *testing.T) {
	result := Classify(http.StatusOK, []byte(readyPayload))

	require.Equal(t, ClassReady, result.Classification)
	require.Len(t, result.Roster, 2)
	assert.Equal(t, "c1", result.Roster[0].ID)
	assert.Equal(t, 72, result.Roster[0].Score)
	require.NotNil(t, result.Roster[0].LLMUsed)
	assert.True(t, *result.Roster[0].LLMUsed)
	assert.Nil(t, result.Roster[1].LLMUsed, "absent llm_used must stay unknown, not false")
	assert.Equal(t, []string{"AWS", "Docker"}, result.Requirements.Skills)
	assert.Equal(t, 5, result.Requirements.ExperienceYears)

	assert.NotNil(t, result.Roster[0].Explanation().CertificationMatch)
	assert.Nil(t, result.Roster[1].Explanation().CertificationMatch)
}

func TestClassify_NeverReadyWithEmptyRoster(t *testing.T) {
	result := Classify(http.StatusOK, []byte(`{"tender_requirements": {"skills": ["AWS"]}, "candidates": []}`))

	assert.Equal(t, ClassEmpty, result.Classification)
	assert.Empty(t, result.Roster)

	// Absent candidates key classifies the same way.
	result = Classify(http.StatusOK, []byte(`{"tender_requirements": {"skills": ["AWS"]}}`))

	assert.Equal(t, ClassEmpty, result.Classification)
	assert.Nil(t, result.Err)
}

func TestClassify_ServerErrorMessage(t *testing.T) {
	t.Run("error field extracted", func(t *testing.T) {
		result := Classify(http.StatusInternalServerError, []byte(`{"error": "No tender uploaded"}`))
		assert.Equal(t, "No tender uploaded", result.Err.Message)
	})

	t.Run("generic fallback", func(t *testing.T) {
		result := Classify(http.StatusBadGateway, []byte(`boom`))
		assert.Equal(t, "Server error: 502", result.Err.Message)
	})
}

func TestClassify_IsDeterministic(t *testing.T) {
	first := Classify(http.StatusOK, []byte(readyPayload))
	second := Classify(http.StatusOK, []byte(readyPayload))

	assert.Equal(t, first.Classification, second.Classification)
	assert.Equal(t, first.Roster, second.Roster)
}

// ==========================
// Fetch Transport Tests
// ==========================

func TestFetch_Ready(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(readyPayload))
	}))
	defer server.Close()

	result := newTestFetcher(t, server.URL+"/api/intelligence/analyze").Fetch(context.Background())

	assert.Equal(t, ClassReady, result.Classification)
	assert.Len(t, result.Roster, 2)
}

func TestFetch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result := newTestFetcher(t, url).Fetch(context.Background())

	assert.Equal(t, ClassTransportError, result.Classification)
	require.NotNil(t, result.Err)
	assert.Equal(t, errors.ErrCodeTransportFailure, result.Err.Code)
	assert.Equal(t, "Cannot connect to SmartTender backend. Is it running?", result.Err.Message)
}

func TestFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Analysis pipeline crashed"}`))
	}))
	defer server.Close()

	result := newTestFetcher(t, server.URL).Fetch(context.Background())

	assert.Equal(t, ClassServerError, result.Classification)
	require.NotNil(t, result.Err)
	assert.Equal(t, "Analysis pipeline crashed", result.Err.Message)
}
