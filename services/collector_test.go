package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognify-health/cognify_api/shared"
)

func testCollector(baseURL string) *CollectorService {
	return &CollectorService{
		baseURL: baseURL,
		token:   "test-token",
		client:  &http.Client{Timeout: 2 * time.Second},
	}
}

func TestCollectorSubmitSuccess(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := testCollector(srv.URL)
	payload := PairMatchResult{ExerciseID: "mm_abc", Difficulty: "novice", FinalScore: 9500}
	err := svc.Submit(context.Background(), shared.VariantPairMatch, payload)
	require.NoError(t, err, "2xx response should not error")

	assert.Equal(t, "/cognitive-training/memory-match/submit", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)

	var decoded PairMatchResult
	require.NoError(t, sonic.Unmarshal(gotBody, &decoded))
	assert.Equal(t, payload, decoded, "body should round-trip the payload")
}

func TestCollectorVariantPaths(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := testCollector(srv.URL)
	cases := map[string]string{
		shared.VariantPairMatch:      "/cognitive-training/memory-match/submit",
		shared.VariantCategoryNaming: "/cognitive-training/category-naming/submit",
		shared.VariantSequence:       "/cognitive-training/sequence-ordering/submit",
	}
	for variant, wantPath := range cases {
		require.NoError(t, svc.Submit(context.Background(), variant, struct{}{}))
		assert.Equal(t, wantPath, gotPath, "variant %s", variant)
	}
}

func TestCollectorSubmitUnknownVariant(t *testing.T) {
	svc := testCollector("http://collector.invalid")
	err := svc.Submit(context.Background(), "tetris", struct{}{})

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.False(t, subErr.Retryable, "unknown variant cannot be fixed by retrying")
}

func TestCollectorStatusClassification(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		message   string
		retryable bool
	}{
		{"bad request", http.StatusBadRequest, "Invalid game data. Please try submitting again.", true},
		{"unauthorized", http.StatusUnauthorized, "Please log in to save your progress.", false},
		{"server error", http.StatusInternalServerError, "The server had a problem saving your results. Please try again.", true},
		{"bad gateway", http.StatusBadGateway, "The server had a problem saving your results. Please try again.", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			svc := testCollector(srv.URL)
			err := svc.Submit(context.Background(), shared.VariantSequence, struct{}{})

			var subErr *SubmissionError
			require.ErrorAs(t, err, &subErr)
			assert.Equal(t, tc.status, subErr.StatusCode)
			assert.Equal(t, tc.message, subErr.Message)
			assert.Equal(t, tc.retryable, subErr.Retryable)
		})
	}
}

func TestCollectorNetworkFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	svc := testCollector(srv.URL)
	err := svc.Submit(context.Background(), shared.VariantCategoryNaming, struct{}{})

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.True(t, subErr.Retryable)
	assert.Equal(t, "Unable to reach the server. Please check your connection and try again.", subErr.Message)
}

func TestCollectorUnconfiguredBaseURL(t *testing.T) {
	svc := &CollectorService{client: http.DefaultClient}
	err := svc.Submit(context.Background(), shared.VariantPairMatch, struct{}{})

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.True(t, subErr.Retryable)
}
