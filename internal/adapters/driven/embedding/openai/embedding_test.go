package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// fakeAPI answers /embeddings with one-dimensional vectors holding each
// input's length, returned in reverse order to exercise index mapping.
type fakeAPI struct {
	mu         sync.Mutex
	batchSizes []int
	auth       []string
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		f.mu.Unlock()

		if r.URL.Path == "/models" {
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}
		assert.Equal(t, "/embeddings", r.URL.Path)

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.batchSizes = append(f.batchSizes, len(req.Input))
		f.mu.Unlock()

		type item struct {
			Embedding []float64 `json:"embedding"`
			Index     int       `json:"index"`
		}
		var data []item
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Embedding: []float64{float64(len(req.Input[i]))}, Index: i})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}
}

func newTestService(t *testing.T, api *fakeAPI, batch int) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	svc, err := NewEmbeddingService(Config{
		APIKey:            "sk-test",
		BaseURL:           srv.URL,
		BatchSize:         batch,
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewEmbeddingService_Dimensions(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, svc.Dimensions())

	svc, err = NewEmbeddingService(Config{APIKey: "k", Model: "custom"})
	require.NoError(t, err)
	assert.Equal(t, 1536, svc.Dimensions())
}

func TestEmbedBatch_HonoursBatchSize(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api, 2)

	vecs, err := svc.EmbedBatch(t.Context(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{{1}, {2}, {3}, {4}, {5}}, vecs)
	assert.Equal(t, []int{2, 2, 1}, api.batchSizes)
	for _, h := range api.auth {
		assert.Equal(t, "Bearer sk-test", h)
	}
}

func TestEmbed(t *testing.T) {
	svc := newTestService(t, &fakeAPI{}, 0)

	vec, err := svc.Embed(t.Context(), "four")
	require.NoError(t, err)
	assert.Equal(t, []float32{4}, vec)
}

func TestEmbedBatch_Empty(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api, 0)

	vecs, err := svc.EmbedBatch(t.Context(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
	assert.Empty(t, api.batchSizes)
}

func TestEmbedBatch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()
	svc, err := NewEmbeddingService(Config{APIKey: "bad", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.EmbedBatch(t.Context(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key")
}

func TestEmbedBatch_MissingEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1],"index":0}]}`))
	}))
	defer srv.Close()
	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.EmbedBatch(t.Context(), []string{"x", "y"})
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api, 0)

	require.NoError(t, svc.Ping(t.Context()))
	assert.Equal(t, []string{"Bearer sk-test"}, api.auth)
}
