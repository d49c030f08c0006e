package analyzer

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjx20/arabic-analyzer/config"
	"github.com/zjx20/arabic-analyzer/gemini"
	"github.com/zjx20/arabic-analyzer/metrics"
)

func TestNewCaller(t *testing.T) {
	cfg := config.Default()

	caller, err := NewCaller(cfg)
	require.NoError(t, err)
	assert.IsType(t, &gemini.RESTCaller{}, caller)

	cfg.Transport = config.TransportSDK
	caller, err = NewCaller(cfg)
	require.NoError(t, err)
	assert.IsType(t, &gemini.SDKCaller{}, caller)

	cfg.Transport = "grpc"
	_, err = NewCaller(cfg)
	assert.EqualError(t, err, `unknown transport "grpc"`)
}

func TestNewServer_FallsBackAcrossKeys(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		mu.Lock()
		seen = append(seen, key)
		mu.Unlock()

		if key != "good" {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
			return
		}
		var req gemini.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(&gemini.Response{Candidates: []*gemini.Candidate{{
			Content: &gemini.Content{Parts: []*gemini.Part{{Text: "echo: " + req.Contents[0].Parts[0].Text}}},
		}}})
	}))
	defer upstream.Close()

	cfg := config.Default()
	cfg.APIKeys = []string{"expired", "good", "unused"}
	cfg.VisionEndpoint = upstream.URL + "/vision"
	cfg.TextEndpoint = upstream.URL + "/text"
	cfg.RequestTimeout = 5 * time.Second
	collector := metrics.NewCollector(nil)

	srv, err := NewServer(cfg, collector)
	require.NoError(t, err)

	code, out := serve(t, srv, jsonRequest("/generate_arabic", `{"prompt":"قل مرحبا"}`))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "echo: قل مرحبا", out["generated_text"])

	mu.Lock()
	assert.Equal(t, []string{"expired", "good"}, seen)
	mu.Unlock()

	code, out = serve(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3.0, out["api_keys_count"])

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `arabic_analyzer_upstream_attempts_total{credential="1",result="failure"} 1`)
	assert.Contains(t, string(body), `arabic_analyzer_upstream_attempts_total{credential="2",result="success"} 1`)
	assert.Contains(t, string(body), `arabic_analyzer_http_requests_total{route="/generate_arabic",status="200"} 1`)
}

func TestNewServer_AllKeysFail(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer upstream.Close()

	cfg := config.Default()
	cfg.APIKeys = []string{"a", "b"}
	cfg.TextEndpoint = upstream.URL
	srv, err := NewServer(cfg, nil)
	require.NoError(t, err)

	code, out := serve(t, srv, jsonRequest("/analyze_arabic", `{"text":"نص"}`))
	assert.Equal(t, http.StatusInternalServerError, code)
	assertError(t, out, "all credentials failed")
}
