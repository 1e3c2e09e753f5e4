package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/msmahdinejad/smart-monitoring-system/internal/config"
	"github.com/msmahdinejad/smart-monitoring-system/internal/models"
)

func liveConfig(baseURL string) *config.Config {
	return &config.Config{
		AIEnabled:     true,
		AIBaseURL:     baseURL,
		AIAPIKey:      "test-key",
		AIModel:       "test-model",
		AIMaxTokens:   500,
		AITemperature: 0.3,
		AITimeout:     2 * time.Second,
	}
}

func TestAnalyzeReturnsResponseContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 3 {
			t.Fatalf("expected one message with prompt and two images")
		}
		for _, part := range req.Messages[0].Content[1:] {
			if part.ImageURL == nil || !strings.HasPrefix(part.ImageURL.URL, "data:image/jpeg;base64,") {
				t.Error("image parts must be base64 data URLs")
			}
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "STATUS: NORMAL\nCONFIDENCE: 70"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(liveConfig(srv.URL))
	got := c.Analyze(context.Background(), []byte("base"), []byte("curr"), "compare")
	if got != "STATUS: NORMAL\nCONFIDENCE: 70" {
		t.Errorf("Analyze = %q", got)
	}
}

func TestAnalyzeAPIErrorSurfacesAsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}))
	defer srv.Close()

	c := NewClient(liveConfig(srv.URL))
	got := c.Analyze(context.Background(), nil, nil, "p")
	if !strings.HasPrefix(got, "API Error 429") {
		t.Errorf("Analyze = %q, want API error text", got)
	}

	// Error text still parses to safe defaults.
	r := Parse(got)
	if r.Status != models.StatusNormal || r.ThreatLevel != 0 {
		t.Errorf("error text parsed to %s/%d", r.Status, r.ThreatLevel)
	}
}

func TestAnalyzeConnectionFailureSurfacesAsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(liveConfig(srv.URL))
	got := c.Analyze(context.Background(), nil, nil, "p")
	if !strings.HasPrefix(got, "Analysis Error:") {
		t.Errorf("Analyze = %q, want analysis error text", got)
	}
}

func TestAnalyzeEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(liveConfig(srv.URL))
	got := c.Analyze(context.Background(), nil, nil, "p")
	if !strings.Contains(got, "empty response") {
		t.Errorf("Analyze = %q", got)
	}
}

func TestAnalyzeTestModeSkipsEndpoint(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := liveConfig(srv.URL)
	cfg.TestMode = true
	cfg.TestPattern = "fixed"
	cfg.FixedResponse = "danger"

	c := NewClient(cfg)
	if !c.TestModeActive() {
		t.Fatal("TestModeActive false with TestMode set")
	}
	got := c.Analyze(context.Background(), nil, nil, "p")
	if called {
		t.Error("test mode hit the real endpoint")
	}

	r := Parse(got)
	if r.Status != models.StatusDanger || r.ThreatLevel != 9 {
		t.Errorf("fixed danger scenario parsed to %s/%d", r.Status, r.ThreatLevel)
	}
}

func TestDisabledAIImpliesTestMode(t *testing.T) {
	cfg := liveConfig("http://unused")
	cfg.AIEnabled = false
	if !NewClient(cfg).TestModeActive() {
		t.Error("disabled AI should force test mode")
	}
}
