package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-learn/internal/platform/config"
)

const subjectYAML = `id: math
name: Mathematics
chapters:
  - id: m9
    name: Numbers
    grade: "9"
questions:
  - id: q1
    chapter_id: m9
    grade: "9"
    text: 2 + 2?
    options: ["3", "4"]
    answer: 1
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "math.yaml"), []byte(subjectYAML), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return &config.Config{
		Store:          config.StoreConfig{Backend: config.BackendMemory},
		Quiz:           config.QuizConfig{MaxCount: 10},
		Log:            config.LogConfig{Level: "info", Format: "json"},
		CurriculumPath: dir,
		Timezone:       "UTC",
	}
}

func TestHealthEndpoints(t *testing.T) {
	a, err := build(t.Context(), testConfig(t))
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	defer a.close()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "readyz returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			a.handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestBuild_ServesCurriculum(t *testing.T) {
	a, err := build(t.Context(), testConfig(t))
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	defer a.close()

	body := strings.NewReader(`{"chapter_ids":["m9"],"count":1,"grade":"9"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/quizzes", body)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"id":"q1"`) {
		t.Errorf("body = %s, want question q1", rec.Body.String())
	}

	// Leaderboard is off without the cache.
	req = httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil)
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("leaderboard status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestBuild_BadTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timezone = "Mars/Olympus"
	if _, err := build(t.Context(), cfg); err == nil {
		t.Fatal("build() error = nil, want timezone error")
	}
}

func TestNewLogger(t *testing.T) {
	cfg := testConfig(t)

	var buf bytes.Buffer
	newLogger(&buf, cfg).Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json logger wrote %q", buf.String())
	}

	buf.Reset()
	cfg.Log.Format = "text"
	cfg.Log.Level = "warn"
	l := newLogger(&buf, cfg)
	l.Info("dropped")
	l.Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "msg=kept") {
		t.Errorf("text logger wrote %q", buf.String())
	}
}
