package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"ohana/internal/config"
	"ohana/internal/core"
	"ohana/internal/infra/persistence/memory"
	"ohana/internal/platform/logger"
)

var ohanaEnv = []string{
	"OHANA_STORAGE_DRIVER", "OHANA_SQLITE_PATH", "OHANA_POSTGRES_DSN", "OHANA_BLOB_DRIVER",
	"OHANA_BLOB_ROOT", "OHANA_BLOB_KEY", "OHANA_BLOB_S3_BUCKET", "OHANA_BLOB_S3_REGION",
	"OHANA_BLOB_S3_ENDPOINT", "OHANA_BLOB_S3_PATH_STYLE", "OHANA_HTTP_ADDR", "OHANA_HTTP_TIMEOUT",
	"OHANA_LOG_MODE", "OHANA_METRICS_ENABLED", "OHANA_TRACE_FILE",
}

// cleanEnv blanks every OHANA_* variable so the defaults apply; empty values are ignored by config.Load.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range ohanaEnv {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const familyDoc = `{
  "people": [
    {"id": 1, "names": [{"first": "Keoni", "last": "Kahale"}], "children": [2]},
    {"id": 2, "names": [{"first": "Malia", "last": "Kahale"}], "parents": [1], "birth": {"place_id": 10}}
  ],
  "locations": [
    {"id": 10, "name": "Hilo", "type": "CITY"}
  ]
}`

func TestCheckReportsSampleSnapshot(t *testing.T) {
	cleanEnv(t)
	out, _, err := execute(t, "check")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.HasPrefix(out, "people=4 locations=4 edges=2 ") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCheckJSON(t *testing.T) {
	cleanEnv(t)
	out, _, err := execute(t, "check", "--json")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var stats core.SnapshotStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if stats.People != 4 || stats.Locations != 4 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestSeedThenCheckSQLite(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()
	t.Setenv("OHANA_STORAGE_DRIVER", "sqlite")
	t.Setenv("OHANA_SQLITE_PATH", filepath.Join(dir, "data", "ohana.db"))
	doc := writeFile(t, dir, "family.json", familyDoc)

	out, _, err := execute(t, "seed", "--from", doc)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "seeded sqlite backend: 2 people, 1 locations") {
		t.Fatalf("unexpected seed output %q", out)
	}

	out, _, err = execute(t, "check")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.HasPrefix(out, "people=2 locations=1 edges=1 ") {
		t.Fatalf("unexpected check output %q", out)
	}
}

func TestSeedRejectsInvalidDocument(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()
	t.Setenv("OHANA_STORAGE_DRIVER", "sqlite")
	t.Setenv("OHANA_SQLITE_PATH", filepath.Join(dir, "ohana.db"))
	doc := writeFile(t, dir, "bad.yaml", "people:\n  - id: 1\n    parents: [1]\n  - id: 1\n")

	_, stderr, err := execute(t, "seed", "--from", doc)
	var buildErr *core.BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected build error, got %v", err)
	}
	if !strings.Contains(stderr, "unique_identity") {
		t.Fatalf("expected problems on stderr, got %q", stderr)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "ohana.db")); !os.IsNotExist(statErr) {
		t.Fatalf("invalid document must not create the backend")
	}
}

func TestSeedRequiresFromAndPersistentBackend(t *testing.T) {
	cleanEnv(t)
	if _, _, err := execute(t, "seed"); err == nil {
		t.Fatalf("expected missing --from error")
	}
	doc := writeFile(t, t.TempDir(), "family.json", familyDoc)
	_, _, err := execute(t, "seed", "--from", doc)
	if err == nil || !strings.Contains(err.Error(), "memory driver") {
		t.Fatalf("expected memory driver refusal, got %v", err)
	}
}

func TestConfigFlagSelectsBackend(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "ohana.yaml", "storage:\n  driver: blob\n  blob:\n    driver: fs\n    root: "+filepath.Join(dir, "blobs")+"\n    key: family.json\n")
	doc := writeFile(t, dir, "family.json", familyDoc)

	if _, _, err := execute(t, "--config", cfgPath, "seed", "--from", doc); err != nil {
		t.Fatalf("seed: %v", err)
	}
	out, _, err := execute(t, "-c", cfgPath, "check")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.HasPrefix(out, "people=2 locations=1 ") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, _, err := execute(t, "--config", filepath.Join(dir, "missing.yaml"), "check"); err == nil {
		t.Fatalf("expected missing config error")
	}
}

func TestServerRoutesAPIAndMetrics(t *testing.T) {
	snap, err := core.Build(memory.Sample())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	srv, err := newServer(config.Default(), snap, logger.NewFromCore(zapcore.NewNopCore()), nil)
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	get := func(path string) (int, string) {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	if code, body := get("/healthz"); code != http.StatusOK || !strings.Contains(body, `"status":"ok"`) {
		t.Fatalf("healthz: %d %s", code, body)
	}
	if code, body := get("/api/v1/people/1"); code != http.StatusOK || !strings.Contains(body, "Jason") {
		t.Fatalf("person: %d %s", code, body)
	}
	code, body := get("/metrics")
	if code != http.StatusOK {
		t.Fatalf("metrics status %d", code)
	}
	want := `ohana_query_operations_total{operation="` + core.OpGetPerson + `",status="success"} 1`
	if !strings.Contains(body, want) {
		t.Fatalf("metrics missing %q", want)
	}
}

func TestServerWithoutMetrics(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = false
	cfg.HTTP.RequestTimeout = 0
	srv, err := newServer(cfg, core.EmptySnapshot(), nil, nil)
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics, got %d", rec.Code)
	}
	if srv.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", srv.Addr)
	}
}

func TestServerWritesTraceLines(t *testing.T) {
	snap, err := core.Build(memory.Sample())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	path := filepath.Join(t.TempDir(), "traces", "queries.jsonl")
	f, err := openTraceFile(path)
	if err != nil {
		t.Fatalf("open trace: %v", err)
	}
	srv, err := newServer(config.Default(), snap, nil, f)
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	for _, target := range []string{"/api/v1/people/1", "/api/v1/search/places?text=kona"} {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", target, rec.Code)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close trace: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two spans, got %q", data)
	}
	var entry core.JSONTraceEntry
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("decode span: %v", err)
	}
	if entry.Operation != core.OpSearchPlaces || entry.Status != "success" {
		t.Fatalf("unexpected span %+v", entry)
	}
}

func TestSeedAcceptsUpperCaseDriver(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()
	doc := writeFile(t, dir, "family.json", familyDoc)

	t.Setenv("OHANA_STORAGE_DRIVER", "MEMORY")
	if _, _, err := execute(t, "seed", "--from", doc); err == nil || !strings.Contains(err.Error(), "memory driver") {
		t.Fatalf("expected memory driver refusal, got %v", err)
	}

	t.Setenv("OHANA_STORAGE_DRIVER", "SQLite")
	t.Setenv("OHANA_SQLITE_PATH", filepath.Join(dir, "ohana.db"))
	out, _, err := execute(t, "seed", "--from", doc)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "seeded sqlite backend") {
		t.Fatalf("unexpected output %q", out)
	}
}
