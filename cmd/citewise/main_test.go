// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/citewise/internal/citations"
	"github.com/tomtom215/citewise/internal/oracle"
	"github.com/tomtom215/citewise/internal/recommend"
)

const testCitations = `{
  "Ada": ["10.1000/d1", "10.1000/d2"],
  "Babbage": ["10.1000/d2", "10.1000/d3"],
  "Curie": ["10.1000/d1", "10.1000/d3", "10.1000/d4"]
}`

const testKNNExport = `{
  "k": 2,
  "min_k": 1,
  "rating_scale": {"min": 0, "max": 1},
  "global_mean": 1,
  "means": {"Ada": 1, "Babbage": 1, "Curie": 1},
  "ratings": {
    "Ada": {"10.1000/d1": 1, "10.1000/d2": 1},
    "Babbage": {"10.1000/d2": 1, "10.1000/d3": 1},
    "Curie": {"10.1000/d1": 1, "10.1000/d3": 1, "10.1000/d4": 1}
  },
  "similarities": {"Ada": {"Babbage": 0.5, "Curie": 0.5}}
}`

const testMFExport = `{
  "factors": 1,
  "rating_scale": {"min": 0, "max": 5},
  "global_mean": 1,
  "item_bias": {"10.1000/d3": 0.5, "10.1000/d4": 1},
  "user_factors": {"Ada": [1]},
  "item_factors": {"10.1000/d3": [0.5], "10.1000/d4": [0.25]}
}`

// workspace is a temp directory holding citations, model exports and stores.
type workspace struct {
	dir       string
	citations string
	knn       string
	mf        string
}

func setupWorkspace(t *testing.T) *workspace {
	t.Helper()

	dir := t.TempDir()
	ws := &workspace{
		dir:       dir,
		citations: filepath.Join(dir, "author_dois.json"),
		knn:       filepath.Join(dir, "knn.json"),
		mf:        filepath.Join(dir, "mf.json"),
	}
	for path, content := range map[string]string{
		ws.citations: testCitations,
		ws.knn:       testKNNExport,
		ws.mf:        testMFExport,
	} {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	t.Chdir(dir)
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("CITATIONS_SOURCE", "json")
	t.Setenv("CITATIONS_PATH", ws.citations)
	t.Setenv("SNAPSHOT_DIR", filepath.Join(dir, "snapshot"))
	t.Setenv("MODELS_DIR", filepath.Join(dir, "models"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("METRICS_TEXTFILE_PATH", "")
	return ws
}

// run executes the CLI and returns the exit code with captured output.
func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	var out, errOut bytes.Buffer
	code = execute(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()

	code, stdout, stderr := run(t, args...)
	if code != exitOK {
		t.Fatalf("citewise %s exited %d: %s", strings.Join(args, " "), code, stderr)
	}
	return stdout
}

func (ws *workspace) importModels(t *testing.T) {
	t.Helper()
	mustRun(t, "models", "import", oracle.KindKNN, ws.knn)
	mustRun(t, "models", "import", oracle.KindMF, ws.mf)
}

func TestAuthorsAndDOIs(t *testing.T) {
	setupWorkspace(t)

	out := mustRun(t, "authors")
	for _, author := range []string{"Ada", "Babbage", "Curie"} {
		if !strings.Contains(out, author) {
			t.Errorf("authors output missing %s: %s", author, out)
		}
	}

	var doc struct {
		DOIs []string `json:"dois"`
	}
	if err := json.Unmarshal([]byte(mustRun(t, "dois", "--json")), &doc); err != nil {
		t.Fatalf("decode dois: %v", err)
	}
	want := []string{"10.1000/d1", "10.1000/d2", "10.1000/d3", "10.1000/d4"}
	if !reflect.DeepEqual(doc.DOIs, want) {
		t.Errorf("dois = %v, want %v", doc.DOIs, want)
	}
}

func TestRecommendCommands(t *testing.T) {
	ws := setupWorkspace(t)
	ws.importModels(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"knn", []string{"knn", "Ada"}, []string{"10.1000/d3", "10.1000/d4"}},
		{"knn limited", []string{"knn", "Ada", "-n", "1"}, []string{"10.1000/d3"}},
		{"mf", []string{"mf", "Ada", "-n", "1"}, []string{"10.1000/d4"}},
		{"combined", []string{"recommend", "Ada", "-n", "2"}, []string{"10.1000/d3", "10.1000/d4"}},
		{"combined odd budget", []string{"recommend", "Ada", "-n", "1"}, []string{}},
		{"single candidate", []string{"recommend", "Curie"}, []string{"10.1000/d2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp RecommendResponse
			out := mustRun(t, append(tt.args, "--json")...)
			if err := json.Unmarshal([]byte(out), &resp); err != nil {
				t.Fatalf("decode response: %v\n%s", err, out)
			}
			if !reflect.DeepEqual(resp.Recommendations, tt.want) {
				t.Errorf("recommendations = %v, want %v", resp.Recommendations, tt.want)
			}
		})
	}
}

func TestRecommend_HumanOutput(t *testing.T) {
	ws := setupWorkspace(t)
	ws.importModels(t)

	out := mustRun(t, "recommend", "Ada")
	if !strings.Contains(out, "Recommendations for Ada (2)") {
		t.Errorf("missing title: %s", out)
	}
	if !strings.Contains(out, "10.1000/d3") || !strings.Contains(out, "10.1000/d4") {
		t.Errorf("missing items: %s", out)
	}

	out = mustRun(t, "recommend", "Ada", "-n", "0")
	if !strings.Contains(out, "No recommendations.") {
		t.Errorf("expected empty message: %s", out)
	}
}

func TestRecommend_UnknownAuthorExitCode(t *testing.T) {
	ws := setupWorkspace(t)
	ws.importModels(t)

	for _, command := range []string{"recommend", "knn", "mf"} {
		code, _, stderr := run(t, command, "Nobody")
		if code != exitUnknownAuthor {
			t.Errorf("%s exit code = %d, want %d", command, code, exitUnknownAuthor)
		}
		if !strings.Contains(stderr, "unknown author") {
			t.Errorf("%s stderr = %q", command, stderr)
		}
	}
}

func TestRecommend_Failures(t *testing.T) {
	setupWorkspace(t)

	code, _, stderr := run(t, "recommend", "Ada")
	if code != exitFailure || !strings.Contains(stderr, "model not found") {
		t.Errorf("missing models: code %d, stderr %q", code, stderr)
	}

	code, _, stderr = run(t, "knn", "Ada", "-n", "-1")
	if code != exitFailure || !strings.Contains(stderr, "invalid request") {
		t.Errorf("negative count: code %d, stderr %q", code, stderr)
	}

	code, _, _ = run(t, "recommend")
	if code != exitFailure {
		t.Errorf("missing author argument: code %d, want %d", code, exitFailure)
	}
}

func TestModelsCommands(t *testing.T) {
	ws := setupWorkspace(t)
	ws.importModels(t)
	mustRun(t, "models", "import", oracle.KindKNN, ws.knn)
	mustRun(t, "models", "import", oracle.KindKNN, ws.knn, "--name", "knn-alt")

	out := mustRun(t, "models", "list")
	for _, want := range []string{"knn", "knn-alt", "mf", "NAME"} {
		if !strings.Contains(out, want) {
			t.Errorf("models list missing %q: %s", want, out)
		}
	}

	var pruned struct {
		Removed []int `json:"removed"`
	}
	if err := json.Unmarshal([]byte(mustRun(t, "models", "prune", "knn", "--keep", "1", "--json")), &pruned); err != nil {
		t.Fatalf("decode prune: %v", err)
	}
	if !reflect.DeepEqual(pruned.Removed, []int{1}) {
		t.Errorf("removed = %v, want [1]", pruned.Removed)
	}

	code, _, stderr := run(t, "models", "import", "svd", ws.knn)
	if code != exitFailure || !strings.Contains(stderr, "unknown model kind") {
		t.Errorf("unknown kind: code %d, stderr %q", code, stderr)
	}
}

func TestSnapshotSource(t *testing.T) {
	ws := setupWorkspace(t)
	ws.importModels(t)

	out := mustRun(t, "snapshot", "import", ws.citations)
	if !strings.Contains(out, "Imported 3 authors citing 4 articles") {
		t.Errorf("snapshot import output: %s", out)
	}

	// the JSON document is no longer needed once the snapshot is the source
	t.Setenv("CITATIONS_SOURCE", "snapshot")
	t.Setenv("CITATIONS_PATH", filepath.Join(ws.dir, "gone.json"))

	var info citations.SnapshotInfo
	if err := json.Unmarshal([]byte(mustRun(t, "snapshot", "info", "--json")), &info); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if info.Authors != 3 || info.Items != 4 || info.Source != ws.citations || info.Generation != 1 {
		t.Errorf("snapshot info = %+v", info)
	}

	table := mustRun(t, "snapshot", "info")
	for _, want := range []string{"AUTHORS", "GENERATION", "author_dois.json"} {
		if !strings.Contains(table, want) {
			t.Errorf("snapshot info table missing %q:\n%s", want, table)
		}
	}

	var resp RecommendResponse
	if err := json.Unmarshal([]byte(mustRun(t, "knn", "Ada", "--json")), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if want := []string{"10.1000/d3", "10.1000/d4"}; !reflect.DeepEqual(resp.Recommendations, want) {
		t.Errorf("recommendations = %v, want %v", resp.Recommendations, want)
	}
}

func TestMetricsTextfile(t *testing.T) {
	ws := setupWorkspace(t)
	path := filepath.Join(ws.dir, "citewise.prom")
	t.Setenv("METRICS_TEXTFILE_PATH", path)

	mustRun(t, "authors")

	data, err := os.ReadFile(path) //nolint:gosec // test path
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "citewise_index_authors 3") {
		t.Errorf("textfile missing index gauge:\n%s", data)
	}
}

func TestConfigFlag(t *testing.T) {
	ws := setupWorkspace(t)

	cfgPath := filepath.Join(ws.dir, "citewise.yaml")
	content := fmt.Sprintf("data:\n  citations_path: %s\nlogging:\n  level: warn\n", ws.citations)
	if err := os.WriteFile(cfgPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"CITATIONS_PATH", "CONFIG_PATH"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatal(err)
		}
	}

	if out := mustRun(t, "--config", cfgPath, "authors"); !strings.Contains(out, "Ada") {
		t.Errorf("authors output: %s", out)
	}

	code, _, stderr := run(t, "--config", filepath.Join(ws.dir, "nope.yaml"), "authors")
	if code != exitFailure || !strings.Contains(stderr, "config file") {
		t.Errorf("missing config file: code %d, stderr %q", code, stderr)
	}

	code, _, stderr = run(t, "--log-level", "chatty", "authors")
	if code != exitFailure || !strings.Contains(stderr, "invalid --log-level") {
		t.Errorf("bad log level: code %d, stderr %q", code, stderr)
	}
}

func TestCorrelationIDFlag(t *testing.T) {
	setupWorkspace(t)
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("LOG_FORMAT", "json")

	code, _, stderr := run(t, "--correlation-id", "batch-7", "authors")
	if code != exitOK {
		t.Fatalf("authors exited %d: %s", code, stderr)
	}
	for _, want := range []string{`"correlation_id":"batch-7"`, `"request_id":"`, `"command":"citewise authors"`, "citation index loaded"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("log output missing %s: %s", want, stderr)
		}
	}

	_, _, stderr = run(t, "authors")
	if !strings.Contains(stderr, `"correlation_id":"`) {
		t.Errorf("expected a generated correlation ID: %s", stderr)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"unknown author", fmt.Errorf("wrapped: %w", recommend.ErrUnknownAuthor), exitUnknownAuthor},
		{"other", errors.New("boom"), exitFailure},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%s) = %d, want %d", tt.name, got, tt.want)
		}
	}
}
