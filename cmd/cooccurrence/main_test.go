package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/formula-cooccurrence/internal/report"
	"github.com/pdiddy/formula-cooccurrence/internal/secrets"
	"github.com/pdiddy/formula-cooccurrence/pkg/types"
)

func TestResolveMailto(t *testing.T) {
	store := secrets.Store{secrets.OpenAlexEmail: " secret@example.org\n"}

	tests := []struct {
		name       string
		args       []string
		configured string
		store      secrets.Store
		want       string
	}{
		{"argument wins", []string{"  me@example.org "}, "cfg@example.org", store, "me@example.org"},
		{"blank argument falls through", []string{"   "}, "cfg@example.org", store, "cfg@example.org"},
		{"configured over secret", nil, "cfg@example.org", store, "cfg@example.org"},
		{"secret", nil, "", store, "secret@example.org"},
		{"placeholder", nil, "", nil, types.DefaultMailto},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveMailto(tt.args, tt.configured, tt.store))
		})
	}
}

func TestLoadPairsDefaultAndFile(t *testing.T) {
	list, err := loadPairs("")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPairs(), list)

	path := filepath.Join(t.TempDir(), "pairs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pairs:\n  - left: a\n    right: b\n"), 0o644))
	list, err = loadPairs(path)
	require.NoError(t, err)
	assert.Equal(t, []types.FormulaPair{{Left: "a", Right: "b"}}, list)

	_, err = loadPairs(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "loading pairs")
}

func TestLoadRunConfigDefaults(t *testing.T) {
	cfg, err := loadRunConfig()
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Fetch.PerPage)
	assert.Equal(t, 4, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 1500*time.Millisecond, cfg.Fetch.RetryDelay)
	assert.Equal(t, 60*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "https://api.openalex.org/works", cfg.Fetch.BaseURL)
	assert.Equal(t, ".", cfg.Report.OutDir)
	assert.Equal(t, report.DefaultSummaryFile, cfg.Report.SummaryFile)
	assert.Equal(t, report.DefaultWorksFile, cfg.Report.WorksFile)
}

func TestLoadRunConfigRejectsBadValues(t *testing.T) {
	for key, val := range map[string]any{
		"fetch.per_page":     201,
		"fetch.max_attempts": 0,
		"fetch.timeout":      "0s",
	} {
		t.Run(key, func(t *testing.T) {
			prev := viper.Get(key)
			viper.Set(key, val)
			t.Cleanup(func() { viper.Set(key, prev) })
			_, err := loadRunConfig()
			assert.Error(t, err)
		})
	}
}

// worksServer answers every request with one page for the first cursor and
// an exhausted cursor afterwards. Requests for "Bad" phrases fail.
func worksServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if strings.Contains(q.Get("filter"), "Bad") {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		page := map[string]any{"meta": map[string]any{"count": 2, "next_cursor": nil}, "results": []any{}}
		if q.Get("cursor") == "*" {
			page = map[string]any{
				"meta": map[string]any{"count": 2, "next_cursor": "next"},
				"results": []any{
					map[string]any{"id": "W1", "display_name": "One", "publication_year": 2020,
						"primary_location": map[string]any{"source": map[string]any{"display_name": "Venue"}}},
					map[string]any{"id": "W2", "display_name": "Two", "doi": "10.1/x"},
				},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRunConfig(baseURL, dir string) types.RunConfig {
	return types.RunConfig{
		Fetch: types.FetchConfig{
			HTTPConfig:  types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test"},
			BaseURL:     baseURL,
			PerPage:     200,
			MaxAttempts: 2,
			RetryDelay:  time.Millisecond,
		},
		Report: types.ReportConfig{OutDir: dir},
	}
}

func TestExecuteWritesReports(t *testing.T) {
	srv := worksServer(t)
	dir := t.TempDir()
	cfg := testRunConfig(srv.URL, dir)
	cfg.Report.DBPath = filepath.Join(dir, "runs.db")
	cfg.Report.MetricsFile = filepath.Join(dir, "run.prom")

	list := []types.FormulaPair{{Left: "A", Right: "B"}, {Left: "Bad", Right: "C"}}
	var out bytes.Buffer
	res, err := execute(context.Background(), &out, cfg, list, "me@example.org")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failures())

	summary, err := os.ReadFile(filepath.Join(dir, report.DefaultSummaryFile))
	require.NoError(t, err)
	assert.Equal(t,
		"pair_left,pair_right,cooccurrence_count\r\nA,B,2\r\nBad,C,0\r\n",
		string(summary))

	works, err := os.ReadFile(filepath.Join(dir, report.DefaultWorksFile))
	require.NoError(t, err)
	assert.Equal(t,
		"pair_left,pair_right,work_id,title,year,doi,venue\r\n"+
			"A,B,W1,One,2020,,Venue\r\n"+
			"A,B,W2,Two,,10.1/x,\r\n",
		string(works))

	assert.Contains(t, out.String(), "Wrote:")
	assert.Contains(t, out.String(), "runs.db (run ")
	assert.FileExists(t, cfg.Report.MetricsFile)

	sink, err := report.OpenSQLite(cfg.Report.DBPath)
	require.NoError(t, err)
	defer sink.Close()
	runs, err := sink.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "me@example.org", runs[0].Mailto)
}

func TestExecuteFailsWhenReportUnwritable(t *testing.T) {
	srv := worksServer(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	cfg := testRunConfig(srv.URL, filepath.Join(blocker, "sub"))
	_, err := execute(context.Background(), &bytes.Buffer{}, cfg, []types.FormulaPair{{Left: "A", Right: "B"}}, "me@example.org")
	assert.ErrorContains(t, err, "writing report")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "cooccurrence dev\n", out.String())
}
