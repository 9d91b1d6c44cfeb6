// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/formula-cooccurrence/pkg/types"
)

// --- test helpers ---

func sampleReport() types.Report {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return types.Report{
		Mailto:     "researcher@example.com",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Summary: []types.SummaryRow{
			{PairLeft: "transverse mass", PairRight: "Euclidean norm (L2 norm)", CooccurrenceCount: "3"},
			{PairLeft: "C", PairRight: "D", CooccurrenceCount: "0"},
		},
		Works: []types.SearchResultRow{
			{
				PairLeft: "transverse mass", PairRight: "Euclidean norm (L2 norm)",
				WorkID: "https://openalex.org/W1", Title: `Mass, "norms", and more`,
				Year: "2021", DOI: "https://doi.org/10.1/a", Venue: "Phys. Rev. D",
			},
			{
				PairLeft: "transverse mass", PairRight: "Euclidean norm (L2 norm)",
				WorkID: "https://openalex.org/W2", Title: "Line one\nline two",
			},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

// --- CSV ---

func TestCSVWriterWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(types.ReportConfig{OutDir: dir})

	require.NoError(t, w.WriteReport(context.Background(), sampleReport()))

	summary := readCSV(t, filepath.Join(dir, DefaultSummaryFile))
	assert.Equal(t, [][]string{
		{"pair_left", "pair_right", "cooccurrence_count"},
		{"transverse mass", "Euclidean norm (L2 norm)", "3"},
		{"C", "D", "0"},
	}, summary)

	works := readCSV(t, filepath.Join(dir, DefaultWorksFile))
	require.Len(t, works, 3)
	assert.Equal(t, []string{"pair_left", "pair_right", "work_id", "title", "year", "doi", "venue"}, works[0])
	assert.Equal(t, `Mass, "norms", and more`, works[1][3])
	assert.Equal(t, "Line one\nline two", works[2][3])
	assert.Equal(t, []string{"", "", ""}, works[2][4:])
}

func TestCSVWriterQuotesAndLineEndings(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(types.ReportConfig{OutDir: dir})
	require.NoError(t, w.WriteReport(context.Background(), sampleReport()))

	raw, err := os.ReadFile(w.SummaryPath())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "pair_left,pair_right,cooccurrence_count\r\n"))

	raw, err = os.ReadFile(w.WorksPath())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Mass, ""norms"", and more"`)
}

func TestCSVWriterOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(types.ReportConfig{OutDir: dir})
	require.NoError(t, os.WriteFile(w.SummaryPath(), []byte("stale,data\nmore,stale,rows\n"), 0o644))

	rep := sampleReport()
	rep.Summary = rep.Summary[:1]
	rep.Works = nil
	require.NoError(t, w.WriteReport(context.Background(), rep))

	assert.Len(t, readCSV(t, w.SummaryPath()), 2)
	// Header only.
	assert.Equal(t, [][]string{types.WorkColumns}, readCSV(t, w.WorksPath()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files should remain")
}

func TestCSVWriterCustomNamesAndMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "today")
	w := NewCSVWriter(types.ReportConfig{OutDir: dir, SummaryFile: "s.csv", WorksFile: "w.csv"})
	require.NoError(t, w.WriteReport(context.Background(), sampleReport()))

	assert.FileExists(t, filepath.Join(dir, "s.csv"))
	assert.FileExists(t, filepath.Join(dir, "w.csv"))
}

func TestNewCSVWriterDefaults(t *testing.T) {
	w := NewCSVWriter(types.ReportConfig{})
	assert.Equal(t, ".", w.Dir)
	assert.Equal(t, DefaultSummaryFile, w.SummaryFile)
	assert.Equal(t, DefaultWorksFile, w.WorksFile)
}

func TestWriteCSVFailsForUnwritableDir(t *testing.T) {
	err := WriteCSV(filepath.Join(t.TempDir(), "missing", "out.csv"), []string{"a"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating temp file")
}

// --- SQLite ---

func TestSQLiteSinkRoundTrip(t *testing.T) {
	ctx := context.Background()
	sink, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })

	rep := sampleReport()
	require.NoError(t, sink.WriteReport(ctx, rep))
	require.NotEmpty(t, sink.LastRunID)

	got, err := sink.LoadReport(ctx, sink.LastRunID)
	require.NoError(t, err)
	assert.Equal(t, rep.Mailto, got.Mailto)
	assert.True(t, rep.StartedAt.Equal(got.StartedAt))
	assert.True(t, rep.FinishedAt.Equal(got.FinishedAt))
	assert.Equal(t, rep.Summary, got.Summary)
	assert.Equal(t, rep.Works, got.Works)
}

func TestSQLiteSinkKeepsEveryRun(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	sink, err := OpenSQLite(path)
	require.NoError(t, err)

	first := sampleReport()
	require.NoError(t, sink.WriteReport(ctx, first))
	firstID := sink.LastRunID

	second := sampleReport()
	second.StartedAt = first.StartedAt.Add(time.Hour)
	second.Works = nil
	require.NoError(t, sink.WriteReport(ctx, second))
	require.NoError(t, sink.Close())

	// Reopening must not disturb the schema or stored runs.
	sink, err = OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })

	runs, err := sink.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 0, runs[0].Works, "most recent run first")
	assert.Equal(t, firstID, runs[1].ID)
	assert.Equal(t, 2, runs[1].Pairs)
	assert.Equal(t, 2, runs[1].Works)
}

func TestSQLiteSinkLoadUnknownRun(t *testing.T) {
	sink, err := OpenSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })

	_, err = sink.LoadReport(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
