// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/formula-cooccurrence/internal/cooccur"
	"github.com/pdiddy/formula-cooccurrence/internal/httputil"
	"github.com/pdiddy/formula-cooccurrence/internal/metrics"
	"github.com/pdiddy/formula-cooccurrence/internal/pairs"
	"github.com/pdiddy/formula-cooccurrence/internal/report"
	"github.com/pdiddy/formula-cooccurrence/internal/search"
	"github.com/pdiddy/formula-cooccurrence/internal/secrets"
	"github.com/pdiddy/formula-cooccurrence/pkg/types"
)

func init() {
	f := rootCmd.Flags()
	f.String("out-dir", ".", "directory for the CSV reports")
	f.Int("per-page", search.DefaultPerPage, "works requested per page (1-200)")
	f.Duration("timeout", 60*time.Second, "HTTP request timeout")
	f.Int("retries", 4, "attempts per page request before giving up")
	f.Duration("retry-delay", httputil.RetryBaseDelay, "linear backoff base; attempt n waits n times this")
	f.String("metrics-file", "", "write run metrics in Prometheus textfile format to this path")

	bindFlags(f, map[string]string{
		"report.out_dir":      "out-dir",
		"fetch.per_page":      "per-page",
		"fetch.timeout":       "timeout",
		"fetch.max_attempts":  "retries",
		"fetch.retry_delay":   "retry-delay",
		"report.metrics_file": "metrics-file",
	})

	viper.SetDefault("fetch.base_url", "https://api.openalex.org/works")
	viper.SetDefault("fetch.user_agent", "formula-cooccurrence/"+version)
	viper.SetDefault("report.summary_file", report.DefaultSummaryFile)
	viper.SetDefault("report.works_file", report.DefaultWorksFile)
}

// loadRunConfig assembles the run configuration from flags, environment
// and config file, in viper's precedence order.
func loadRunConfig() (types.RunConfig, error) {
	cfg := types.RunConfig{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("fetch.timeout"),
				UserAgent: viper.GetString("fetch.user_agent"),
			},
			BaseURL:     viper.GetString("fetch.base_url"),
			Mailto:      strings.TrimSpace(viper.GetString("mailto")),
			PerPage:     viper.GetInt("fetch.per_page"),
			MaxAttempts: viper.GetInt("fetch.max_attempts"),
			RetryDelay:  viper.GetDuration("fetch.retry_delay"),
		},
		Report: types.ReportConfig{
			OutDir:      viper.GetString("report.out_dir"),
			SummaryFile: viper.GetString("report.summary_file"),
			WorksFile:   viper.GetString("report.works_file"),
			DBPath:      viper.GetString("report.db_path"),
			MetricsFile: viper.GetString("report.metrics_file"),
		},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
		PairsFile: viper.GetString("pairs_file"),
	}

	if cfg.Fetch.PerPage < 1 || cfg.Fetch.PerPage > search.DefaultPerPage {
		return cfg, fmt.Errorf("per-page must be between 1 and %d, got %d", search.DefaultPerPage, cfg.Fetch.PerPage)
	}
	if cfg.Fetch.MaxAttempts < 1 {
		return cfg, fmt.Errorf("retries must be at least 1, got %d", cfg.Fetch.MaxAttempts)
	}
	if cfg.Fetch.RetryDelay < 0 {
		return cfg, fmt.Errorf("retry-delay must not be negative")
	}
	if cfg.Fetch.Timeout <= 0 {
		return cfg, fmt.Errorf("timeout must be positive")
	}
	return cfg, nil
}

// loadPairs returns the pair list from path, or the built-in list when path
// is empty.
func loadPairs(path string) ([]types.FormulaPair, error) {
	if path == "" {
		return types.DefaultPairs(), nil
	}
	list, err := pairs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading pairs: %w", err)
	}
	return list, nil
}

// resolveMailto picks the contact address: the positional argument, then
// the configured value, then the secrets store, then the placeholder.
// Blank values fall through to the next source.
func resolveMailto(args []string, configured string, store secrets.Store) string {
	if len(args) > 0 {
		if m := strings.TrimSpace(args[0]); m != "" {
			return m
		}
	}
	if m := strings.TrimSpace(configured); m != "" {
		return m
	}
	if m := strings.TrimSpace(store.Get(secrets.OpenAlexEmail)); m != "" {
		return m
	}
	return types.DefaultMailto
}

func runCooccurrence(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}
	list, err := loadPairs(cfg.PairsFile)
	if err != nil {
		return err
	}
	mailto := resolveMailto(args, cfg.Fetch.Mailto, loadedSecrets)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := execute(ctx, cmd.OutOrStdout(), cfg, list, mailto)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if n := res.Failures(); n > 0 {
		fmt.Fprintf(out, "%d of %d pair(s) failed and were recorded with count 0\n", n, len(res.Pairs))
	}
	return nil
}

// execute performs one run against the configured service and writes every
// configured report. Only report-writing errors are returned.
func execute(ctx context.Context, out io.Writer, cfg types.RunConfig, list []types.FormulaPair, mailto string) (cooccur.Result, error) {
	m := metrics.New()

	fetcher := &search.OpenAlexFetcher{
		Client:    &http.Client{Timeout: cfg.Fetch.Timeout},
		BaseURL:   cfg.Fetch.BaseURL,
		Email:     mailto,
		UserAgent: cfg.Fetch.UserAgent,
		PerPage:   cfg.Fetch.PerPage,
		Retry: httputil.RetryPolicy{
			MaxAttempts: cfg.Fetch.MaxAttempts,
			BaseDelay:   cfg.Fetch.RetryDelay,
		},
		Log:     logger,
		Metrics: m,
	}
	runner := &cooccur.Runner{
		Fetcher: fetcher,
		Mailto:  mailto,
		Log:     logger,
		Metrics: m,
		Out:     out,
	}

	csvWriter := report.NewCSVWriter(cfg.Report)
	writers := []cooccur.ReportWriter{csvWriter}

	// Open the database before the run so a bad path fails fast.
	var sink *report.SQLiteSink
	if cfg.Report.DBPath != "" {
		s, err := report.OpenSQLite(cfg.Report.DBPath)
		if err != nil {
			return cooccur.Result{}, err
		}
		defer s.Close()
		sink = s
		writers = append(writers, sink)
	}

	logger.Info().
		Int("pairs", len(list)).
		Str("mailto", mailto).
		Str("out_dir", csvWriter.Dir).
		Msg("starting run")

	res, err := runner.RunAndWrite(ctx, list, writers...)
	if err != nil {
		return res, err
	}

	fmt.Fprintf(out, "\nWrote:\n  %s\n  %s\n", csvWriter.SummaryPath(), csvWriter.WorksPath())
	if sink != nil {
		fmt.Fprintf(out, "  %s (run %s)\n", cfg.Report.DBPath, sink.LastRunID)
	}

	if cfg.Report.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.Report.MetricsFile); err != nil {
			// The reports are already on disk; a metrics failure is not fatal.
			logger.Warn().Err(err).Str("path", cfg.Report.MetricsFile).Msg("writing metrics")
		} else {
			fmt.Fprintf(out, "  %s\n", cfg.Report.MetricsFile)
		}
	}
	return res, nil
}
