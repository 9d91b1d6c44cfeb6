package types

import "time"

// DefaultMailto is the placeholder contact sent when no address is configured.
const DefaultMailto = "your_email@example.com"

// HTTPConfig holds shared HTTP settings for requests to the search service.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "formula-cooccurrence/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the paginated fetch against OpenAlex.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the works search endpoint (default https://api.openalex.org/works).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Mailto is the contact address sent as the mailto parameter on every
	// request for polite pool access.
	Mailto string `json:"mailto" yaml:"mailto"`

	// PerPage is the page size requested from the API (default 200).
	PerPage int `json:"per_page" yaml:"per_page"`

	// MaxAttempts caps the attempts made for a single page (default 4).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// RetryDelay is the linear backoff base: attempt n waits RetryDelay*n.
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`
}

// ReportConfig holds settings for the report files written at the end of a run.
type ReportConfig struct {
	// OutDir is the directory the CSV reports are written to (default ".").
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// SummaryFile is the summary report file name.
	SummaryFile string `json:"summary_file" yaml:"summary_file"`

	// WorksFile is the detail report file name.
	WorksFile string `json:"works_file" yaml:"works_file"`

	// DBPath, when set, also stores the run in a SQLite database.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`

	// MetricsFile, when set, receives run metrics in textfile exposition format.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// LogConfig selects log verbosity and output format.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is console or json (default console).
	Format string `json:"format" yaml:"format"`
}

// RunConfig groups everything a co-occurrence run needs.
type RunConfig struct {
	Fetch     FetchConfig  `json:"fetch" yaml:"fetch"`
	Report    ReportConfig `json:"report" yaml:"report"`
	Log       LogConfig    `json:"log" yaml:"log"`
	PairsFile string       `json:"pairs_file,omitempty" yaml:"pairs_file,omitempty"`
}
