// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cooccurrence CLI. The root command
// counts, for each formula pair, the OpenAlex works whose full text mentions
// both formulas and writes a summary and a detail CSV report.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/formula-cooccurrence/internal/logging"
	"github.com/pdiddy/formula-cooccurrence/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured from --log-level and --log-format before any command runs.
var logger = zerolog.Nop()

// loadedSecrets holds values loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// rootCmd is the base command; running it performs a co-occurrence run.
var rootCmd = &cobra.Command{
	Use:   "cooccurrence [mailto]",
	Short: "Count formula-pair co-occurrence across OpenAlex full texts",
	Long: `cooccurrence searches the OpenAlex works index for papers whose full text
mentions both formulas of each pair, and writes two CSV reports:

  cooccurrence_summary.csv  one row per pair with the co-occurrence count
  cooccurrence_works.csv    one row per retrieved work, tagged with its pair

The optional argument is the contact address sent to OpenAlex as mailto.
Without it the address comes from config (mailto), the COOCCURRENCE_MAILTO
environment variable, .secrets/openalex-email, or a placeholder.

A pair that fails after all retries is reported with count 0; the run carries
on and exits 0. Only failures to write the reports are fatal.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runCooccurrence,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./cooccurrence.yaml or ~/.config/cooccurrence/cooccurrence.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")
	pf.String("pairs", "", "YAML or TOML file with the formula pairs (default: built-in list)")
	pf.String("db", "", "also store the run in this SQLite database")

	bindFlags(pf, map[string]string{
		"log.level":      "log-level",
		"log.format":     "log-format",
		"pairs_file":     "pairs",
		"report.db_path": "db",
	})
}

// bindFlags binds each viper key to the named flag in fs.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func initConfig() {
	// A missing .env is not an error.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cooccurrence")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cooccurrence"))
		}
	}

	viper.SetEnvPrefix("COOCCURRENCE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// setup builds the logger and loads secrets before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	l, err := logging.New(cmd.ErrOrStderr(), viper.GetString("log.level"), viper.GetString("log.format"))
	if err != nil {
		return err
	}
	logger = l

	if used := viper.ConfigFileUsed(); used != "" {
		if _, statErr := os.Stat(used); statErr == nil {
			logger.Info().Str("file", used).Msg("using config file")
		} else if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
			return fmt.Errorf("reading config file: %w", statErr)
		}
	}

	s, err := secrets.Load(secrets.DefaultDir, logger)
	if err != nil {
		return err
	}
	loadedSecrets = s
	if len(s) > 0 {
		logger.Debug().Strs("keys", s.Keys()).Msg("loaded secrets")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
