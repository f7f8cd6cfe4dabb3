// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-digest CLI: download papers,
// extract their structure with GROBID, and render summary visualizations.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/container"
	"github.com/pdiddy/paper-digest/internal/grobid"
	"github.com/pdiddy/paper-digest/internal/observability"
	"github.com/pdiddy/paper-digest/internal/secrets"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	envPrefix  = "PAPER_DIGEST"
	secretsDir = ".secrets/"
	metricsNS  = "paper_digest"
)

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets map[string]string

	// logger is configured from log.level and log.format before any
	// subcommand runs.
	logger = zerolog.Nop()

	// metrics collects counters for the current invocation.
	metrics *observability.Metrics
)

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// userAgent is sent with every outbound HTTP request.
func userAgent() string {
	return "paper-digest/" + version
}

// rootCmd is the base command for the paper-digest CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-digest",
	Short: "Download papers, extract their structure, and visualize the results",
	Long: `paper-digest downloads academic papers from a list of abstract-page URLs,
sends each PDF to a GROBID service for structure extraction, and renders
per-paper term clouds, a figure-count chart, and a links table.

Typical use:

  paper-digest grobid serve &
  paper-digest download papers.txt --dataset dataset
  paper-digest process --dataset dataset --output out --export json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = observability.NewLogger(observability.LoggingConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
			Output: os.Stderr,
		})
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug().Str("file", f).Msg("using config file")
		}

		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}

		metrics = observability.NewMetrics(metricsNS)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./paper-digest.yaml or ~/.config/paper-digest/paper-digest.yaml)")
	pf.String("log-level", "info", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")
	pf.String("metrics-file", "", "write Prometheus text-format metrics to this file at exit")

	mustBind("log.level", pf.Lookup("log-level"))
	mustBind("log.format", pf.Lookup("log-format"))
	mustBind("metrics_file", pf.Lookup("metrics-file"))

	setDefaults()
}

// setDefaults registers the default for every configuration key so that
// environment variables and Unmarshal see the full key set.
func setDefaults() {
	viper.SetDefault("grobid.url", grobid.DefaultURL)
	viper.SetDefault("grobid.timeout", 0)
	viper.SetDefault("grobid.user_agent", userAgent())
	viper.SetDefault("grobid.api_key", "")

	viper.SetDefault("fetch.dataset_dir", "dataset")
	viper.SetDefault("fetch.timeout", 0)
	viper.SetDefault("fetch.user_agent", userAgent())
	viper.SetDefault("fetch.verify_pdf", false)

	viper.SetDefault("process.dataset_dir", "dataset")
	viper.SetDefault("process.output_dir", "")
	viper.SetDefault("process.show", false)
	viper.SetDefault("process.export", []string{})

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")

	viper.SetDefault("container.image", container.DefaultImage)
	viper.SetDefault("container.port", container.ServicePort)
}

func initConfig() {
	// A missing .env is not an error.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-digest"))
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

// loadConfig unmarshals and validates the merged configuration.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.Grobid.APIKey = secretDefault(secrets.GrobidAPIKey, cfg.Grobid.APIKey)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// writeMetrics writes the run's metrics when --metrics-file is set. It runs
// after every command, including failed ones.
func writeMetrics() error {
	path := viper.GetString("metrics_file")
	if path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(path); err != nil {
		return err
	}
	logger.Debug().Str("path", path).Msg("metrics written")
	return nil
}

// mustBind binds a configuration key to a flag. A nil flag is a programming
// error.
func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding %s: %v", key, err))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if mErr := writeMetrics(); mErr != nil {
		logger.Warn().Err(mErr).Msg("could not write metrics")
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}
