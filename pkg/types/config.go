package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FetchConfig holds settings for the download stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// DatasetDir is the directory that receives downloaded PDFs.
	DatasetDir string `json:"dataset_dir" yaml:"dataset_dir" mapstructure:"dataset_dir" validate:"required"`

	// VerifyPDF rejects downloads that do not open as a PDF document.
	VerifyPDF bool `json:"verify_pdf" yaml:"verify_pdf" mapstructure:"verify_pdf"`
}

// GrobidConfig holds settings for the extraction service client.
type GrobidConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// URL is the service base URL (e.g. "http://localhost:8070").
	URL string `json:"url" yaml:"url" mapstructure:"url" validate:"required,url"`

	// APIKey is an optional bearer token for deployments behind an
	// authenticating proxy.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// ProcessConfig holds settings for the process stage.
type ProcessConfig struct {
	// DatasetDir is the directory of PDFs to process.
	DatasetDir string `json:"dataset_dir" yaml:"dataset_dir" mapstructure:"dataset_dir" validate:"required"`

	// OutputDir receives rendered artifacts and exports. Empty disables
	// writing artifacts.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Show displays the artifacts interactively.
	Show bool `json:"show" yaml:"show" mapstructure:"show"`

	// Export lists record export formats: yaml, json, sqlite.
	Export []string `json:"export,omitempty" yaml:"export,omitempty" mapstructure:"export" validate:"dive,oneof=yaml json sqlite"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	// Level is the minimum level (debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error"`

	// Format is "console" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"oneof=console json"`
}

// ContainerConfig holds settings for running the service locally.
type ContainerConfig struct {
	// Image is the service container image.
	Image string `json:"image" yaml:"image" mapstructure:"image" validate:"required"`

	// Port is the host port the service is published on.
	Port int `json:"port" yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`
}

// Config groups all stage configurations.
type Config struct {
	Grobid    GrobidConfig    `json:"grobid" yaml:"grobid" mapstructure:"grobid"`
	Fetch     FetchConfig     `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Process   ProcessConfig   `json:"process" yaml:"process" mapstructure:"process"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
	Container ContainerConfig `json:"container" yaml:"container" mapstructure:"container"`

	// MetricsFile, when set, receives Prometheus text-format metrics at exit.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks c against its field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
