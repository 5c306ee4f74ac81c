// Package config loads tool configuration from a YAML file layered
// with environment variables. A .env file in the working directory is
// honored for credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults for a fresh configuration.
const (
	// DefaultFileName is the configuration file looked up in the
	// working directory.
	DefaultFileName = "electstats.yaml"

	// DefaultDataDir is the root of the pipeline's data directories.
	DefaultDataDir = "data"

	// DefaultStartURL is the archive the scraper seeds from.
	DefaultStartURL = "https://history.house.gov/Institution/Election-Statistics/Election-Statistics/"

	// DefaultListenAddr is the dashboard bind address.
	DefaultListenAddr = ":8080"
)

// Environment variable names.
const (
	// EnvAPIKey holds the Gemini API key.
	EnvAPIKey = "GEMINI_API_KEY"

	// EnvDataDir overrides the data directory.
	EnvDataDir = "ELECTSTATS_DATA_DIR"

	// EnvStartURL overrides the scrape seed URL.
	EnvStartURL = "ELECTSTATS_START_URL"

	// EnvListenAddr overrides the dashboard bind address.
	EnvListenAddr = "ELECTSTATS_LISTEN_ADDR"

	// EnvModel overrides the vision model name.
	EnvModel = "ELECTSTATS_MODEL"
)

// Config is the tool-wide configuration.
type Config struct {
	// DataDir is the root holding pdfs/, images/, and csv/.
	DataDir string `yaml:"data_dir"`

	// StartURL seeds the scraper.
	StartURL string `yaml:"start_url"`

	// ListenAddr is the dashboard bind address.
	ListenAddr string `yaml:"listen_addr"`

	// Model is the vision model used for extraction.
	Model string `yaml:"model"`

	// DPI is the PDF rasterization resolution.
	DPI int `yaml:"dpi"`

	// APIKey is the Gemini credential. Not read from YAML; set it via
	// the environment or a .env file.
	APIKey string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:    DefaultDataDir,
		StartURL:   DefaultStartURL,
		ListenAddr: DefaultListenAddr,
	}
}

// Load builds the effective configuration: defaults, then the YAML
// file at path (missing file is fine), then environment variables. A
// .env file in the working directory is loaded first so credentials
// can live there.
func Load(path string) (Config, error) {
	// Missing .env is the common case.
	_ = godotenv.Load()

	config := Default()

	if path == "" {
		path = DefaultFileName
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return config, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnv(&config)
	return config, nil
}

// applyEnv overlays environment variables onto the configuration.
func applyEnv(config *Config) {
	if value := os.Getenv(EnvDataDir); value != "" {
		config.DataDir = value
	}
	if value := os.Getenv(EnvStartURL); value != "" {
		config.StartURL = value
	}
	if value := os.Getenv(EnvListenAddr); value != "" {
		config.ListenAddr = value
	}
	if value := os.Getenv(EnvModel); value != "" {
		config.Model = value
	}
	if value := os.Getenv(EnvAPIKey); value != "" {
		config.APIKey = value
	}
	if value := os.Getenv("ELECTSTATS_DPI"); value != "" {
		if dpi, err := strconv.Atoi(value); err == nil {
			config.DPI = dpi
		}
	}
}

// PDFDir returns the scraped PDF directory under DataDir.
func (config Config) PDFDir() string { return filepath.Join(config.DataDir, "pdfs") }

// ImageDir returns the page image directory under DataDir.
func (config Config) ImageDir() string { return filepath.Join(config.DataDir, "images") }

// CSVDir returns the extracted CSV directory under DataDir.
func (config Config) CSVDir() string { return filepath.Join(config.DataDir, "csv") }

// EnsureDirs creates the data directory tree.
func (config Config) EnsureDirs() error {
	for _, dir := range []string{config.PDFDir(), config.ImageDir(), config.CSVDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
