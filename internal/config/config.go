package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const FileName = ".optistats.yaml"

const (
	DefaultInclude           = "*.json*"
	DefaultResultsDir        = "results"
	DefaultEndpoint          = "https://api.etherscan.io/api"
	DefaultRequestsPerSecond = 5.0
	DefaultTimeoutMs         = 15000
	DefaultCrawlDir          = "crawl_data"

	// APIKeyEnv names the environment variable holding the explorer API key.
	APIKeyEnv = "ETHERSCAN_API_KEY"
)

type Crawler struct {
	Endpoint          string  `yaml:"endpoint"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	TimeoutMs         int     `yaml:"timeoutMs"`
	OutputDir         string  `yaml:"outputDir"`
}

type Config struct {
	NoiseType     string            `yaml:"noiseType"`
	Include       string            `yaml:"include"`
	Workers       int               `yaml:"workers"`
	SkipMalformed bool              `yaml:"skipMalformed"`
	RankTable     string            `yaml:"rankTable,omitempty"`
	ResultsDir    string            `yaml:"resultsDir"`
	Labels        map[string]string `yaml:"labels,omitempty"` // type code -> short label
	Crawler       Crawler           `yaml:"crawler"`
}

func Default() Config {
	return Config{
		NoiseType:  "state-data-arrangement",
		Include:    DefaultInclude,
		Workers:    runtime.NumCPU(),
		ResultsDir: DefaultResultsDir,
		Crawler: Crawler{
			Endpoint:          DefaultEndpoint,
			RequestsPerSecond: DefaultRequestsPerSecond,
			TimeoutMs:         DefaultTimeoutMs,
			OutputDir:         DefaultCrawlDir,
		},
	}
}

// Load searches upwards from startDir for .optistats.yaml and merges it over
// the defaults. The returned path is empty when no file was found.
func Load(startDir string) (Config, string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Default(), "", err
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := LoadFile(candidate)
			return cfg, candidate, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return Default(), "", nil
}

func LoadFile(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.NoiseType == "" {
		c.NoiseType = d.NoiseType
	}
	if c.Include == "" {
		c.Include = d.Include
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.ResultsDir == "" {
		c.ResultsDir = d.ResultsDir
	}
	if c.Crawler.Endpoint == "" {
		c.Crawler.Endpoint = d.Crawler.Endpoint
	}
	if c.Crawler.RequestsPerSecond <= 0 {
		c.Crawler.RequestsPerSecond = d.Crawler.RequestsPerSecond
	}
	if c.Crawler.TimeoutMs <= 0 {
		c.Crawler.TimeoutMs = d.Crawler.TimeoutMs
	}
	if c.Crawler.OutputDir == "" {
		c.Crawler.OutputDir = d.Crawler.OutputDir
	}
}

// Write serializes cfg to dir/.optistats.yaml.
func Write(dir string, cfg Config) (string, error) {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName)
	return path, os.WriteFile(path, b, 0o644)
}

// APIKey returns the explorer API key from the environment, loading the
// first .env file found in dirs.
func APIKey(dirs ...string) string {
	for _, d := range dirs {
		p := filepath.Join(d, ".env")
		if err := godotenv.Load(p); err == nil {
			slog.Debug("loaded environment file", "path", p)
			break
		}
	}
	return os.Getenv(APIKeyEnv)
}
