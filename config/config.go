package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAccountsBaseURL = "https://accounts.spotify.com"
	DefaultAPIBaseURL      = "https://api.spotify.com/v1"
	DefaultMarket          = "US"
	DefaultIncludeGroups   = "album,single,compilation,appears_on"
	DefaultMaxResults      = 100
	DefaultEnvFile         = ".env"
)

var marketPattern = regexp.MustCompile(`^[A-Z]{2}$`)

// IsMarket reports whether s is an upper-case ISO 3166-1 alpha-2 code.
func IsMarket(s string) bool {
	return marketPattern.MatchString(s)
}

type Config struct {
	AccountsBaseURL string `env:"TOPTRACKS_ACCOUNTS_BASE_URL" json:"accounts_base_url" yaml:"accounts_base_url"`
	APIBaseURL      string `env:"TOPTRACKS_API_BASE_URL"      json:"api_base_url"      yaml:"api_base_url"`
	Market          string `env:"TOPTRACKS_MARKET"            json:"market"            yaml:"market"`
	IncludeGroups   string `env:"TOPTRACKS_INCLUDE_GROUPS"    json:"include_groups"    yaml:"include_groups"`
	MaxResults      int    `env:"TOPTRACKS_MAX_RESULTS"       json:"max_results"       yaml:"max_results"`
	EnvFile         string `env:"TOPTRACKS_ENV_FILE"          json:"env_file"          yaml:"env_file"`
}

func Default() Config {
	return Config{
		AccountsBaseURL: DefaultAccountsBaseURL,
		APIBaseURL:      DefaultAPIBaseURL,
		Market:          DefaultMarket,
		IncludeGroups:   DefaultIncludeGroups,
		MaxResults:      DefaultMaxResults,
		EnvFile:         DefaultEnvFile,
	}
}

func (cfg *Config) normalize() {
	cfg.AccountsBaseURL = strings.TrimRight(strings.TrimSpace(cfg.AccountsBaseURL), "/")
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.Market = strings.ToUpper(strings.TrimSpace(cfg.Market))
	cfg.IncludeGroups = strings.TrimSpace(cfg.IncludeGroups)
}

func (cfg *Config) validate() error {
	if cfg.AccountsBaseURL == "" {
		return errors.New("accounts base url is empty")
	}

	if cfg.APIBaseURL == "" {
		return errors.New("api base url is empty")
	}

	if !marketPattern.MatchString(cfg.Market) {
		return fmt.Errorf("market %q is not a two-letter country code", cfg.Market)
	}

	if cfg.MaxResults < 0 {
		return fmt.Errorf("max results must not be negative, got %d", cfg.MaxResults)
	}

	if cfg.EnvFile == "" {
		return errors.New("env file path is empty")
	}

	return nil
}

// finish applies environment overrides on top of cfg, then normalizes and
// validates it. Process environment variables take precedence over dotenv.
func finish(cfg Config, dotenv Dotenv) (*Config, error) {
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: dotenv.environ()}); nil != err {
		return nil, fmt.Errorf("failed to parse environment overrides: %v", err)
	}

	cfg.normalize()
	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	return &cfg, nil
}

func FromEnv(dotenv Dotenv) (*Config, error) {
	return finish(Default(), dotenv)
}

func FromFile(filePath string, dotenv Dotenv) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if nil != err {
		return nil, fmt.Errorf("failed to read config file %q: %v", filePath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config file %q: %v", filePath, err)
	}

	return finish(cfg, dotenv)
}

func FromString(data string, dotenv Dotenv) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(data), &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	return finish(cfg, dotenv)
}
