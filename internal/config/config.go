package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL          = "http://localhost:9090"
	DefaultPollInterval    = 60 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultTektonNamespace = "tekton"
	DefaultLocale          = "en"
	DefaultStatePath       = "~/.opsboard/state.db"
	DefaultLogFile         = "~/.opsboard/opsboard.log"
)

type Config struct {
	APIURL          string        `yaml:"api_url"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	TektonNamespace string        `yaml:"tekton_namespace"`
	Locale          string        `yaml:"locale"`
	StatePath       string        `yaml:"state_path"`
	LogFile         string        `yaml:"log_file"`
}

// Load reads the YAML file at path, then a .env file in the working
// directory, then OPSBOARD_* environment variables. Missing files are not
// an error.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPSBOARD_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("OPSBOARD_STATE_PATH"); v != "" {
		c.StatePath = v
	}
	if v := os.Getenv("OPSBOARD_LOG_FILE"); v != "" {
		c.LogFile = v
	}
}

func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.TektonNamespace == "" {
		c.TektonNamespace = DefaultTektonNamespace
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.StatePath == "" {
		c.StatePath = DefaultStatePath
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	c.StatePath = expandHome(c.StatePath)
	c.LogFile = expandHome(c.LogFile)
}

func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}
	return nil
}

// Language is the collation locale. Validate guarantees it parses.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
