// Package config provides configuration loading and validation for the
// fair guide server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/fairguide/internal/companies"
	"github.com/jonathan/fairguide/internal/crm"
)

// DefaultPath is the config file looked up when no path is given.
const DefaultPath = "config.yml"

// Environment variables overriding file values.
const (
	EnvSOAPURL      = "FAIRGUIDE_SOAP_URL"
	EnvSOAPUser     = "FAIRGUIDE_SOAP_USER"
	EnvSOAPPassword = "FAIRGUIDE_SOAP_PASSWORD" // plain text, hashed on load
	EnvMediaURL     = "FAIRGUIDE_MEDIA_URL"
	EnvStorageDir   = "FAIRGUIDE_STORAGE_DIR"
	EnvLaTeX        = "FAIRGUIDE_LATEX"
	EnvAddr         = "FAIRGUIDE_ADDR"
	EnvLogLevel     = "FAIRGUIDE_LOG_LEVEL"
)

// ErrNotFound is returned by Load when an explicitly requested file is missing.
var ErrNotFound = errors.New("config file not found")

// Config represents the complete fair guide configuration.
type Config struct {
	// StorageDir holds the asset cache unless Assets.CacheDir is set.
	StorageDir string `yaml:"storage_dir" validate:"required"`

	CRM     CRMConfig     `yaml:"crm"`
	Assets  AssetsConfig  `yaml:"assets"`
	LaTeX   LaTeXConfig   `yaml:"latex"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`

	Fields     companies.FieldSet   `yaml:"fields"`
	Vocabulary companies.Vocabulary `yaml:"vocabulary"`
}

// CRMConfig holds the SOAP connection settings.
type CRMConfig struct {
	URL          string `yaml:"url" validate:"required,url"`
	AppName      string `yaml:"app_name" validate:"required"`
	User         string `yaml:"user" validate:"required"`
	PasswordHash string `yaml:"password_hash" validate:"required,len=32,hexadecimal"`
	TimeoutSec   int    `yaml:"timeout_sec" validate:"min=1"`
}

// AssetsConfig configures logo and advertisement lookup.
type AssetsConfig struct {
	BaseURL         string `yaml:"base_url" validate:"required,url"`
	CacheDir        string `yaml:"cache_dir"`
	LogoExt         string `yaml:"logo_ext" validate:"required,alphanum"`
	AdExt           string `yaml:"ad_ext" validate:"required,oneof=pdf"`
	MaxDimension    int    `yaml:"max_dimension" validate:"min=16"`
	MaxPixels       int    `yaml:"max_pixels" validate:"min=1"`
	MaxBytes        int64  `yaml:"max_bytes" validate:"min=1"`
	TimeoutSec      int    `yaml:"timeout_sec" validate:"min=1"`
	PlaceholderLogo string `yaml:"placeholder_logo"`
	PlaceholderAd   string `yaml:"placeholder_ad"`
}

// LaTeXConfig configures the external compiler and the page template.
type LaTeXConfig struct {
	Command    string   `yaml:"command" validate:"required"`
	Args       []string `yaml:"args"`
	TimeoutSec int      `yaml:"timeout_sec" validate:"min=1"`
	TempRoot   string   `yaml:"temp_root"`
	Template   string   `yaml:"template"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`

	// PDFRequestsPerMinute limits compile routes per client; 0 disables it.
	PDFRequestsPerMinute int `yaml:"pdf_requests_per_minute" validate:"min=0"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Defaults returns a configuration with every optional value filled in.
// Connection credentials are left empty.
func Defaults() *Config {
	return &Config{
		StorageDir: "fairguidepages",
		CRM: CRMConfig{
			AppName:    "fairguide",
			TimeoutSec: int(crm.DefaultTimeout / time.Second),
		},
		Assets: AssetsConfig{
			LogoExt:      "png",
			AdExt:        "pdf",
			MaxDimension: 2048,
			MaxPixels:    40_000_000,
			MaxBytes:     20 << 20,
			TimeoutSec:   30,
		},
		LaTeX: LaTeXConfig{
			Command:    "pdflatex",
			TimeoutSec: 60,
		},
		Server: ServerConfig{
			Addr:                 ":8080",
			PDFRequestsPerMinute: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Fields:     companies.DefaultFieldSet(),
		Vocabulary: companies.DefaultVocabulary(),
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path tries DefaultPath and
// falls back to defaults and environment when it does not exist.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides values from the environment. getenv is os.Getenv
// outside of tests.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(target *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*target = v
		}
	}

	set(&c.CRM.URL, EnvSOAPURL)
	set(&c.CRM.User, EnvSOAPUser)
	set(&c.Assets.BaseURL, EnvMediaURL)
	set(&c.StorageDir, EnvStorageDir)
	set(&c.LaTeX.Command, EnvLaTeX)
	set(&c.Server.Addr, EnvAddr)
	set(&c.Logging.Level, EnvLogLevel)

	if plain := getenv(EnvSOAPPassword); plain != "" {
		c.CRM.PasswordHash = crm.HashPassword(plain)
	}
}

// Validate checks the configuration against its struct tags and the
// vocabulary's count format.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(yamlName)

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s'", trimRoot(fe.Namespace()), fe.Tag()))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config error: %w", err)
	}

	if err := companies.CheckCountFormat(c.Vocabulary.CountFormat); err != nil {
		return fmt.Errorf("config error: vocabulary.count_format: %w", err)
	}
	return nil
}

// CacheDir returns the asset cache directory.
func (c *Config) CacheDir() string {
	if c.Assets.CacheDir != "" {
		return c.Assets.CacheDir
	}
	return filepath.Join(c.StorageDir, "assets")
}

// CRMTimeout returns the SOAP request timeout.
func (c *Config) CRMTimeout() time.Duration {
	return time.Duration(c.CRM.TimeoutSec) * time.Second
}

// AssetTimeout returns the asset download timeout.
func (c *Config) AssetTimeout() time.Duration {
	return time.Duration(c.Assets.TimeoutSec) * time.Second
}

// CompileTimeout returns the compiler timeout.
func (c *Config) CompileTimeout() time.Duration {
	return time.Duration(c.LaTeX.TimeoutSec) * time.Second
}

// Save writes the configuration as YAML. The file holds the password hash
// and is only readable by its owner.
func (c *Config) Save(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

func yamlName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func trimRoot(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
