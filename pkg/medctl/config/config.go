package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	VersionV1 = "v1"

	DefaultServer   = "http://localhost:8080"
	DefaultBasePath = "/api/medicines"
	DefaultTimeout  = "30s"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// positive_duration accepts a time.ParseDuration string greater than zero.
	_ = v.RegisterValidation("positive_duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d > 0
	})
	return v
}

type Config struct {
	Version        string    `yaml:"version" json:"version" validate:"required,eq=v1"`
	CurrentContext string    `yaml:"current-context,omitempty" json:"current-context,omitempty"`
	Contexts       []Context `yaml:"contexts,omitempty" json:"contexts,omitempty" validate:"dive"`
	Settings       Settings  `yaml:"settings,omitempty" json:"settings,omitempty"`
}

type Settings struct {
	OutputFormat string `yaml:"output-format,omitempty" json:"output-format,omitempty" validate:"omitempty,oneof=raw json yaml table"`
	Timeout      string `yaml:"timeout,omitempty" json:"timeout,omitempty" validate:"omitempty,positive_duration"`
}

// Context is a named API endpoint. BasePath is the collection path appended to Server.
type Context struct {
	Name                  string `yaml:"name" json:"name" validate:"required"`
	Server                string `yaml:"server" json:"server" validate:"required,url"`
	BasePath              string `yaml:"base-path,omitempty" json:"base-path,omitempty" validate:"omitempty,startswith=/"`
	CAFile                string `yaml:"ca-file,omitempty" json:"ca-file,omitempty"`
	InsecureSkipTLSVerify bool   `yaml:"insecure-skip-tls-verify,omitempty" json:"insecure-skip-tls-verify,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version: VersionV1,
		Settings: Settings{
			OutputFormat: "raw",
			Timeout:      DefaultTimeout,
		},
	}
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns DefaultConfig when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		def := DefaultConfig()
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

func (c *Config) FindContext(name string) (*Context, error) {
	for i := range c.Contexts {
		if c.Contexts[i].Name == name {
			return &c.Contexts[i], nil
		}
	}
	return nil, fmt.Errorf("context not found: %s", name)
}

func (c *Config) CurrentContextOrDefault() string {
	if c.CurrentContext != "" {
		return c.CurrentContext
	}
	if len(c.Contexts) > 0 {
		return c.Contexts[0].Name
	}
	return ""
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(c.Contexts))
	for _, ctx := range c.Contexts {
		if _, dup := seen[ctx.Name]; dup {
			return fmt.Errorf("duplicate context: %s", ctx.Name)
		}
		seen[ctx.Name] = struct{}{}
	}
	if c.CurrentContext != "" && len(c.Contexts) > 0 {
		if _, err := c.FindContext(c.CurrentContext); err != nil {
			return err
		}
	}
	return nil
}
