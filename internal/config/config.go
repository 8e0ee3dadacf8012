// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/smileynet/campusconnect/internal/record"
)

// DefaultEndpoint is the registration API records are posted to.
const DefaultEndpoint = "https://agratasinfotech.com/api/v1/campusconnect/"

// Config holds all campusconnect configuration.
type Config struct {
	Endpoint    Endpoint           `yaml:"endpoint"`
	Institution record.Institution `yaml:"institution"`
	Log         Log                `yaml:"log"`
}

// Endpoint holds submission target settings.
type Endpoint struct {
	URL     string        `yaml:"url" validate:"required,http_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Log holds logging settings. An empty Path disables the log file.
type Log struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint: Endpoint{
			URL:     DefaultEndpoint,
			Timeout: 30 * time.Second,
		},
		Institution: record.DefaultInstitution(),
		Log: Log{
			Path:  ".campusconnect/logs/campusconnect.log",
			Level: "info",
		},
	}
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", yamlPath(fe.Namespace()), fe.Tag()))
			}
			return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	if c.Endpoint.Timeout <= 0 {
		return fmt.Errorf("config: endpoint.timeout must be positive, got %v", c.Endpoint.Timeout)
	}
	return nil
}

// yamlPath turns a validator namespace like "Config.Endpoint.URL" into
// the YAML key path "endpoint.url".
func yamlPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	if s == "URL" {
		return "url"
	}
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CAMPUSCONNECT_ENDPOINT, CAMPUSCONNECT_TIMEOUT,
// CAMPUSCONNECT_LOG_LEVEL, CAMPUSCONNECT_LOG_PATH.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CAMPUSCONNECT_ENDPOINT"); v != "" {
		c.Endpoint.URL = v
	}
	if v := os.Getenv("CAMPUSCONNECT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid CAMPUSCONNECT_TIMEOUT %q: %w", v, err)
		}
		c.Endpoint.Timeout = d
	}
	if v := os.Getenv("CAMPUSCONNECT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv("CAMPUSCONNECT_LOG_PATH"); ok {
		c.Log.Path = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Endpoint    *rawEndpoint    `yaml:"endpoint"`
	Institution *rawInstitution `yaml:"institution"`
	Log         *rawLog         `yaml:"log"`
}

type rawEndpoint struct {
	URL     *string        `yaml:"url"`
	Timeout *time.Duration `yaml:"timeout"`
}

type rawInstitution struct {
	Name       *string `yaml:"name"`
	City       *string `yaml:"city"`
	State      *string `yaml:"state"`
	Country    *string `yaml:"country"`
	Address    *string `yaml:"address"`
	PostalCode *string `yaml:"postal_code"`
}

type rawLog struct {
	Path  *string `yaml:"path"`
	Level *string `yaml:"level"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if e := layer.Endpoint; e != nil {
		setIf(&c.Endpoint.URL, e.URL)
		if e.Timeout != nil {
			c.Endpoint.Timeout = *e.Timeout
		}
	}
	if i := layer.Institution; i != nil {
		setIf(&c.Institution.Name, i.Name)
		setIf(&c.Institution.City, i.City)
		setIf(&c.Institution.State, i.State)
		setIf(&c.Institution.Country, i.Country)
		setIf(&c.Institution.Address, i.Address)
		setIf(&c.Institution.PostalCode, i.PostalCode)
	}
	if l := layer.Log; l != nil {
		setIf(&c.Log.Path, l.Path)
		setIf(&c.Log.Level, l.Level)
	}
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
