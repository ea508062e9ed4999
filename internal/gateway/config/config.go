// Package config loads the nanobanana server configuration from a TOML file
// and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/joho/godotenv"

	"github.com/tansive/nanobanana/internal/common/schemavalidator"
	"github.com/tansive/nanobanana/internal/gateway/artifact"
	"github.com/tansive/nanobanana/internal/gateway/params"
	"github.com/tansive/nanobanana/internal/gateway/resilience"
)

// ConfigFormatVersion is the current version of the configuration file format.
const ConfigFormatVersion = "0.1.0"

// APIKeyEnv names the environment variable holding the Gemini API key.
const APIKeyEnv = "GEMINI_API_KEY"

// Transport modes.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

var formatConstraint *semver.Constraints

func init() {
	var err error
	// any 0.1.x file
	formatConstraint, err = semver.NewConstraint("~0.1")
	if err != nil {
		panic(err)
	}
}

// RetryConfig holds the retry policy applied to every Gemini call.
type RetryConfig struct {
	Enabled      bool    `toml:"enabled" json:"enabled"`
	InitialDelay string  `toml:"initial_delay" json:"initial_delay" validate:"duration"` // wait before the first retry
	MaxDelay     string  `toml:"max_delay" json:"max_delay" validate:"duration"`         // cap on a single wait
	Multiplier   float64 `toml:"multiplier" json:"multiplier" validate:"gt=1"`
	Timeout      string  `toml:"timeout" json:"timeout" validate:"duration"` // total budget across attempts
}

// TransportConfig selects how MCP clients reach the server.
type TransportConfig struct {
	Mode       string `toml:"mode" json:"mode" validate:"oneof=stdio http"`
	ListenAddr string `toml:"listen_addr" json:"listen_addr" validate:"required_if=Mode http"` // host:port for http mode
	HandleCORS bool   `toml:"handle_cors" json:"handle_cors"`
}

// ConfigParam holds all configuration parameters for the server.
type ConfigParam struct {
	FormatVersion string `toml:"format_version" json:"format_version" validate:"required,semver"`

	OutputDir    string `toml:"output_dir" json:"output_dir" validate:"required"` // where generated images are written
	DefaultModel string `toml:"default_model" json:"default_model" validate:"required"`
	LogLevel     string `toml:"log_level" json:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	APIKey       string `toml:"api_key,omitempty" json:"api_key,omitempty"` // overrides GEMINI_API_KEY when set

	Retry     RetryConfig     `toml:"retry" json:"retry"`
	Transport TransportConfig `toml:"transport" json:"transport"`
}

var cfg *ConfigParam

// Config returns the current configuration.
func Config() *ConfigParam {
	return cfg
}

// SetConfig replaces the current configuration.
func SetConfig(c *ConfigParam) {
	cfg = c
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *ConfigParam {
	p := resilience.DefaultPolicy()
	return &ConfigParam{
		FormatVersion: ConfigFormatVersion,
		OutputDir:     artifact.DefaultOutputDir,
		DefaultModel:  params.DefaultModel,
		LogLevel:      "info",
		Retry: RetryConfig{
			Enabled:      p.Enabled,
			InitialDelay: p.InitialDelay.String(),
			MaxDelay:     p.MaxDelay.String(),
			Multiplier:   p.Multiplier,
			Timeout:      p.Timeout.String(),
		},
		Transport: TransportConfig{
			Mode:       TransportStdio,
			ListenAddr: "127.0.0.1:8628",
		},
	}
}

// LoadConfig loads the configuration file and makes it current. An empty
// filename, or a file that does not exist, yields the defaults.
func LoadConfig(filename string) error {
	c := DefaultConfig()
	if filename != "" {
		content, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return ErrReadConfig.MsgErr(fmt.Sprintf("error reading config file %s", filename), err)
		default:
			if c, err = ParseConfig(content); err != nil {
				return err
			}
		}
	}
	if err := ValidateConfig(c); err != nil {
		return err
	}
	cfg = c
	return nil
}

// ParseConfig decodes TOML content over the defaults, so keys left out of
// the file keep their default values.
func ParseConfig(content []byte) (*ConfigParam, error) {
	c := DefaultConfig()
	md, err := toml.NewDecoder(bytes.NewReader(content)).Decode(c)
	if err != nil {
		return nil, ErrParseConfig.MsgErr(fmt.Sprintf("error parsing config file: %v", err), err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, ErrParseConfig.Msg(fmt.Sprintf("unknown config key: %s", undecoded[0]))
	}
	return c, nil
}

// ValidateConfig checks that c is complete and consistent. It resolves
// model aliases and makes OutputDir absolute.
func ValidateConfig(c *ConfigParam) error {
	if err := schemavalidator.V().Struct(c); err != nil {
		if ves := schemavalidator.ValidationErrors(err); len(ves) > 0 {
			return ErrInvalidConfig.Err(ves)
		}
		return ErrInvalidConfig.Err(err)
	}

	v, err := semver.NewVersion(c.FormatVersion)
	if err != nil || !formatConstraint.Check(v) {
		return ErrUnsupportedFormat.Msg(fmt.Sprintf("unsupported config file format version: %s", c.FormatVersion))
	}

	m, err := params.ValidateModel(c.DefaultModel)
	if err != nil {
		return ErrInvalidConfig.Err(err)
	}
	c.DefaultModel = m.ID

	if _, err := c.RetryPolicy(); err != nil {
		return ErrInvalidConfig.Err(err)
	}

	if !filepath.IsAbs(c.OutputDir) {
		abs, err := filepath.Abs(c.OutputDir)
		if err != nil {
			return ErrInvalidConfig.MsgErr("unable to resolve output_dir", err)
		}
		c.OutputDir = abs
	}
	return nil
}

// RetryPolicy converts the [retry] section into a resilience.Policy.
func (c *ConfigParam) RetryPolicy() (resilience.Policy, error) {
	r := c.Retry
	p := resilience.Policy{Enabled: r.Enabled, Multiplier: r.Multiplier}
	for _, d := range []struct {
		name string
		in   string
		out  *time.Duration
	}{
		{"retry.initial_delay", r.InitialDelay, &p.InitialDelay},
		{"retry.max_delay", r.MaxDelay, &p.MaxDelay},
		{"retry.timeout", r.Timeout, &p.Timeout},
	} {
		v, err := time.ParseDuration(d.in)
		if err != nil {
			return resilience.Policy{}, ErrInvalidConfig.MsgErr(fmt.Sprintf("invalid %s: %s", d.name, d.in), err)
		}
		*d.out = v
	}
	if err := p.Validate(); err != nil {
		return resilience.Policy{}, err
	}
	return p, nil
}

// ResolveAPIKey returns the Gemini API key. A key in the config file wins;
// otherwise GEMINI_API_KEY is read from the environment after loading any
// .env file in the working directory.
func (c *ConfigParam) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if cwd, err := os.Getwd(); err == nil {
		_ = godotenv.Load(filepath.Join(cwd, ".env")) // no error if .env doesn't exist
	}
	return os.Getenv(APIKeyEnv)
}

// Redacted returns a copy of c that is safe to print.
func (c *ConfigParam) Redacted() *ConfigParam {
	cp := *c
	if cp.APIKey != "" {
		cp.APIKey = "********"
	}
	return &cp
}

// Encode writes c as TOML.
func (c *ConfigParam) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
