// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces the dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces the light color scheme.
	ColorSchemeLight ColorScheme = "light"

	maxWorkers = 64
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidSourceConfig is the sentinel error wrapped by InvalidSourceConfigError.
	ErrInvalidSourceConfig = errors.New("invalid source config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidSourceConfigError collects SourceConfig field errors.
	InvalidSourceConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError collects Config field errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// CacheDir overrides the platform cache directory.
		CacheDir string `json:"cache_dir" mapstructure:"cache_dir"`
		// CacheTTL is how long a cached template is used without refreshing.
		CacheTTL time.Duration `json:"cache_ttl" mapstructure:"cache_ttl"`
		// CatalogTTL is how long the cached template list is used.
		CatalogTTL time.Duration `json:"catalog_ttl" mapstructure:"catalog_ttl"`
		// NetworkTimeout bounds each individual network request.
		NetworkTimeout time.Duration `json:"network_timeout" mapstructure:"network_timeout"`
		// Workers bounds concurrent template downloads.
		Workers int `json:"workers" mapstructure:"workers"`
		// Aliases map short names to template names and override the defaults.
		// They are decoded from CUE directly, never through viper.
		Aliases map[string]string `json:"aliases" mapstructure:"-"`
		// AliasFile is a JSONC file of additional aliases. Empty means
		// aliases.jsonc in the config directory, if present.
		AliasFile string `json:"alias_file" mapstructure:"alias_file"`
		// MetricsFile, when set, receives Prometheus metrics after each run.
		MetricsFile string `json:"metrics_file" mapstructure:"metrics_file"`
		// Source selects the template repository.
		Source SourceConfig `json:"source" mapstructure:"source"`
		// UI configures output.
		UI UIConfig `json:"ui" mapstructure:"ui"`

		// Path is the file the configuration was loaded from, if any.
		Path string `json:"-" mapstructure:"-"`
	}

	// SourceConfig selects the template repository on GitHub.
	SourceConfig struct {
		APIURL      string   `json:"api_url" mapstructure:"api_url"`
		Owner       string   `json:"owner" mapstructure:"owner"`
		Repo        string   `json:"repo" mapstructure:"repo"`
		Ref         string   `json:"ref" mapstructure:"ref"`
		Directories []string `json:"directories" mapstructure:"directories"`
		Token       string   `json:"-" mapstructure:"token"`
	}

	// UIConfig configures output.
	UIConfig struct {
		// Verbose enables debug logging and error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Header emits the generated-by comment block.
		Header bool `json:"header" mapstructure:"header"`
		// Fenced wraps each template in ###> / ###< markers.
		Fenced bool `json:"fenced" mapstructure:"fenced"`
		// NormalizeWhitespace collapses internal whitespace when deduplicating.
		NormalizeWhitespace bool `json:"normalize_whitespace" mapstructure:"normalize_whitespace"`
		// AutoDetect picks templates from the environment when none are given.
		AutoDetect bool `json:"auto_detect" mapstructure:"auto_detect"`
		// ColorScheme selects the guide rendering style.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CacheTTL:       24 * time.Hour,
		CatalogTTL:     24 * time.Hour,
		NetworkTimeout: 30 * time.Second,
		Workers:        4,
		Aliases:        map[string]string{},
		Source: SourceConfig{
			APIURL:      "https://api.github.com",
			Owner:       "github",
			Repo:        "gitignore",
			Directories: []string{"Global"},
		},
		UI: UIConfig{
			Header:      true,
			Fenced:      true,
			AutoDetect:  true,
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// String returns the scheme name.
func (c ColorScheme) String() string { return string(c) }

// IsValid reports whether c is a known scheme.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid checks the fields CUE cannot: URL structure and repository names.
func (s SourceConfig) IsValid() (bool, []error) {
	var errs []error
	u, err := url.Parse(s.APIURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("source.api_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https", u.Host == "":
		errs = append(errs, fmt.Errorf("source.api_url: %q is not an absolute http(s) URL", s.APIURL))
	}
	if strings.TrimSpace(s.Owner) == "" {
		errs = append(errs, errors.New("source.owner: must not be empty"))
	}
	if strings.TrimSpace(s.Repo) == "" {
		errs = append(errs, errors.New("source.repo: must not be empty"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidSourceConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidSourceConfigError) Error() string {
	return fmt.Sprintf("invalid source config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidSourceConfig for errors.Is() compatibility.
func (e *InvalidSourceConfigError) Unwrap() error { return ErrInvalidSourceConfig }

// IsValid returns whether the Config has valid fields. Values arriving
// through environment variables bypass the CUE schema, so ranges are
// checked again here.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache_ttl: must be positive, got %s", c.CacheTTL))
	}
	if c.CatalogTTL <= 0 {
		errs = append(errs, fmt.Errorf("catalog_ttl: must be positive, got %s", c.CatalogTTL))
	}
	if c.NetworkTimeout <= 0 {
		errs = append(errs, fmt.Errorf("network_timeout: must be positive, got %s", c.NetworkTimeout))
	}
	if c.Workers < 1 || c.Workers > maxWorkers {
		errs = append(errs, fmt.Errorf("workers: must be between 1 and %d, got %d", maxWorkers, c.Workers))
	}
	if valid, fieldErrs := c.Source.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
