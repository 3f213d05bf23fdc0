// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/gi-cli/gi/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "gi"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// AliasFileName is the default alias file inside the config directory.
	AliasFileName = "aliases.jsonc"
	// EnvPrefix prefixes environment overrides (GI_CACHE_TTL, ...).
	EnvPrefix = "GI"
)

//go:embed config_schema.cue
var configSchema string

// loadWithOptions performs option-driven config loading. Precedence, lowest
// first: defaults, config file, GI_* environment variables.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper(opts.Getenv)

	path, err := configFileFor(opts)
	if err != nil {
		return nil, err
	}
	var fileAliases map[string]string
	if path != "" {
		if fileAliases, err = loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'gi config show' to see the effective configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse configuration").
			WithResource(path).
			WithSuggestion("Durations use Go syntax such as \"24h\" or \"90s\"").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}
	cfg.Path = path
	cfg.Aliases = DefaultConfig().Aliases
	maps.Copy(cfg.Aliases, fileAliases)

	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check GI_* environment variables as well as the config file").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, nil
}

// newViper returns a Viper instance with defaults and environment bindings.
func newViper(getenv func(string) string) *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("cache_dir", defaults.CacheDir)
	v.SetDefault("cache_ttl", defaults.CacheTTL)
	v.SetDefault("catalog_ttl", defaults.CatalogTTL)
	v.SetDefault("network_timeout", defaults.NetworkTimeout)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("alias_file", defaults.AliasFile)
	v.SetDefault("metrics_file", defaults.MetricsFile)
	v.SetDefault("source.api_url", defaults.Source.APIURL)
	v.SetDefault("source.owner", defaults.Source.Owner)
	v.SetDefault("source.repo", defaults.Source.Repo)
	v.SetDefault("source.ref", defaults.Source.Ref)
	v.SetDefault("source.directories", defaults.Source.Directories)
	v.SetDefault("source.token", defaults.Source.Token)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.header", defaults.UI.Header)
	v.SetDefault("ui.fenced", defaults.UI.Fenced)
	v.SetDefault("ui.normalize_whitespace", defaults.UI.NormalizeWhitespace)
	v.SetDefault("ui.auto_detect", defaults.UI.AutoDetect)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))

	if getenv == nil {
		getenv = os.Getenv
	}
	// Bound explicitly rather than with AutomaticEnv so tests can inject
	// an environment.
	for _, key := range v.AllKeys() {
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if val := getenv(envKey); val != "" {
			v.Set(key, val)
		}
	}
	if v.GetString("source.token") == "" {
		if tok := getenv("GITHUB_TOKEN"); tok != "" {
			v.Set("source.token", tok)
		}
	}
	return v
}

// configFileFor picks the config file to read. An explicit path must exist;
// otherwise config.cue in the config directory is used if present, and no
// file at all is fine.
func configFileFor(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'gi config init' to create a default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if p := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt); fileExists(p) {
		return p, nil
	}
	return "", nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. Concrete(false) is used because every
// field is optional.
//
// Aliases are returned separately: template names such as "node.js" would
// be split on viper's key delimiter.
func loadCUEIntoViper(v *viper.Viper, path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := checkFileSize(data, path); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return nil, formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, formatCUEError(err, path)
	}

	var aliases map[string]string
	if av := unified.LookupPath(cue.MakePath(cue.Str("aliases"))); av.Exists() {
		if err := av.Decode(&aliases); err != nil {
			return nil, formatCUEError(err, path)
		}
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return nil, formatCUEError(err, path)
	}
	delete(configMap, "aliases")

	if err := v.MergeConfigMap(configMap); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	return aliases, nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file unless one exists or
// force is set. It returns the path and whether a file was written.
func CreateDefaultConfig(dir string, force bool) (string, bool, error) {
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", false, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if !force && fileExists(cfgPath) {
		return cfgPath, false, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, true, nil
}

// GenerateCUE renders cfg as a config file. The token is never written.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// gi configuration file\n")
	sb.WriteString("// Environment variables prefixed with GI_ override these values.\n\n")

	if cfg.CacheDir != "" {
		fmt.Fprintf(&sb, "cache_dir: %q\n", cfg.CacheDir)
	}
	fmt.Fprintf(&sb, "cache_ttl: %q\n", cfg.CacheTTL.String())
	fmt.Fprintf(&sb, "catalog_ttl: %q\n", cfg.CatalogTTL.String())
	fmt.Fprintf(&sb, "network_timeout: %q\n", cfg.NetworkTimeout.String())
	fmt.Fprintf(&sb, "workers: %d\n", cfg.Workers)
	if cfg.AliasFile != "" {
		fmt.Fprintf(&sb, "alias_file: %q\n", cfg.AliasFile)
	}
	if cfg.MetricsFile != "" {
		fmt.Fprintf(&sb, "metrics_file: %q\n", cfg.MetricsFile)
	}

	if len(cfg.Aliases) > 0 {
		sb.WriteString("\naliases: {\n")
		for _, k := range sortedKeys(cfg.Aliases) {
			fmt.Fprintf(&sb, "\t%q: %q\n", k, cfg.Aliases[k])
		}
		sb.WriteString("}\n")
	}

	sb.WriteString("\nsource: {\n")
	fmt.Fprintf(&sb, "\tapi_url: %q\n", cfg.Source.APIURL)
	fmt.Fprintf(&sb, "\towner: %q\n", cfg.Source.Owner)
	fmt.Fprintf(&sb, "\trepo: %q\n", cfg.Source.Repo)
	if cfg.Source.Ref != "" {
		fmt.Fprintf(&sb, "\tref: %q\n", cfg.Source.Ref)
	}
	quoted := make([]string, len(cfg.Source.Directories))
	for i, d := range cfg.Source.Directories {
		quoted[i] = fmt.Sprintf("%q", d)
	}
	fmt.Fprintf(&sb, "\tdirectories: [%s]\n", strings.Join(quoted, ", "))
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\theader: %v\n", cfg.UI.Header)
	fmt.Fprintf(&sb, "\tfenced: %v\n", cfg.UI.Fenced)
	fmt.Fprintf(&sb, "\tnormalize_whitespace: %v\n", cfg.UI.NormalizeWhitespace)
	fmt.Fprintf(&sb, "\tauto_detect: %v\n", cfg.UI.AutoDetect)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}
