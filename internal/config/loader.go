package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// envKeys maps the stable environment variable names onto config paths.
// Variables not listed here are ignored. Renaming an entry breaks deployed
// callers, so don't.
var envKeys = map[string]string{
	"GITLAB_API_URL":               "gitlab.api_url",
	"GITLAB_PERSONAL_ACCESS_TOKEN": "gitlab.token",
	"GITLAB_PROJECT_ID":            "gitlab.default_project",
	"GITLAB_ALLOWED_PROJECT_IDS":   "gitlab.allowed_project_ids",
	"GITLAB_READ_ONLY_MODE":        "gitlab.read_only",
	"GITLAB_AUTH_COOKIE_PATH":      "gitlab.auth_cookie_path",
	"USE_GITLAB_WIKI":              "features.wiki",
	"USE_MILESTONE":                "features.milestone",
	"USE_PIPELINE":                 "features.pipeline",
	"STREAMABLE_HTTP":              "transport.streamable_http",
	"SSE":                          "transport.sse",
	"SERVER_HTTP_HOST":             "server.http_host",
	"SERVER_HTTP_PORT":             "server.http_port",
	"SERVER_SHUTDOWN_TIMEOUT":      "server.shutdown_timeout",
	"LOG_LEVEL":                    "log.level",
	"LOG_FORMAT":                   "log.format",
}

// rawConfig is the loosely-typed shape koanf unmarshals into. Flag fields
// stay strings so the truthy flag syntax (1/true/yes/y/on) survives.
type rawConfig struct {
	GitLab struct {
		APIURL            string `koanf:"api_url"`
		Token             string `koanf:"token"`
		DefaultProject    string `koanf:"default_project"`
		AllowedProjectIDs string `koanf:"allowed_project_ids"`
		ReadOnly          string `koanf:"read_only"`
		AuthCookiePath    string `koanf:"auth_cookie_path"`
	} `koanf:"gitlab"`
	Features struct {
		Wiki      string `koanf:"wiki"`
		Milestone string `koanf:"milestone"`
		Pipeline  string `koanf:"pipeline"`
	} `koanf:"features"`
	Transport struct {
		StreamableHTTP string `koanf:"streamable_http"`
		SSE            string `koanf:"sse"`
	} `koanf:"transport"`
	Server struct {
		HTTPHost        string `koanf:"http_host"`
		HTTPPort        int    `koanf:"http_port"`
		ShutdownTimeout string `koanf:"shutdown_timeout"`
	} `koanf:"server"`
	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"log"`
}

// Load resolves configuration from the default file location and the
// environment. It either returns a fully validated Config or an error;
// there is no partially-resolved state.
func Load() (*Config, error) {
	return LoadWithFile("")
}

// LoadWithFile loads configuration from a YAML file, then overrides with
// environment variables.
//
// Precedence (highest to lowest):
//  1. Environment variables (GITLAB_API_URL, USE_PIPELINE, ...)
//  2. YAML config file (default ~/.config/gitlabd/config.yaml)
//  3. Hardcoded defaults
//
// A missing file is fine; a present file must have 0600 or 0400
// permissions and be under 1MB.
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "gitlabd", "config.yaml")
	}

	if f, err := os.Open(configPath); err == nil {
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if err := validateConfigFileProperties(info); err != nil {
			return nil, fmt.Errorf("config file validation failed: %w", err)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment overrides. Only the fixed key set is consulted; the
	// callback returning "" drops everything else.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var raw rawConfig
	if err := k.UnmarshalWithConf("", &raw, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &raw,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg, err := resolve(&raw)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// resolve turns the loosely-typed raw values into a Config with defaults
// applied.
func resolve(raw *rawConfig) (*Config, error) {
	cfg := &Config{
		GitLab: GitLabConfig{
			APIURL:          raw.GitLab.APIURL,
			Token:           Secret(raw.GitLab.Token),
			DefaultProject:  raw.GitLab.DefaultProject,
			AllowedProjects: splitIDs(raw.GitLab.AllowedProjectIDs),
			ReadOnly:        truthy(raw.GitLab.ReadOnly),
			AuthCookiePath:  raw.GitLab.AuthCookiePath,
		},
		Features: FeatureConfig{
			Pipeline:  truthy(raw.Features.Pipeline),
			Milestone: truthy(raw.Features.Milestone),
			Wiki:      truthy(raw.Features.Wiki),
		},
		Server: ServerConfig{
			Host: raw.Server.HTTPHost,
			Port: raw.Server.HTTPPort,
		},
		Log: LogConfig{
			Level:  raw.Log.Level,
			Format: raw.Log.Format,
		},
	}

	// Transport selection: streamable HTTP wins over SSE, neither means
	// stdio.
	switch {
	case truthy(raw.Transport.StreamableHTTP):
		cfg.Transport = ModeStreamableHTTP
	case truthy(raw.Transport.SSE):
		cfg.Transport = ModeSSE
	default:
		cfg.Transport = ModeStdio
	}

	if raw.Server.ShutdownTimeout != "" {
		d, err := time.ParseDuration(raw.Server.ShutdownTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT %q: %w", raw.Server.ShutdownTimeout, err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.GitLab.APIURL == "" {
		cfg.GitLab.APIURL = "https://gitlab.com"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// validateConfigFileProperties checks file permissions and size using the
// FileInfo of an already-opened descriptor to avoid a TOCTOU race.
func validateConfigFileProperties(info os.FileInfo) error {
	// Skip the permission check on Windows (different permission model).
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return nil
}
