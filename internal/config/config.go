// Package config provides configuration loading for gitlabd.
//
// Configuration is resolved once at startup from an optional YAML file
// overridden by environment variables, validated, and never mutated
// afterwards. The environment variable names are part of the external
// contract and must stay stable across versions.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Mode selects the transport the server binds at startup.
type Mode string

const (
	// ModeStdio serves MCP over the process stdin/stdout pipe.
	ModeStdio Mode = "stdio"
	// ModeStreamableHTTP serves MCP over a persistent streamable HTTP endpoint.
	ModeStreamableHTTP Mode = "streamable-http"
	// ModeSSE serves MCP over a server-sent-events endpoint.
	ModeSSE Mode = "sse"
)

// Config holds the complete gitlabd configuration. Immutable after Load.
type Config struct {
	GitLab    GitLabConfig
	Features  FeatureConfig
	Transport Mode
	Server    ServerConfig
	Log       LogConfig
}

// GitLabConfig holds connection and policy settings for the remote API.
type GitLabConfig struct {
	// APIURL is the GitLab instance base URL (GITLAB_API_URL).
	APIURL string
	// Token is the personal access token (GITLAB_PERSONAL_ACCESS_TOKEN).
	Token Secret
	// DefaultProject is used when a call omits project_id (GITLAB_PROJECT_ID).
	DefaultProject string
	// AllowedProjects restricts calls to these project ids when non-empty
	// (GITLAB_ALLOWED_PROJECT_IDS, comma-separated numeric ids).
	AllowedProjects []string
	// ReadOnly suppresses all write tools (GITLAB_READ_ONLY_MODE).
	ReadOnly bool
	// AuthCookiePath optionally points at a Netscape-format cookie file
	// attached to every API request (GITLAB_AUTH_COOKIE_PATH). A missing
	// file is skipped.
	AuthCookiePath string
}

// FeatureConfig holds the per-group tool flags.
type FeatureConfig struct {
	Pipeline  bool // USE_PIPELINE
	Milestone bool // USE_MILESTONE
	Wiki      bool // USE_GITLAB_WIKI
}

// ServerConfig holds HTTP transport settings (ignored in stdio mode).
type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// ProjectAllowed reports whether the allow-list admits the given project id.
// An empty allow-list admits every project.
func (g GitLabConfig) ProjectAllowed(projectID string) bool {
	if len(g.AllowedProjects) == 0 {
		return true
	}
	for _, id := range g.AllowedProjects {
		if id == projectID {
			return true
		}
	}
	return false
}

// Validate validates the configuration. A configuration that fails
// validation must not be served: the process exits instead (fail fast,
// no partial configuration).
func (c *Config) Validate() error {
	if !c.GitLab.Token.IsSet() {
		return errors.New("GITLAB_PERSONAL_ACCESS_TOKEN is required")
	}

	u, err := url.Parse(c.GitLab.APIURL)
	if err != nil {
		return fmt.Errorf("invalid GITLAB_API_URL %q: %w", c.GitLab.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("GITLAB_API_URL %q must use http or https", c.GitLab.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("GITLAB_API_URL %q has no host", c.GitLab.APIURL)
	}

	for _, id := range c.GitLab.AllowedProjects {
		n, err := strconv.Atoi(id)
		if err != nil || n <= 0 {
			return fmt.Errorf("GITLAB_ALLOWED_PROJECT_IDS entry %q is not a positive numeric project id", id)
		}
	}

	switch c.Transport {
	case ModeStdio, ModeStreamableHTTP, ModeSSE:
	default:
		return fmt.Errorf("unknown transport mode %q", c.Transport)
	}

	if c.Transport != ModeStdio {
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
		}
		if c.Server.ShutdownTimeout <= 0 {
			return errors.New("shutdown timeout must be positive")
		}
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got %q", c.Log.Format)
	}

	return nil
}

// truthy parses the flag syntax the environment contract accepts:
// 1/true/yes/y/on enable, everything else disables. WeaklyTypedInput turns
// YAML booleans into "1"/"0" before this runs.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// splitIDs splits a comma-separated id list, dropping empty entries.
func splitIDs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
