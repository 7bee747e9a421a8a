// Package gate decides which catalog tools the server exposes.
//
// A tool is either fully available or fully absent: the advertised set and
// the callable set are always the same. The gate is evaluated once at
// registration and again on every call, so a tool that fails the predicate
// is never reachable through either path.
package gate

import (
	"github.com/fyrsmithlabs/gitlabd/internal/catalog"
	"github.com/fyrsmithlabs/gitlabd/internal/config"
)

// Gate filters the catalog through read-only mode and feature flags.
type Gate struct {
	reg      *catalog.Registry
	readOnly bool
	enabled  map[catalog.FeatureFlag]bool
}

// New builds a gate over the registry from the loaded configuration.
func New(reg *catalog.Registry, cfg *config.Config) *Gate {
	return &Gate{
		reg:      reg,
		readOnly: cfg.GitLab.ReadOnly,
		enabled: map[catalog.FeatureFlag]bool{
			catalog.FlagNone:      true,
			catalog.FlagPipeline:  cfg.Features.Pipeline,
			catalog.FlagMilestone: cfg.Features.Milestone,
			catalog.FlagWiki:      cfg.Features.Wiki,
		},
	}
}

// Available reports whether the definition passes the gate.
func (g *Gate) Available(def catalog.ToolDefinition) bool {
	if g.readOnly && def.Effect == catalog.EffectWrite {
		return false
	}
	return g.enabled[def.Flag]
}

// ListAvailable returns the gated catalog in catalog order.
func (g *Gate) ListAvailable() []catalog.ToolDefinition {
	var out []catalog.ToolDefinition
	for _, def := range g.reg.List() {
		if g.Available(def) {
			out = append(out, def)
		}
	}
	return out
}

// IsCallable reports whether a named tool exists and passes the gate.
// The second return distinguishes an unknown name from a gated-off tool.
func (g *Gate) IsCallable(name string) (callable, known bool) {
	def, ok := g.reg.Lookup(name)
	if !ok {
		return false, false
	}
	return g.Available(def), true
}

// Definition returns the catalog definition for a tool name.
func (g *Gate) Definition(name string) (catalog.ToolDefinition, bool) {
	return g.reg.Lookup(name)
}

// Reason explains why a known tool is gated off. Returns "" for available
// tools. Read-only suppression takes precedence over a disabled flag.
func (g *Gate) Reason(def catalog.ToolDefinition) string {
	if g.readOnly && def.Effect == catalog.EffectWrite {
		return "the server is running in read-only mode"
	}
	if !g.enabled[def.Flag] {
		return "the " + string(def.Flag) + " feature is disabled"
	}
	return ""
}
