// Package catalog holds the static registry of GitLab tool definitions.
//
// The catalog is built once at process start and never mutated. Tool names
// are part of the external contract: callers configure them in advance, so
// renaming an entry breaks them.
package catalog

import (
	"encoding/json"
	"fmt"
)

// Effect classifies whether a tool mutates remote state.
type Effect string

const (
	// EffectRead marks tools that only query the remote API.
	EffectRead Effect = "read"
	// EffectWrite marks tools that mutate remote state. Write tools are
	// suppressed entirely in read-only mode.
	EffectWrite Effect = "write"
)

// FeatureFlag names the configuration flag that owns a tool group.
type FeatureFlag string

const (
	// FlagNone marks tools that are always eligible.
	FlagNone FeatureFlag = "none"
	// FlagPipeline gates the pipeline tools (USE_PIPELINE).
	FlagPipeline FeatureFlag = "pipeline"
	// FlagMilestone gates the milestone tools (USE_MILESTONE).
	FlagMilestone FeatureFlag = "milestone"
	// FlagWiki gates the wiki tools (USE_GITLAB_WIKI).
	FlagWiki FeatureFlag = "wiki"
)

// Group names the remote resource a tool operates on.
type Group string

const (
	GroupProject      Group = "project"
	GroupRepository   Group = "repository"
	GroupIssue        Group = "issue"
	GroupMergeRequest Group = "merge_request"
	GroupNote         Group = "note"
	GroupDraftNote    Group = "draft_note"
	GroupPipeline     Group = "pipeline"
	GroupWiki         Group = "wiki"
	GroupMilestone    Group = "milestone"
)

// ToolDefinition describes one advertised tool. Immutable.
type ToolDefinition struct {
	// Name is the unique, stable tool identifier.
	Name string
	// Description is shown to MCP clients.
	Description string
	// Group is the remote resource group the tool belongs to.
	Group Group
	// Effect is the read/write classification.
	Effect Effect
	// Flag is the owning feature flag, FlagNone if always eligible.
	Flag FeatureFlag
	// ProjectScoped tools resolve an effective project id and are subject
	// to the allow-list.
	ProjectScoped bool
	// InputSchema is the JSON schema for the tool's arguments.
	InputSchema json.RawMessage
}

// Registry is the ordered, immutable tool catalog.
type Registry struct {
	defs   []ToolDefinition
	byName map[string]int
}

// New builds the registry from the static definition table.
func New() *Registry {
	defs := definitions()
	byName := make(map[string]int, len(defs))
	for i, def := range defs {
		if _, dup := byName[def.Name]; dup {
			panic(fmt.Sprintf("catalog: duplicate tool name %q", def.Name))
		}
		byName[def.Name] = i
	}
	return &Registry{defs: defs, byName: byName}
}

// List returns all tool definitions in catalog order.
func (r *Registry) List() []ToolDefinition {
	out := make([]ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Lookup returns the definition for a tool name.
func (r *Registry) Lookup(name string) (ToolDefinition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return ToolDefinition{}, false
	}
	return r.defs[i], true
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.defs)
}
