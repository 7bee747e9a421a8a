package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryUniqueNames(t *testing.T) {
	reg := New()
	seen := make(map[string]bool)
	for _, def := range reg.List() {
		require.False(t, seen[def.Name], "duplicate tool %q", def.Name)
		seen[def.Name] = true
	}
}

func TestRegistryOrderStable(t *testing.T) {
	a := New().List()
	b := New().List()
	require.Equal(t, len(a), len(b))
	for i := range a {
		require.Equal(t, a[i].Name, b[i].Name)
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := New()

	def, ok := reg.Lookup("create_issue")
	require.True(t, ok)
	require.Equal(t, GroupIssue, def.Group)
	require.Equal(t, EffectWrite, def.Effect)
	require.True(t, def.ProjectScoped)

	_, ok = reg.Lookup("no_such_tool")
	require.False(t, ok)
}

func TestRegistryClassifications(t *testing.T) {
	reg := New()
	require.Equal(t, 44, reg.Len())

	flagByGroup := map[Group]FeatureFlag{
		GroupProject:      FlagNone,
		GroupRepository:   FlagNone,
		GroupIssue:        FlagNone,
		GroupMergeRequest: FlagNone,
		GroupNote:         FlagNone,
		GroupDraftNote:    FlagNone,
		GroupPipeline:     FlagPipeline,
		GroupWiki:         FlagWiki,
		GroupMilestone:    FlagMilestone,
	}

	for _, def := range reg.List() {
		t.Run(def.Name, func(t *testing.T) {
			want, ok := flagByGroup[def.Group]
			require.True(t, ok, "unknown group %q", def.Group)
			require.Equal(t, want, def.Flag)
			require.Contains(t, []Effect{EffectRead, EffectWrite}, def.Effect)
			require.NotEmpty(t, def.Description)
		})
	}
}

func TestRegistryProjectScope(t *testing.T) {
	reg := New()
	for _, def := range reg.List() {
		// Only the two project-level tools operate outside a project.
		scoped := def.Name != "search_repositories" && def.Name != "create_repository"
		require.Equal(t, scoped, def.ProjectScoped, "tool %q", def.Name)
	}
}

func TestRegistrySchemasAreObjects(t *testing.T) {
	reg := New()
	for _, def := range reg.List() {
		var s struct {
			Type       string                     `json:"type"`
			Properties map[string]json.RawMessage `json:"properties"`
			Required   []string                   `json:"required"`
		}
		require.NoError(t, json.Unmarshal(def.InputSchema, &s), "tool %q", def.Name)
		require.Equal(t, "object", s.Type, "tool %q", def.Name)
		require.NotEmpty(t, s.Properties, "tool %q", def.Name)
		for _, name := range s.Required {
			require.Contains(t, s.Properties, name, "tool %q requires unknown property", def.Name)
		}
		if def.ProjectScoped {
			require.Contains(t, s.Properties, "project_id", "tool %q", def.Name)
			require.NotContains(t, s.Required, "project_id", "tool %q", def.Name)
		}
	}
}
