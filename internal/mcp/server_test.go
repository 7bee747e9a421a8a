package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/fyrsmithlabs/gitlabd/internal/catalog"
	"github.com/fyrsmithlabs/gitlabd/internal/config"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.GitLab.APIURL = "https://gitlab.example.com"
	cfg.GitLab.DefaultProject = "1"
	if mutate != nil {
		mutate(cfg)
	}

	gl, err := gitlab.NewClient("token", gitlab.WithBaseURL(cfg.GitLab.APIURL))
	require.NoError(t, err)

	srv, err := NewServer(cfg, gl, Options{
		Version: "test",
		Logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return srv
}

func TestNewServerRegistersGatedSubset(t *testing.T) {
	total := catalog.New().Len()

	t.Run("defaults_hide_flagged_groups", func(t *testing.T) {
		srv := newTestServer(t, nil)
		for _, def := range srv.AvailableTools() {
			require.Equal(t, catalog.FlagNone, def.Flag)
		}
		require.Less(t, len(srv.AvailableTools()), total)
	})

	t.Run("all_features_all_tools", func(t *testing.T) {
		srv := newTestServer(t, func(cfg *config.Config) {
			cfg.Features = config.FeatureConfig{Pipeline: true, Milestone: true, Wiki: true}
		})
		require.Len(t, srv.AvailableTools(), total)
	})

	t.Run("read_only_hides_writes", func(t *testing.T) {
		srv := newTestServer(t, func(cfg *config.Config) {
			cfg.GitLab.ReadOnly = true
			cfg.Features = config.FeatureConfig{Pipeline: true, Milestone: true, Wiki: true}
		})
		for _, def := range srv.AvailableTools() {
			require.Equal(t, catalog.EffectRead, def.Effect)
		}
	})
}

func TestSDKToolAnnotations(t *testing.T) {
	reg := catalog.New()

	readDef, ok := reg.Lookup("list_issues")
	require.True(t, ok)
	tool, err := sdkTool(readDef)
	require.NoError(t, err)
	require.True(t, tool.Annotations.ReadOnlyHint)
	require.NotNil(t, tool.InputSchema)

	writeDef, ok := reg.Lookup("create_issue")
	require.True(t, ok)
	tool, err = sdkTool(writeDef)
	require.NoError(t, err)
	require.False(t, tool.Annotations.ReadOnlyHint)
}

func TestRawArguments(t *testing.T) {
	for name, tc := range map[string]struct {
		in   any
		want string
	}{
		"nil":         {nil, "{}"},
		"raw_message": {json.RawMessage(`{"a":1}`), `{"a":1}`},
		"empty_raw":   {json.RawMessage(nil), "{}"},
		"bytes":       {[]byte(`{"b":2}`), `{"b":2}`},
		"map":         {map[string]any{"c": 3}, `{"c":3}`},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := rawArguments(tc.in)
			require.NoError(t, err)
			require.JSONEq(t, tc.want, string(got))
		})
	}
}

func TestErrorResultShape(t *testing.T) {
	res := errorResult(errProjectNotAllowed("3"))
	require.True(t, res.IsError)
	require.Len(t, res.Content, 1)

	text := res.Content[0].(*mcpsdk.TextContent).Text
	var te ToolError
	require.NoError(t, json.Unmarshal([]byte(text), &te))
	require.Equal(t, KindProjectNotAllowed, te.Kind)
	require.Contains(t, te.Message, "3")
}

func TestSuccessResultShape(t *testing.T) {
	res, err := successResult(map[string]any{"iid": 5})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.NotNil(t, res.StructuredContent)

	text := res.Content[0].(*mcpsdk.TextContent).Text
	require.JSONEq(t, `{"iid":5}`, text)
}

func TestGatedToolCallOverWire(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx := context.Background()

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	ss, err := srv.mcp.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	t.Run("gated_off_tool_gets_disabled_error", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: "list_pipelines"})
		require.NoError(t, err)
		require.True(t, res.IsError)

		text := res.Content[0].(*mcpsdk.TextContent).Text
		var te ToolError
		require.NoError(t, json.Unmarshal([]byte(text), &te))
		require.Equal(t, KindToolDisabled, te.Kind)
		require.Contains(t, te.Message, "pipeline")
	})

	t.Run("unknown_tool_is_a_protocol_error", func(t *testing.T) {
		_, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: "no_such_tool"})
		require.Error(t, err)
	})
}

func TestTransportHandlers(t *testing.T) {
	srv := newTestServer(t, nil)
	require.NotNil(t, srv.StreamableHTTPHandler())
	require.NotNil(t, srv.SSEHandler())
}
