// Package mcp exposes the GitLab tool catalog over the Model Context
// Protocol. Tools are registered with the SDK only when they pass the
// gate, so the advertised list and the callable set always agree.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/fyrsmithlabs/gitlabd/internal/catalog"
	"github.com/fyrsmithlabs/gitlabd/internal/config"
	"github.com/fyrsmithlabs/gitlabd/internal/gate"
)

// Server bundles the MCP server, the dispatcher, and the gated catalog.
type Server struct {
	mcp        *mcp.Server
	dispatcher *Dispatcher
	gate       *gate.Gate
	logger     *zap.Logger
}

// Options configures the server.
type Options struct {
	// Version is reported in the MCP implementation info.
	Version string
	// Logger for structured logging. Defaults to a no-op logger.
	Logger *zap.Logger
	// Metrics is optional; nil disables instrumentation.
	Metrics *Metrics
}

// NewServer builds the MCP server over a GitLab client. Only tools that
// pass the gate are registered.
func NewServer(cfg *config.Config, gl *gitlab.Client, opts Options) (*Server, error) {
	if gl == nil {
		return nil, fmt.Errorf("gitlab client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := catalog.New()
	g := gate.New(reg, cfg)
	h := newHandlers(gl, logger)

	dispatcher, err := NewDispatcher(reg, g, cfg.GitLab, h.byName(), opts.Metrics, logger)
	if err != nil {
		return nil, err
	}

	srv := mcp.NewServer(
		&mcp.Implementation{
			Name:    "gitlabd",
			Version: opts.Version,
		},
		nil,
	)

	s := &Server{
		mcp:        srv,
		dispatcher: dispatcher,
		gate:       g,
		logger:     logger,
	}
	srv.AddReceivingMiddleware(s.gateMiddleware())
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	opts.Metrics.setToolsAvailable(len(g.ListAvailable()))
	return s, nil
}

func (s *Server) registerTools() error {
	available := s.gate.ListAvailable()
	for _, def := range available {
		tool, err := sdkTool(def)
		if err != nil {
			return fmt.Errorf("build tool %q: %w", def.Name, err)
		}
		name := def.Name
		s.mcp.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return s.handleCall(ctx, name, req)
		})
	}
	s.logger.Info("registered tools", zap.Int("count", len(available)))
	return nil
}

// gateMiddleware answers calls to known but gated-off tools with the
// tool_disabled error shape. Those tools are never registered with the
// SDK, so without this the SDK would reject them as unknown before the
// dispatcher could classify them.
func (s *Server) gateMiddleware() mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method == "tools/call" {
				if ctr, ok := req.(*mcp.CallToolRequest); ok {
					name := ctr.Params.Name
					if callable, known := s.gate.IsCallable(name); known && !callable {
						def, _ := s.gate.Definition(name)
						s.logger.Debug("rejected gated-off tool call", zap.String("tool", name))
						return errorResult(errToolDisabled(name, s.gate.Reason(def))), nil
					}
				}
			}
			return next(ctx, method, req)
		}
	}
}

func sdkTool(def catalog.ToolDefinition) (*mcp.Tool, error) {
	var schema jsonschema.Schema
	if err := json.Unmarshal(def.InputSchema, &schema); err != nil {
		return nil, err
	}
	return &mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: &schema,
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint: def.Effect == catalog.EffectRead,
		},
	}, nil
}

func (s *Server) handleCall(ctx context.Context, name string, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := rawArguments(req.Params.Arguments)
	if err != nil {
		return errorResult(errInvalidArguments("decode arguments: %v", err)), nil
	}
	result, err := s.dispatcher.Dispatch(ctx, name, args)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// rawArguments normalizes the SDK's argument payload to raw JSON.
func rawArguments(v any) (json.RawMessage, error) {
	switch a := v.(type) {
	case nil:
		return json.RawMessage("{}"), nil
	case json.RawMessage:
		if len(a) == 0 {
			return json.RawMessage("{}"), nil
		}
		return a, nil
	case []byte:
		if len(a) == 0 {
			return json.RawMessage("{}"), nil
		}
		return json.RawMessage(a), nil
	default:
		return json.Marshal(v)
	}
}

// successResult wraps a handler result: JSON text for plain clients plus
// the same value as structured content.
func successResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(errUpstream(fmt.Errorf("encode result: %w", err))), nil
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(b)}},
		StructuredContent: v,
	}, nil
}

// errorResult serializes a tool error as an error result rather than a
// protocol failure, so clients always get the kind/message shape.
func errorResult(err error) *mcp.CallToolResult {
	te, ok := err.(*ToolError)
	if !ok {
		te = errUpstream(err)
	}
	b, merr := json.Marshal(te)
	if merr != nil {
		b = []byte(fmt.Sprintf(`{"kind":%q,"message":"internal error"}`, KindUpstream))
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}
}

// Run serves MCP on stdio until the context is canceled. Logs must go to
// stderr in this mode; stdout carries the protocol.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// StreamableHTTPHandler returns the streamable-HTTP transport handler.
func (s *Server) StreamableHTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

// SSEHandler returns the legacy SSE transport handler.
func (s *Server) SSEHandler() http.Handler {
	return mcp.NewSSEHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

// AvailableTools returns the gated catalog in catalog order.
func (s *Server) AvailableTools() []catalog.ToolDefinition {
	return s.gate.ListAvailable()
}
