package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/fyrsmithlabs/gitlabd/internal/catalog"
	"github.com/fyrsmithlabs/gitlabd/internal/config"
	"github.com/fyrsmithlabs/gitlabd/internal/gate"
)

// Call carries one validated tool invocation to its handler.
type Call struct {
	// Args is the raw argument object, already schema-validated.
	Args json.RawMessage
	// ProjectID is the effective project id for project-scoped tools:
	// the explicit argument when present, otherwise the configured
	// default. Empty for tools that are not project-scoped.
	ProjectID string
}

// Handler executes one tool. The returned value is serialized as the tool
// result. Returned errors that are not *ToolError are wrapped as upstream
// errors.
type Handler func(ctx context.Context, call *Call) (any, error)

// Dispatcher runs every tool call through the same pipeline: catalog
// lookup, gate check, schema validation, project resolution, handler.
// The gate re-runs per call so a gated-off tool is unreachable even if a
// client bypasses tools/list.
type Dispatcher struct {
	gate     *gate.Gate
	cfg      config.GitLabConfig
	handlers map[string]Handler
	schemas  map[string]*jsonschema.Schema
	metrics  *Metrics
	logger   *zap.Logger
}

// NewDispatcher compiles the argument schemas and wires the handlers.
// Every catalog entry must have a handler.
func NewDispatcher(reg *catalog.Registry, g *gate.Gate, cfg config.GitLabConfig, handlers map[string]Handler, metrics *Metrics, logger *zap.Logger) (*Dispatcher, error) {
	schemas := make(map[string]*jsonschema.Schema, reg.Len())
	for _, def := range reg.List() {
		if _, ok := handlers[def.Name]; !ok {
			return nil, fmt.Errorf("tool %q has no handler", def.Name)
		}
		sch, err := compileSchema(def.Name, def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %q: %w", def.Name, err)
		}
		schemas[def.Name] = sch
	}
	return &Dispatcher{
		gate:     g,
		cfg:      cfg,
		handlers: handlers,
		schemas:  schemas,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

func compileSchema(name string, raw json.RawMessage) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	url := name + ".json"
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// Dispatch runs one tool call end to end. All failures come back as
// *ToolError so the transport layer can serialize a uniform error shape.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args json.RawMessage) (result any, err error) {
	start := time.Now()
	defer func() { d.metrics.observeCall(name, start, err) }()

	def, gerr := d.gateCheck(name)
	if gerr != nil {
		return nil, gerr
	}

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := d.validateArgs(name, args); err != nil {
		return nil, err
	}

	call := &Call{Args: args}
	if def.ProjectScoped {
		pid, perr := d.resolveProject(args)
		if perr != nil {
			return nil, perr
		}
		call.ProjectID = pid
	}

	d.logger.Debug("dispatching tool call",
		zap.String("tool", name),
		zap.String("project", call.ProjectID))

	result, err = d.handlers[name](ctx, call)
	if err != nil {
		err = mapHandlerError(err)
		d.logger.Warn("tool call failed",
			zap.String("tool", name),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (d *Dispatcher) gateCheck(name string) (catalog.ToolDefinition, *ToolError) {
	callable, known := d.gate.IsCallable(name)
	if !known {
		return catalog.ToolDefinition{}, errUnknownTool(name)
	}
	def, _ := d.gate.Definition(name)
	if !callable {
		return catalog.ToolDefinition{}, errToolDisabled(name, d.gate.Reason(def))
	}
	return def, nil
}

func (d *Dispatcher) validateArgs(name string, args json.RawMessage) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(args))
	if err != nil {
		return errInvalidArguments("arguments are not valid JSON: %v", err)
	}
	if err := d.schemas[name].Validate(inst); err != nil {
		te := errInvalidArguments("%v", err)
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			te.Field = offendingField(verr)
		}
		return te
	}
	return nil
}

// offendingField digs the deepest instance location out of a validation
// error, e.g. "files/0/action".
func offendingField(verr *jsonschema.ValidationError) string {
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	return strings.Join(verr.InstanceLocation, "/")
}

// resolveProject picks the effective project id: the explicit argument
// wins, then the configured default. The allow-list only restricts what
// was picked, it never supplies a project on its own.
func (d *Dispatcher) resolveProject(args json.RawMessage) (string, *ToolError) {
	pid, err := projectIDFromArgs(args)
	if err != nil {
		return "", errInvalidArguments("project_id must be a string or integer")
	}
	if pid == "" {
		pid = d.cfg.DefaultProject
	}
	if pid == "" {
		return "", errInvalidArguments("project_id is required and no default project is configured")
	}
	if !d.cfg.ProjectAllowed(pid) {
		return "", errProjectNotAllowed(pid)
	}
	return pid, nil
}

func projectIDFromArgs(args json.RawMessage) (string, error) {
	var probe struct {
		ProjectID json.RawMessage `json:"project_id"`
	}
	if err := json.Unmarshal(args, &probe); err != nil {
		return "", err
	}
	raw := bytes.TrimSpace(probe.ProjectID)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("unsupported project_id type")
}

// mapHandlerError normalizes handler failures. GitLab API errors carry
// their HTTP status and message through as upstream errors.
func mapHandlerError(err error) error {
	if te, ok := err.(*ToolError); ok {
		return te
	}
	var glErr *gitlab.ErrorResponse
	if errors.As(err, &glErr) {
		msg := fmt.Sprintf("gitlab api: %s", glErr.Message)
		if glErr.Response != nil {
			msg = fmt.Sprintf("gitlab api: %s (status %d)", glErr.Message, glErr.Response.StatusCode)
		}
		return &ToolError{
			Kind:    KindUpstream,
			Message: msg,
		}
	}
	return errUpstream(err)
}
