package mcp

import "fmt"

// ErrorKind classifies tool call failures. Kinds are part of the wire
// contract: clients branch on them, so values are stable strings.
type ErrorKind string

const (
	// KindUnknownTool means the tool name is not in the catalog.
	KindUnknownTool ErrorKind = "unknown_tool"
	// KindToolDisabled means the tool exists but is gated off.
	KindToolDisabled ErrorKind = "tool_disabled"
	// KindInvalidArguments means the arguments failed schema validation or
	// no effective project id could be resolved.
	KindInvalidArguments ErrorKind = "invalid_arguments"
	// KindProjectNotAllowed means the effective project id is outside the
	// configured allow-list.
	KindProjectNotAllowed ErrorKind = "project_not_allowed"
	// KindUpstream means the GitLab API rejected or failed the request.
	KindUpstream ErrorKind = "upstream_error"
)

// ToolError is the single error type surfaced to MCP clients.
type ToolError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	// Field names the offending argument for invalid_arguments errors.
	Field string `json:"field,omitempty"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func errUnknownTool(name string) *ToolError {
	return &ToolError{Kind: KindUnknownTool, Message: fmt.Sprintf("unknown tool %q", name)}
}

func errToolDisabled(name, reason string) *ToolError {
	return &ToolError{Kind: KindToolDisabled, Message: fmt.Sprintf("tool %q is unavailable: %s", name, reason)}
}

func errInvalidArguments(format string, args ...any) *ToolError {
	return &ToolError{Kind: KindInvalidArguments, Message: fmt.Sprintf(format, args...)}
}

func errProjectNotAllowed(projectID string) *ToolError {
	return &ToolError{Kind: KindProjectNotAllowed, Message: fmt.Sprintf("project %q is not in the allowed project list", projectID)}
}

func errUpstream(err error) *ToolError {
	return &ToolError{Kind: KindUpstream, Message: err.Error()}
}
