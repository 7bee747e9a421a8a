package mcp

import (
	"context"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

func (h *handlers) searchRepositories(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Query      string `json:"query"`
		Membership bool   `json:"membership"`
		Starred    bool   `json:"starred"`
		Visibility string `json:"visibility"`
		Simple     *bool  `json:"simple"`
		Page       int    `json:"page"`
		PerPage    int    `json:"per_page"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	// Trimmed payloads unless the caller opts out.
	simple := true
	if p.Simple != nil {
		simple = *p.Simple
	}
	opt := &gitlab.ListProjectsOptions{
		ListOptions: listOpts(p.Page, p.PerPage),
		Search:      gitlab.Ptr(p.Query),
		Simple:      gitlab.Ptr(simple),
	}
	if p.Membership {
		opt.Membership = gitlab.Ptr(true)
	}
	if p.Starred {
		opt.Starred = gitlab.Ptr(true)
	}
	if p.Visibility != "" {
		opt.Visibility = gitlab.Ptr(gitlab.VisibilityValue(p.Visibility))
	}

	projects, _, err := h.gl.Projects.ListProjects(opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (h *handlers) createRepository(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Name        string `json:"name"`
		NamespaceID int    `json:"namespace_id"`
		Visibility  string `json:"visibility"`
		Description string `json:"description"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	if p.Visibility == "" {
		p.Visibility = "private"
	}
	opt := &gitlab.CreateProjectOptions{
		Name:        gitlab.Ptr(p.Name),
		Visibility:  gitlab.Ptr(gitlab.VisibilityValue(p.Visibility)),
		Description: optString(p.Description),
	}
	if p.NamespaceID > 0 {
		opt.NamespaceID = gitlab.Ptr(p.NamespaceID)
	}

	project, _, err := h.gl.Projects.CreateProject(opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return project, nil
}
