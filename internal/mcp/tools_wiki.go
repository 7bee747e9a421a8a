package mcp

import (
	"context"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

func (h *handlers) listWikiPages(ctx context.Context, call *Call) (any, error) {
	var p struct {
		WithContent bool `json:"with_content"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	opt := &gitlab.ListWikisOptions{}
	if p.WithContent {
		opt.WithContent = gitlab.Ptr(true)
	}
	pages, _, err := h.gl.Wikis.ListWikis(call.ProjectID, opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return pages, nil
}

func (h *handlers) getWikiPage(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Slug string `json:"slug"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	page, _, err := h.gl.Wikis.GetWikiPage(call.ProjectID, p.Slug, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (h *handlers) createWikiPage(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Format  string `json:"format"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}
	if p.Format == "" {
		p.Format = "markdown"
	}

	page, _, err := h.gl.Wikis.CreateWikiPage(call.ProjectID, &gitlab.CreateWikiPageOptions{
		Title:   gitlab.Ptr(p.Title),
		Content: gitlab.Ptr(p.Content),
		Format:  gitlab.Ptr(gitlab.WikiFormatValue(p.Format)),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (h *handlers) updateWikiPage(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Slug    string `json:"slug"`
		Title   string `json:"title"`
		Content string `json:"content"`
		Format  string `json:"format"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	opt := &gitlab.EditWikiPageOptions{
		Title:   optString(p.Title),
		Content: optString(p.Content),
	}
	if p.Format != "" {
		opt.Format = gitlab.Ptr(gitlab.WikiFormatValue(p.Format))
	}
	page, _, err := h.gl.Wikis.EditWikiPage(call.ProjectID, p.Slug, opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (h *handlers) deleteWikiPage(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Slug string `json:"slug"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	if _, err := h.gl.Wikis.DeleteWikiPage(call.ProjectID, p.Slug, gitlab.WithContext(ctx)); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true, "slug": p.Slug}, nil
}
