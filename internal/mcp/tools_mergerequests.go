package mcp

import (
	"context"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

func (h *handlers) createMergeRequest(ctx context.Context, call *Call) (any, error) {
	var p struct {
		SourceBranch       string `json:"source_branch"`
		TargetBranch       string `json:"target_branch"`
		Title              string `json:"title"`
		Description        string `json:"description"`
		Draft              bool   `json:"draft"`
		RemoveSourceBranch bool   `json:"remove_source_branch"`
		AssigneeIDs        []int  `json:"assignee_ids"`
		ReviewerIDs        []int  `json:"reviewer_ids"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	title := p.Title
	if p.Draft && !strings.HasPrefix(strings.ToLower(title), "draft:") {
		title = "Draft: " + title
	}
	opt := &gitlab.CreateMergeRequestOptions{
		SourceBranch: gitlab.Ptr(p.SourceBranch),
		TargetBranch: gitlab.Ptr(p.TargetBranch),
		Title:        gitlab.Ptr(title),
		Description:  optString(p.Description),
	}
	if p.RemoveSourceBranch {
		opt.RemoveSourceBranch = gitlab.Ptr(true)
	}
	if len(p.AssigneeIDs) > 0 {
		opt.AssigneeIDs = &p.AssigneeIDs
	}
	if len(p.ReviewerIDs) > 0 {
		opt.ReviewerIDs = &p.ReviewerIDs
	}

	mr, _, err := h.gl.MergeRequests.CreateMergeRequest(call.ProjectID, opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return mr, nil
}

// mrRef is the shared way tools address a merge request: an explicit IID
// or a source branch resolved to the first open merge request.
type mrRef struct {
	IID        int    `json:"merge_request_iid"`
	BranchName string `json:"branch_name"`
}

func (h *handlers) getMergeRequest(ctx context.Context, call *Call) (any, error) {
	var p mrRef
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}
	iid, err := h.resolveMergeRequestIID(ctx, call.ProjectID, p.IID, p.BranchName)
	if err != nil {
		return nil, err
	}

	mr, _, err := h.gl.MergeRequests.GetMergeRequest(call.ProjectID, iid, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return mr, nil
}

func (h *handlers) updateMergeRequest(ctx context.Context, call *Call) (any, error) {
	var p struct {
		mrRef
		Title       string `json:"title"`
		Description string `json:"description"`
		Labels      string `json:"labels"`
		StateEvent  string `json:"state_event"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}
	iid, err := h.resolveMergeRequestIID(ctx, call.ProjectID, p.IID, p.BranchName)
	if err != nil {
		return nil, err
	}

	opt := &gitlab.UpdateMergeRequestOptions{
		Title:       optString(p.Title),
		Description: optString(p.Description),
		Labels:      labelList(p.Labels),
		StateEvent:  optString(p.StateEvent),
	}
	mr, _, err := h.gl.MergeRequests.UpdateMergeRequest(call.ProjectID, iid, opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return mr, nil
}

func (h *handlers) mergeMergeRequest(ctx context.Context, call *Call) (any, error) {
	var p struct {
		mrRef
		MergeWhenPipelineSucceeds bool   `json:"merge_when_pipeline_succeeds"`
		Squash                    bool   `json:"squash"`
		SHA                       string `json:"sha"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}
	iid, err := h.resolveMergeRequestIID(ctx, call.ProjectID, p.IID, p.BranchName)
	if err != nil {
		return nil, err
	}

	opt := &gitlab.AcceptMergeRequestOptions{
		SHA: optString(p.SHA),
	}
	if p.MergeWhenPipelineSucceeds {
		opt.MergeWhenPipelineSucceeds = gitlab.Ptr(true)
	}
	if p.Squash {
		opt.Squash = gitlab.Ptr(true)
	}

	mr, _, err := h.gl.MergeRequests.AcceptMergeRequest(call.ProjectID, iid, opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return mr, nil
}

func (h *handlers) getMergeRequestDiffs(ctx context.Context, call *Call) (any, error) {
	var p struct {
		mrRef
		Page    int `json:"page"`
		PerPage int `json:"per_page"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}
	iid, err := h.resolveMergeRequestIID(ctx, call.ProjectID, p.IID, p.BranchName)
	if err != nil {
		return nil, err
	}

	diffs, _, err := h.gl.MergeRequests.ListMergeRequestDiffs(call.ProjectID, iid, &gitlab.ListMergeRequestDiffsOptions{
		ListOptions: listOpts(p.Page, p.PerPage),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return diffs, nil
}
