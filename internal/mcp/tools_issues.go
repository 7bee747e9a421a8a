package mcp

import (
	"context"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

func (h *handlers) createIssue(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		Labels       string `json:"labels"`
		AssigneeIDs  []int  `json:"assignee_ids"`
		MilestoneID  int    `json:"milestone_id"`
		Confidential bool   `json:"confidential"`
		DueDate      string `json:"due_date"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	due, err := isoDate(p.DueDate)
	if err != nil {
		return nil, err
	}
	opt := &gitlab.CreateIssueOptions{
		Title:       gitlab.Ptr(p.Title),
		Description: optString(p.Description),
		Labels:      labelList(p.Labels),
		DueDate:     due,
	}
	if len(p.AssigneeIDs) > 0 {
		opt.AssigneeIDs = &p.AssigneeIDs
	}
	if p.MilestoneID > 0 {
		opt.MilestoneID = gitlab.Ptr(p.MilestoneID)
	}
	if p.Confidential {
		opt.Confidential = gitlab.Ptr(true)
	}

	issue, _, err := h.gl.Issues.CreateIssue(call.ProjectID, opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return issue, nil
}

func (h *handlers) listIssues(ctx context.Context, call *Call) (any, error) {
	var p struct {
		State   string `json:"state"`
		Scope   string `json:"scope"`
		Labels  string `json:"labels"`
		Search  string `json:"search"`
		Page    int    `json:"page"`
		PerPage int    `json:"per_page"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	opt := &gitlab.ListProjectIssuesOptions{
		ListOptions: listOpts(p.Page, p.PerPage),
		State:       optString(p.State),
		Scope:       optString(p.Scope),
		Labels:      labelList(p.Labels),
		Search:      optString(p.Search),
	}
	issues, _, err := h.gl.Issues.ListProjectIssues(call.ProjectID, opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return issues, nil
}
