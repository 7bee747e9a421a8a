package mcp

import (
	"context"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

func (h *handlers) listMilestones(ctx context.Context, call *Call) (any, error) {
	var p struct {
		State string `json:"state"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	return collectPages(func(page int) ([]*gitlab.Milestone, *gitlab.Response, error) {
		opt := &gitlab.ListMilestonesOptions{
			ListOptions: listOpts(page, 100),
			State:       optString(p.State),
		}
		return h.gl.Milestones.ListMilestones(call.ProjectID, opt, gitlab.WithContext(ctx))
	})
}

func (h *handlers) getMilestone(ctx context.Context, call *Call) (any, error) {
	var p struct {
		MilestoneID int `json:"milestone_id"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	milestone, _, err := h.gl.Milestones.GetMilestone(call.ProjectID, p.MilestoneID, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return milestone, nil
}

func (h *handlers) createMilestone(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		StartDate   string `json:"start_date"`
		DueDate     string `json:"due_date"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	start, err := isoDate(p.StartDate)
	if err != nil {
		return nil, err
	}
	due, err := isoDate(p.DueDate)
	if err != nil {
		return nil, err
	}

	milestone, _, err := h.gl.Milestones.CreateMilestone(call.ProjectID, &gitlab.CreateMilestoneOptions{
		Title:       gitlab.Ptr(p.Title),
		Description: optString(p.Description),
		StartDate:   start,
		DueDate:     due,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return milestone, nil
}

func (h *handlers) editMilestone(ctx context.Context, call *Call) (any, error) {
	var p struct {
		MilestoneID int    `json:"milestone_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		StartDate   string `json:"start_date"`
		DueDate     string `json:"due_date"`
		StateEvent  string `json:"state_event"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	start, err := isoDate(p.StartDate)
	if err != nil {
		return nil, err
	}
	due, err := isoDate(p.DueDate)
	if err != nil {
		return nil, err
	}

	milestone, _, err := h.gl.Milestones.UpdateMilestone(call.ProjectID, p.MilestoneID, &gitlab.UpdateMilestoneOptions{
		Title:       optString(p.Title),
		Description: optString(p.Description),
		StartDate:   start,
		DueDate:     due,
		StateEvent:  optString(p.StateEvent),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return milestone, nil
}

func (h *handlers) deleteMilestone(ctx context.Context, call *Call) (any, error) {
	var p struct {
		MilestoneID int `json:"milestone_id"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	if _, err := h.gl.Milestones.DeleteMilestone(call.ProjectID, p.MilestoneID, gitlab.WithContext(ctx)); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true, "milestone_id": p.MilestoneID}, nil
}
