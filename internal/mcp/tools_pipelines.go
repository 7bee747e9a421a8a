package mcp

import (
	"context"
	"io"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

func (h *handlers) listPipelines(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Ref     string `json:"ref"`
		Status  string `json:"status"`
		Page    int    `json:"page"`
		PerPage int    `json:"per_page"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	opt := &gitlab.ListProjectPipelinesOptions{
		ListOptions: listOpts(p.Page, p.PerPage),
		Ref:         optString(p.Ref),
	}
	if p.Status != "" {
		opt.Status = gitlab.Ptr(gitlab.BuildStateValue(p.Status))
	}

	pipelines, _, err := h.gl.Pipelines.ListProjectPipelines(call.ProjectID, opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return pipelines, nil
}

func (h *handlers) getPipeline(ctx context.Context, call *Call) (any, error) {
	var p struct {
		PipelineID int `json:"pipeline_id"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	pipeline, _, err := h.gl.Pipelines.GetPipeline(call.ProjectID, p.PipelineID, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}

func (h *handlers) listPipelineJobs(ctx context.Context, call *Call) (any, error) {
	var p struct {
		PipelineID int `json:"pipeline_id"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	return collectPages(func(page int) ([]*gitlab.Job, *gitlab.Response, error) {
		opt := &gitlab.ListJobsOptions{ListOptions: listOpts(page, 100)}
		return h.gl.Jobs.ListPipelineJobs(call.ProjectID, p.PipelineID, opt, gitlab.WithContext(ctx))
	})
}

func (h *handlers) getPipelineJob(ctx context.Context, call *Call) (any, error) {
	var p struct {
		JobID int `json:"job_id"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	job, _, err := h.gl.Jobs.GetJob(call.ProjectID, p.JobID, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (h *handlers) getPipelineJobOutput(ctx context.Context, call *Call) (any, error) {
	var p struct {
		JobID int `json:"job_id"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	trace, _, err := h.gl.Jobs.GetTraceFile(call.ProjectID, p.JobID, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(trace)
	if err != nil {
		return nil, err
	}
	return map[string]any{"job_id": p.JobID, "output": string(out)}, nil
}

func (h *handlers) createPipeline(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Ref       string            `json:"ref"`
		Variables map[string]string `json:"variables"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}
	if p.Ref == "" {
		p.Ref = "main"
	}

	opt := &gitlab.CreatePipelineOptions{
		Ref: gitlab.Ptr(p.Ref),
	}
	if len(p.Variables) > 0 {
		vars := make([]*gitlab.PipelineVariableOptions, 0, len(p.Variables))
		for k, v := range p.Variables {
			vars = append(vars, &gitlab.PipelineVariableOptions{
				Key:   gitlab.Ptr(k),
				Value: gitlab.Ptr(v),
			})
		}
		opt.Variables = &vars
	}

	pipeline, _, err := h.gl.Pipelines.CreatePipeline(call.ProjectID, opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}

func (h *handlers) retryPipeline(ctx context.Context, call *Call) (any, error) {
	var p struct {
		PipelineID int `json:"pipeline_id"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	pipeline, _, err := h.gl.Pipelines.RetryPipelineBuild(call.ProjectID, p.PipelineID, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}

func (h *handlers) cancelPipeline(ctx context.Context, call *Call) (any, error) {
	var p struct {
		PipelineID int `json:"pipeline_id"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	pipeline, _, err := h.gl.Pipelines.CancelPipelineBuild(call.ProjectID, p.PipelineID, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}
