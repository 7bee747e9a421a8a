package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// handlers implements every catalog tool against the GitLab API. Handlers
// trust their input: the dispatcher has already validated the arguments
// and resolved the effective project id.
type handlers struct {
	gl  *gitlab.Client
	log *zap.Logger
}

func newHandlers(gl *gitlab.Client, log *zap.Logger) *handlers {
	return &handlers{gl: gl, log: log}
}

// byName maps catalog tool names to their handlers. Must cover the whole
// catalog; the dispatcher rejects a partial map at construction.
func (h *handlers) byName() map[string]Handler {
	return map[string]Handler{
		"search_repositories": h.searchRepositories,
		"create_repository":   h.createRepository,

		"get_file_contents":     h.getFileContents,
		"create_or_update_file": h.createOrUpdateFile,
		"push_files":            h.pushFiles,
		"fork_repository":       h.forkRepository,
		"create_branch":         h.createBranch,
		"get_branch_diffs":      h.getBranchDiffs,

		"create_issue": h.createIssue,
		"list_issues":  h.listIssues,

		"create_merge_request":    h.createMergeRequest,
		"get_merge_request":       h.getMergeRequest,
		"update_merge_request":    h.updateMergeRequest,
		"merge_merge_request":     h.mergeMergeRequest,
		"get_merge_request_diffs": h.getMergeRequestDiffs,

		"create_note":               h.createNote,
		"mr_discussions":            h.mrDiscussions,
		"create_merge_request_note": h.createMergeRequestNote,
		"update_merge_request_note": h.updateMergeRequestNote,

		"list_draft_notes":         h.listDraftNotes,
		"get_draft_note":           h.getDraftNote,
		"create_draft_note":        h.createDraftNote,
		"update_draft_note":        h.updateDraftNote,
		"delete_draft_note":        h.deleteDraftNote,
		"publish_draft_note":       h.publishDraftNote,
		"bulk_publish_draft_notes": h.bulkPublishDraftNotes,

		"list_pipelines":          h.listPipelines,
		"get_pipeline":            h.getPipeline,
		"list_pipeline_jobs":      h.listPipelineJobs,
		"get_pipeline_job":        h.getPipelineJob,
		"get_pipeline_job_output": h.getPipelineJobOutput,
		"create_pipeline":         h.createPipeline,
		"retry_pipeline":          h.retryPipeline,
		"cancel_pipeline":         h.cancelPipeline,

		"list_wiki_pages":  h.listWikiPages,
		"get_wiki_page":    h.getWikiPage,
		"create_wiki_page": h.createWikiPage,
		"update_wiki_page": h.updateWikiPage,
		"delete_wiki_page": h.deleteWikiPage,

		"list_milestones":  h.listMilestones,
		"get_milestone":    h.getMilestone,
		"create_milestone": h.createMilestone,
		"edit_milestone":   h.editMilestone,
		"delete_milestone": h.deleteMilestone,
	}
}

func decodeArgs(call *Call, v any) error {
	if err := json.Unmarshal(call.Args, v); err != nil {
		return errInvalidArguments("decode arguments: %v", err)
	}
	return nil
}

// optString returns nil for the empty string so the field is omitted from
// the API request instead of clearing the remote value.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return gitlab.Ptr(s)
}

// labelList splits a comma-separated label string, nil when empty.
func labelList(s string) *gitlab.LabelOptions {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	labels := make(gitlab.LabelOptions, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return &labels
}

// isoDate parses a YYYY-MM-DD argument, nil when empty.
func isoDate(s string) (*gitlab.ISOTime, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, errInvalidArguments("invalid date %q, expected YYYY-MM-DD", s)
	}
	iso := gitlab.ISOTime(t)
	return &iso, nil
}

func listOpts(page, perPage int) gitlab.ListOptions {
	return gitlab.ListOptions{Page: page, PerPage: perPage}
}

// collectPages drains a paginated list endpoint. Used by the tools that
// take no paging arguments and so must return everything.
func collectPages[T any](fetch func(page int) ([]T, *gitlab.Response, error)) ([]T, error) {
	var all []T
	page := 1
	for {
		items, resp, err := fetch(page)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if resp == nil || resp.NextPage == 0 {
			return all, nil
		}
		page = resp.NextPage
	}
}

// resolveMergeRequestIID returns the explicit IID when given, otherwise
// the first open merge request whose source branch matches.
func (h *handlers) resolveMergeRequestIID(ctx context.Context, pid string, iid int, branch string) (int, error) {
	if iid > 0 {
		return iid, nil
	}
	if branch == "" {
		return 0, errInvalidArguments("either merge_request_iid or branch_name is required")
	}
	mrs, _, err := h.gl.MergeRequests.ListProjectMergeRequests(pid, &gitlab.ListProjectMergeRequestsOptions{
		ListOptions:  gitlab.ListOptions{PerPage: 1},
		SourceBranch: gitlab.Ptr(branch),
		State:        gitlab.Ptr("opened"),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	if len(mrs) == 0 {
		return 0, errInvalidArguments("no open merge request found for branch %q", branch)
	}
	return mrs[0].IID, nil
}
