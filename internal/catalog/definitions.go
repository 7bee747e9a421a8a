package catalog

import "encoding/json"

// Schema builder helpers. The catalog is the single source of truth for
// argument schemas: the MCP layer advertises them and the dispatcher
// validates against them, so they are stored as raw JSON.

type props map[string]any

func objectSchema(p props, required ...string) json.RawMessage {
	s := map[string]any{
		"type":       "object",
		"properties": p,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	b, err := json.Marshal(s)
	if err != nil {
		panic("catalog: " + err.Error())
	}
	return b
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func strEnum(desc string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": desc, "enum": values}
}

func integer(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func boolean(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

func intArray(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": desc,
		"items":       map[string]any{"type": "integer"},
	}
}

// projectID accepts either a numeric id or a URL-encoded path, matching the
// GitLab API. Optional everywhere: when omitted the configured default
// project is used.
func projectID() map[string]any {
	return map[string]any{
		"type":        []string{"string", "integer"},
		"description": "Project ID or URL-encoded path. Defaults to the configured project.",
	}
}

func paging(p props) props {
	p["page"] = integer("Page number, starting at 1.")
	p["per_page"] = integer("Results per page, max 100.")
	return p
}

// definitions returns the full tool table in catalog order. Order is part
// of the contract: tools/list reflects it.
func definitions() []ToolDefinition {
	return []ToolDefinition{
		// Projects.
		{
			Name:        "search_repositories",
			Description: "Search GitLab projects visible to the authenticated user.",
			Group:       GroupProject,
			Effect:      EffectRead,
			Flag:        FlagNone,
			InputSchema: objectSchema(paging(props{
				"query":      str("Search term matched against project name and path."),
				"membership": boolean("Limit to projects the user is a member of."),
				"starred":    boolean("Limit to starred projects."),
				"visibility": strEnum("Limit by visibility.", "private", "internal", "public"),
				"simple":     boolean("Return a reduced set of fields per project."),
			}), "query"),
		},
		{
			Name:        "create_repository",
			Description: "Create a new GitLab project.",
			Group:       GroupProject,
			Effect:      EffectWrite,
			Flag:        FlagNone,
			InputSchema: objectSchema(props{
				"name":         str("Project name."),
				"namespace_id": integer("Namespace (group or user) to create the project in."),
				"visibility":   strEnum("Project visibility, default private.", "private", "internal", "public"),
				"description":  str("Project description."),
			}, "name"),
		},

		// Repository files and refs.
		{
			Name:          "get_file_contents",
			Description:   "Read a file or list a directory at a given ref.",
			Group:         GroupRepository,
			Effect:        EffectRead,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"path":       str("File or directory path within the repository."),
				"ref":        str("Branch, tag, or commit SHA."),
				"with_tree":  boolean("Treat path as a directory and list its entries."),
			}, "path", "ref"),
		},
		{
			Name:          "create_or_update_file",
			Description:   "Create or update a single file with a commit.",
			Group:         GroupRepository,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":     projectID(),
				"branch":         str("Branch to commit to."),
				"path":           str("File path within the repository."),
				"content":        str("Full file content."),
				"commit_message": str("Commit message."),
			}, "branch", "path", "content", "commit_message"),
		},
		{
			Name:          "push_files",
			Description:   "Commit multiple file actions in a single commit.",
			Group:         GroupRepository,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"branch":     str("Branch to commit to."),
				"commit_message": str("Commit message."),
				"files": map[string]any{
					"type":        "array",
					"description": "File actions applied atomically in one commit.",
					"items": map[string]any{
						"type": "object",
						"properties": props{
							"action":        strEnum("Action to perform.", "create", "update", "delete", "move"),
							"file_path":     str("Target file path."),
							"content":       str("File content for create and update."),
							"previous_path": str("Source path for move."),
						},
						"required": []string{"action", "file_path"},
					},
				},
			}, "branch", "files", "commit_message"),
		},
		{
			Name:          "fork_repository",
			Description:   "Fork the project, optionally into another namespace.",
			Group:         GroupRepository,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"namespace":  str("Namespace path to fork into. Defaults to the user namespace."),
			}),
		},
		{
			Name:          "create_branch",
			Description:   "Create a branch from a ref.",
			Group:         GroupRepository,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"branch":     str("Name of the new branch."),
				"ref":        str("Branch, tag, or commit SHA to branch from."),
			}, "branch", "ref"),
		},
		{
			Name:          "get_branch_diffs",
			Description:   "Compare two refs and return the diff.",
			Group:         GroupRepository,
			Effect:        EffectRead,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"from_ref":   str("Base ref, default main."),
				"to_ref":     str("Head ref, default HEAD."),
			}),
		},

		// Issues.
		{
			Name:          "create_issue",
			Description:   "Create an issue.",
			Group:         GroupIssue,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":   projectID(),
				"title":        str("Issue title."),
				"description":  str("Issue description, GitLab-flavored markdown."),
				"labels":       str("Comma-separated label names."),
				"assignee_ids": intArray("User ids to assign."),
				"milestone_id": integer("Milestone id to associate."),
				"confidential": boolean("Create as a confidential issue."),
				"due_date":     str("Due date, YYYY-MM-DD."),
			}, "title"),
		},
		{
			Name:          "list_issues",
			Description:   "List issues in the project.",
			Group:         GroupIssue,
			Effect:        EffectRead,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(paging(props{
				"project_id": projectID(),
				"state":      strEnum("Filter by state.", "opened", "closed", "all"),
				"scope":      strEnum("Filter by scope.", "created_by_me", "assigned_to_me", "all"),
				"labels":     str("Comma-separated label names, all must match."),
				"search":     str("Search in title and description."),
			})),
		},

		// Merge requests.
		{
			Name:          "create_merge_request",
			Description:   "Create a merge request.",
			Group:         GroupMergeRequest,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":           projectID(),
				"source_branch":        str("Source branch."),
				"target_branch":        str("Target branch."),
				"title":                str("Merge request title."),
				"description":          str("Merge request description."),
				"draft":                boolean("Create as a draft."),
				"remove_source_branch": boolean("Delete the source branch after merging."),
				"assignee_ids":         intArray("User ids to assign."),
				"reviewer_ids":         intArray("User ids to request review from."),
			}, "source_branch", "target_branch", "title"),
		},
		{
			Name:          "get_merge_request",
			Description:   "Fetch a merge request by IID or source branch.",
			Group:         GroupMergeRequest,
			Effect:        EffectRead,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":        projectID(),
				"merge_request_iid": integer("Merge request IID."),
				"branch_name":       str("Source branch. Used when the IID is omitted; resolves to the first open merge request from that branch."),
			}),
		},
		{
			Name:          "update_merge_request",
			Description:   "Update a merge request's title, description, labels, or state.",
			Group:         GroupMergeRequest,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":        projectID(),
				"merge_request_iid": integer("Merge request IID."),
				"branch_name":       str("Source branch, used when the IID is omitted."),
				"title":             str("New title."),
				"description":       str("New description."),
				"labels":            str("Comma-separated label names, replaces existing labels."),
				"state_event":       strEnum("State transition.", "close", "reopen"),
			}),
		},
		{
			Name:          "merge_merge_request",
			Description:   "Merge a merge request.",
			Group:         GroupMergeRequest,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":                   projectID(),
				"merge_request_iid":            integer("Merge request IID."),
				"branch_name":                  str("Source branch, used when the IID is omitted."),
				"merge_when_pipeline_succeeds": boolean("Merge automatically once the pipeline succeeds."),
				"squash":                       boolean("Squash commits on merge."),
				"sha":                          str("Expected HEAD SHA of the source branch. The merge fails if it does not match."),
			}),
		},
		{
			Name:          "get_merge_request_diffs",
			Description:   "List the diffs of a merge request.",
			Group:         GroupMergeRequest,
			Effect:        EffectRead,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(paging(props{
				"project_id":        projectID(),
				"merge_request_iid": integer("Merge request IID."),
				"branch_name":       str("Source branch, used when the IID is omitted."),
			})),
		},

		// Notes and discussions.
		{
			Name:          "create_note",
			Description:   "Add a comment to an issue or merge request.",
			Group:         GroupNote,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"on":         strEnum("Target type.", "issue", "merge_request"),
				"iid":        integer("IID of the issue or merge request."),
				"body":       str("Comment body."),
			}, "on", "iid", "body"),
		},
		{
			Name:          "mr_discussions",
			Description:   "List discussion threads on a merge request.",
			Group:         GroupNote,
			Effect:        EffectRead,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":        projectID(),
				"merge_request_iid": integer("Merge request IID."),
			}, "merge_request_iid"),
		},
		{
			Name:          "create_merge_request_note",
			Description:   "Add a note to a merge request.",
			Group:         GroupNote,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":        projectID(),
				"merge_request_iid": integer("Merge request IID."),
				"body":              str("Note body."),
			}, "merge_request_iid", "body"),
		},
		{
			Name:          "update_merge_request_note",
			Description:   "Edit an existing merge request note.",
			Group:         GroupNote,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":        projectID(),
				"merge_request_iid": integer("Merge request IID."),
				"note_id":           integer("Note id."),
				"body":              str("Replacement note body."),
			}, "merge_request_iid", "note_id", "body"),
		},

		// Draft notes.
		{
			Name:          "list_draft_notes",
			Description:   "List draft notes on a merge request.",
			Group:         GroupDraftNote,
			Effect:        EffectRead,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":        projectID(),
				"merge_request_iid": integer("Merge request IID."),
			}, "merge_request_iid"),
		},
		{
			Name:          "get_draft_note",
			Description:   "Fetch a single draft note.",
			Group:         GroupDraftNote,
			Effect:        EffectRead,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":        projectID(),
				"merge_request_iid": integer("Merge request IID."),
				"draft_id":          integer("Draft note id."),
			}, "merge_request_iid", "draft_id"),
		},
		{
			Name:          "create_draft_note",
			Description:   "Create a draft note on a merge request.",
			Group:         GroupDraftNote,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":        projectID(),
				"merge_request_iid": integer("Merge request IID."),
				"note":              str("Draft note body."),
			}, "merge_request_iid", "note"),
		},
		{
			Name:          "update_draft_note",
			Description:   "Replace the body of a draft note.",
			Group:         GroupDraftNote,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":        projectID(),
				"merge_request_iid": integer("Merge request IID."),
				"draft_id":          integer("Draft note id."),
				"note":              str("Replacement draft note body."),
			}, "merge_request_iid", "draft_id", "note"),
		},
		{
			Name:          "delete_draft_note",
			Description:   "Delete a draft note.",
			Group:         GroupDraftNote,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":        projectID(),
				"merge_request_iid": integer("Merge request IID."),
				"draft_id":          integer("Draft note id."),
			}, "merge_request_iid", "draft_id"),
		},
		{
			Name:          "publish_draft_note",
			Description:   "Publish a single draft note.",
			Group:         GroupDraftNote,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":        projectID(),
				"merge_request_iid": integer("Merge request IID."),
				"draft_id":          integer("Draft note id."),
			}, "merge_request_iid", "draft_id"),
		},
		{
			Name:          "bulk_publish_draft_notes",
			Description:   "Publish all draft notes on a merge request.",
			Group:         GroupDraftNote,
			Effect:        EffectWrite,
			Flag:          FlagNone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":        projectID(),
				"merge_request_iid": integer("Merge request IID."),
			}, "merge_request_iid"),
		},

		// Pipelines.
		{
			Name:          "list_pipelines",
			Description:   "List pipelines, optionally filtered by ref or status.",
			Group:         GroupPipeline,
			Effect:        EffectRead,
			Flag:          FlagPipeline,
			ProjectScoped: true,
			InputSchema: objectSchema(paging(props{
				"project_id": projectID(),
				"ref":        str("Filter by ref."),
				"status": strEnum("Filter by status.", "created", "waiting_for_resource", "preparing",
					"pending", "running", "success", "failed", "canceled", "skipped", "manual", "scheduled"),
			})),
		},
		{
			Name:          "get_pipeline",
			Description:   "Fetch a pipeline by id.",
			Group:         GroupPipeline,
			Effect:        EffectRead,
			Flag:          FlagPipeline,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":  projectID(),
				"pipeline_id": integer("Pipeline id."),
			}, "pipeline_id"),
		},
		{
			Name:          "list_pipeline_jobs",
			Description:   "List the jobs of a pipeline.",
			Group:         GroupPipeline,
			Effect:        EffectRead,
			Flag:          FlagPipeline,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":  projectID(),
				"pipeline_id": integer("Pipeline id."),
			}, "pipeline_id"),
		},
		{
			Name:          "get_pipeline_job",
			Description:   "Fetch a pipeline job by id.",
			Group:         GroupPipeline,
			Effect:        EffectRead,
			Flag:          FlagPipeline,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"job_id":     integer("Job id."),
			}, "job_id"),
		},
		{
			Name:          "get_pipeline_job_output",
			Description:   "Fetch the trace log of a pipeline job.",
			Group:         GroupPipeline,
			Effect:        EffectRead,
			Flag:          FlagPipeline,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"job_id":     integer("Job id."),
			}, "job_id"),
		},
		{
			Name:          "create_pipeline",
			Description:   "Trigger a new pipeline on a ref.",
			Group:         GroupPipeline,
			Effect:        EffectWrite,
			Flag:          FlagPipeline,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"ref":        str("Ref to run the pipeline on, default main."),
				"variables": map[string]any{
					"type":                 "object",
					"description":          "Pipeline variables as key/value pairs.",
					"additionalProperties": map[string]any{"type": "string"},
				},
			}),
		},
		{
			Name:          "retry_pipeline",
			Description:   "Retry the failed jobs of a pipeline.",
			Group:         GroupPipeline,
			Effect:        EffectWrite,
			Flag:          FlagPipeline,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":  projectID(),
				"pipeline_id": integer("Pipeline id."),
			}, "pipeline_id"),
		},
		{
			Name:          "cancel_pipeline",
			Description:   "Cancel a running pipeline.",
			Group:         GroupPipeline,
			Effect:        EffectWrite,
			Flag:          FlagPipeline,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":  projectID(),
				"pipeline_id": integer("Pipeline id."),
			}, "pipeline_id"),
		},

		// Wiki.
		{
			Name:          "list_wiki_pages",
			Description:   "List the project's wiki pages.",
			Group:         GroupWiki,
			Effect:        EffectRead,
			Flag:          FlagWiki,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":   projectID(),
				"with_content": boolean("Include page content in the listing."),
			}),
		},
		{
			Name:          "get_wiki_page",
			Description:   "Fetch a wiki page by slug.",
			Group:         GroupWiki,
			Effect:        EffectRead,
			Flag:          FlagWiki,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"slug":       str("URL slug of the page."),
			}, "slug"),
		},
		{
			Name:          "create_wiki_page",
			Description:   "Create a wiki page.",
			Group:         GroupWiki,
			Effect:        EffectWrite,
			Flag:          FlagWiki,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"title":      str("Page title."),
				"content":    str("Page content."),
				"format":     strEnum("Content format, default markdown.", "markdown", "rdoc", "asciidoc", "org"),
			}, "title", "content"),
		},
		{
			Name:          "update_wiki_page",
			Description:   "Update a wiki page's title or content.",
			Group:         GroupWiki,
			Effect:        EffectWrite,
			Flag:          FlagWiki,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"slug":       str("URL slug of the page."),
				"title":      str("New page title."),
				"content":    str("New page content."),
				"format":     strEnum("Content format.", "markdown", "rdoc", "asciidoc", "org"),
			}, "slug"),
		},
		{
			Name:          "delete_wiki_page",
			Description:   "Delete a wiki page.",
			Group:         GroupWiki,
			Effect:        EffectWrite,
			Flag:          FlagWiki,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"slug":       str("URL slug of the page."),
			}, "slug"),
		},

		// Milestones.
		{
			Name:          "list_milestones",
			Description:   "List the project's milestones.",
			Group:         GroupMilestone,
			Effect:        EffectRead,
			Flag:          FlagMilestone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id": projectID(),
				"state":      strEnum("Filter by state.", "active", "closed"),
			}),
		},
		{
			Name:          "get_milestone",
			Description:   "Fetch a milestone by id.",
			Group:         GroupMilestone,
			Effect:        EffectRead,
			Flag:          FlagMilestone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":   projectID(),
				"milestone_id": integer("Milestone id."),
			}, "milestone_id"),
		},
		{
			Name:          "create_milestone",
			Description:   "Create a milestone.",
			Group:         GroupMilestone,
			Effect:        EffectWrite,
			Flag:          FlagMilestone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":  projectID(),
				"title":       str("Milestone title."),
				"description": str("Milestone description."),
				"start_date":  str("Start date, YYYY-MM-DD."),
				"due_date":    str("Due date, YYYY-MM-DD."),
			}, "title"),
		},
		{
			Name:          "edit_milestone",
			Description:   "Update a milestone's fields or state.",
			Group:         GroupMilestone,
			Effect:        EffectWrite,
			Flag:          FlagMilestone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":   projectID(),
				"milestone_id": integer("Milestone id."),
				"title":        str("New title."),
				"description":  str("New description."),
				"start_date":   str("New start date, YYYY-MM-DD."),
				"due_date":     str("New due date, YYYY-MM-DD."),
				"state_event":  strEnum("State transition.", "close", "activate"),
			}, "milestone_id"),
		},
		{
			Name:          "delete_milestone",
			Description:   "Delete a milestone.",
			Group:         GroupMilestone,
			Effect:        EffectWrite,
			Flag:          FlagMilestone,
			ProjectScoped: true,
			InputSchema: objectSchema(props{
				"project_id":   projectID(),
				"milestone_id": integer("Milestone id."),
			}, "milestone_id"),
		},
	}
}
