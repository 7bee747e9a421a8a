package mcp

import (
	"context"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

func (h *handlers) createNote(ctx context.Context, call *Call) (any, error) {
	var p struct {
		On   string `json:"on"`
		IID  int    `json:"iid"`
		Body string `json:"body"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	switch p.On {
	case "issue":
		note, _, err := h.gl.Notes.CreateIssueNote(call.ProjectID, p.IID, &gitlab.CreateIssueNoteOptions{
			Body: gitlab.Ptr(p.Body),
		}, gitlab.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		return note, nil
	case "merge_request":
		note, _, err := h.gl.Notes.CreateMergeRequestNote(call.ProjectID, p.IID, &gitlab.CreateMergeRequestNoteOptions{
			Body: gitlab.Ptr(p.Body),
		}, gitlab.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		return note, nil
	default:
		return nil, errInvalidArguments("on must be issue or merge_request")
	}
}

func (h *handlers) mrDiscussions(ctx context.Context, call *Call) (any, error) {
	var p struct {
		IID int `json:"merge_request_iid"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	return collectPages(func(page int) ([]*gitlab.Discussion, *gitlab.Response, error) {
		opt := &gitlab.ListMergeRequestDiscussionsOptions{Page: page, PerPage: 100}
		return h.gl.Discussions.ListMergeRequestDiscussions(call.ProjectID, p.IID, opt, gitlab.WithContext(ctx))
	})
}

func (h *handlers) createMergeRequestNote(ctx context.Context, call *Call) (any, error) {
	var p struct {
		IID  int    `json:"merge_request_iid"`
		Body string `json:"body"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	note, _, err := h.gl.Notes.CreateMergeRequestNote(call.ProjectID, p.IID, &gitlab.CreateMergeRequestNoteOptions{
		Body: gitlab.Ptr(p.Body),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (h *handlers) updateMergeRequestNote(ctx context.Context, call *Call) (any, error) {
	var p struct {
		IID    int    `json:"merge_request_iid"`
		NoteID int    `json:"note_id"`
		Body   string `json:"body"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	note, _, err := h.gl.Notes.UpdateMergeRequestNote(call.ProjectID, p.IID, p.NoteID, &gitlab.UpdateMergeRequestNoteOptions{
		Body: gitlab.Ptr(p.Body),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Draft notes.

type draftRef struct {
	IID     int `json:"merge_request_iid"`
	DraftID int `json:"draft_id"`
}

func (h *handlers) listDraftNotes(ctx context.Context, call *Call) (any, error) {
	var p struct {
		IID int `json:"merge_request_iid"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	return collectPages(func(page int) ([]*gitlab.DraftNote, *gitlab.Response, error) {
		opt := &gitlab.ListDraftNotesOptions{ListOptions: listOpts(page, 100)}
		return h.gl.DraftNotes.ListDraftNotes(call.ProjectID, p.IID, opt, gitlab.WithContext(ctx))
	})
}

func (h *handlers) getDraftNote(ctx context.Context, call *Call) (any, error) {
	var p draftRef
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	note, _, err := h.gl.DraftNotes.GetDraftNote(call.ProjectID, p.IID, p.DraftID, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (h *handlers) createDraftNote(ctx context.Context, call *Call) (any, error) {
	var p struct {
		IID  int    `json:"merge_request_iid"`
		Note string `json:"note"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	note, _, err := h.gl.DraftNotes.CreateDraftNote(call.ProjectID, p.IID, &gitlab.CreateDraftNoteOptions{
		Note: gitlab.Ptr(p.Note),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (h *handlers) updateDraftNote(ctx context.Context, call *Call) (any, error) {
	var p struct {
		draftRef
		Note string `json:"note"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	note, _, err := h.gl.DraftNotes.UpdateDraftNote(call.ProjectID, p.IID, p.DraftID, &gitlab.UpdateDraftNoteOptions{
		Note: gitlab.Ptr(p.Note),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (h *handlers) deleteDraftNote(ctx context.Context, call *Call) (any, error) {
	var p draftRef
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	if _, err := h.gl.DraftNotes.DeleteDraftNote(call.ProjectID, p.IID, p.DraftID, gitlab.WithContext(ctx)); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true, "draft_id": p.DraftID}, nil
}

func (h *handlers) publishDraftNote(ctx context.Context, call *Call) (any, error) {
	var p draftRef
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	if _, err := h.gl.DraftNotes.PublishDraftNote(call.ProjectID, p.IID, p.DraftID, gitlab.WithContext(ctx)); err != nil {
		return nil, err
	}
	return map[string]any{"published": true, "draft_id": p.DraftID}, nil
}

func (h *handlers) bulkPublishDraftNotes(ctx context.Context, call *Call) (any, error) {
	var p struct {
		IID int `json:"merge_request_iid"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	if _, err := h.gl.DraftNotes.PublishAllDraftNotes(call.ProjectID, p.IID, gitlab.WithContext(ctx)); err != nil {
		return nil, err
	}
	return map[string]any{"published": true, "merge_request_iid": p.IID}, nil
}
