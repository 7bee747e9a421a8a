package mcp

import (
	"context"
	"encoding/base64"
	"errors"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

func (h *handlers) getFileContents(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Path     string `json:"path"`
		Ref      string `json:"ref"`
		WithTree bool   `json:"with_tree"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	var tree []*gitlab.TreeNode
	if p.WithTree {
		var err error
		tree, _, err = h.gl.Repositories.ListTree(call.ProjectID, &gitlab.ListTreeOptions{
			Path: gitlab.Ptr(p.Path),
			Ref:  gitlab.Ptr(p.Ref),
		}, gitlab.WithContext(ctx))
		if err != nil {
			return nil, err
		}
	}

	file, _, err := h.gl.RepositoryFiles.GetFile(call.ProjectID, p.Path, &gitlab.GetFileOptions{
		Ref: gitlab.Ptr(p.Ref),
	}, gitlab.WithContext(ctx))
	if err != nil {
		// The path may be a directory; the tree listing is still the
		// answer then.
		if p.WithTree {
			return map[string]any{
				"path":    p.Path,
				"ref":     p.Ref,
				"content": nil,
				"tree":    tree,
			}, nil
		}
		return nil, err
	}

	content := file.Content
	if file.Encoding == "base64" {
		if decoded, derr := base64.StdEncoding.DecodeString(file.Content); derr == nil {
			content = string(decoded)
		}
	}
	result := map[string]any{
		"file_path":      file.FilePath,
		"file_name":      file.FileName,
		"size":           file.Size,
		"ref":            file.Ref,
		"blob_id":        file.BlobID,
		"commit_id":      file.CommitID,
		"last_commit_id": file.LastCommitID,
		"content":        content,
	}
	if p.WithTree {
		result["tree"] = tree
	}
	return result, nil
}

func (h *handlers) createOrUpdateFile(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Branch        string `json:"branch"`
		Path          string `json:"path"`
		Content       string `json:"content"`
		CommitMessage string `json:"commit_message"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	// Probe for the file on the target branch to pick create vs update.
	_, _, err := h.gl.RepositoryFiles.GetFileMetaData(call.ProjectID, p.Path, &gitlab.GetFileMetaDataOptions{
		Ref: gitlab.Ptr(p.Branch),
	}, gitlab.WithContext(ctx))
	switch {
	case isNotFound(err):
		info, _, cerr := h.gl.RepositoryFiles.CreateFile(call.ProjectID, p.Path, &gitlab.CreateFileOptions{
			Branch:        gitlab.Ptr(p.Branch),
			Content:       gitlab.Ptr(p.Content),
			CommitMessage: gitlab.Ptr(p.CommitMessage),
		}, gitlab.WithContext(ctx))
		if cerr != nil {
			return nil, cerr
		}
		return info, nil
	case err != nil:
		return nil, err
	default:
		info, _, uerr := h.gl.RepositoryFiles.UpdateFile(call.ProjectID, p.Path, &gitlab.UpdateFileOptions{
			Branch:        gitlab.Ptr(p.Branch),
			Content:       gitlab.Ptr(p.Content),
			CommitMessage: gitlab.Ptr(p.CommitMessage),
		}, gitlab.WithContext(ctx))
		if uerr != nil {
			return nil, uerr
		}
		return info, nil
	}
}

func (h *handlers) pushFiles(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Branch        string `json:"branch"`
		CommitMessage string `json:"commit_message"`
		Files         []struct {
			Action       string `json:"action"`
			FilePath     string `json:"file_path"`
			Content      string `json:"content"`
			PreviousPath string `json:"previous_path"`
		} `json:"files"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}
	if len(p.Files) == 0 {
		return nil, errInvalidArguments("files must not be empty")
	}

	actions := make([]*gitlab.CommitActionOptions, 0, len(p.Files))
	for _, f := range p.Files {
		action := &gitlab.CommitActionOptions{
			Action:   gitlab.Ptr(gitlab.FileActionValue(f.Action)),
			FilePath: gitlab.Ptr(f.FilePath),
		}
		if f.Content != "" {
			action.Content = gitlab.Ptr(f.Content)
		}
		if f.PreviousPath != "" {
			action.PreviousPath = gitlab.Ptr(f.PreviousPath)
		}
		actions = append(actions, action)
	}

	commit, _, err := h.gl.Commits.CreateCommit(call.ProjectID, &gitlab.CreateCommitOptions{
		Branch:        gitlab.Ptr(p.Branch),
		CommitMessage: gitlab.Ptr(p.CommitMessage),
		Actions:       actions,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return commit, nil
}

func (h *handlers) forkRepository(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Namespace string `json:"namespace"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	opt := &gitlab.ForkProjectOptions{}
	if p.Namespace != "" {
		opt.NamespacePath = gitlab.Ptr(p.Namespace)
	}
	fork, _, err := h.gl.Projects.ForkProject(call.ProjectID, opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return fork, nil
}

func (h *handlers) createBranch(ctx context.Context, call *Call) (any, error) {
	var p struct {
		Branch string `json:"branch"`
		Ref    string `json:"ref"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}

	branch, _, err := h.gl.Branches.CreateBranch(call.ProjectID, &gitlab.CreateBranchOptions{
		Branch: gitlab.Ptr(p.Branch),
		Ref:    gitlab.Ptr(p.Ref),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return branch, nil
}

func (h *handlers) getBranchDiffs(ctx context.Context, call *Call) (any, error) {
	var p struct {
		FromRef string `json:"from_ref"`
		ToRef   string `json:"to_ref"`
	}
	if err := decodeArgs(call, &p); err != nil {
		return nil, err
	}
	if p.FromRef == "" {
		p.FromRef = "main"
	}
	if p.ToRef == "" {
		p.ToRef = "HEAD"
	}

	compare, _, err := h.gl.Repositories.Compare(call.ProjectID, &gitlab.CompareOptions{
		From: gitlab.Ptr(p.FromRef),
		To:   gitlab.Ptr(p.ToRef),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return compare, nil
}

func isNotFound(err error) bool {
	var glErr *gitlab.ErrorResponse
	return errors.As(err, &glErr) && glErr.Response != nil && glErr.Response.StatusCode == 404
}
