package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

func newTestHandlers(t *testing.T, mux *http.ServeMux) *handlers {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	gl, err := gitlab.NewClient("token", gitlab.WithBaseURL(srv.URL))
	require.NoError(t, err)
	return newHandlers(gl, zaptest.NewLogger(t))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func call(args string, projectID string) *Call {
	return &Call{Args: json.RawMessage(args), ProjectID: projectID}
}

func TestSearchRepositoriesSimpleDefault(t *testing.T) {
	for name, tc := range map[string]struct {
		args string
		want string
	}{
		"defaults_on":  {`{"query":"x"}`, "true"},
		"explicit_off": {`{"query":"x","simple":false}`, "false"},
		"explicit_on":  {`{"query":"x","simple":true}`, "true"},
	} {
		t.Run(name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v4/projects", func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, tc.want, r.URL.Query().Get("simple"))
				writeJSON(t, w, []map[string]any{{"id": 1, "name": "x"}})
			})
			h := newTestHandlers(t, mux)

			_, err := h.searchRepositories(context.Background(), call(tc.args, ""))
			require.NoError(t, err)
		})
	}
}

func TestMRDiscussionsFollowsPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/1/merge_requests/5/discussions", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			w.Header().Set("X-Next-Page", "2")
			writeJSON(t, w, []map[string]any{{"id": "d1"}})
		case "2":
			writeJSON(t, w, []map[string]any{{"id": "d2"}})
		default:
			t.Fatalf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	h := newTestHandlers(t, mux)

	out, err := h.mrDiscussions(context.Background(), call(`{"merge_request_iid":5}`, "1"))
	require.NoError(t, err)

	discussions := out.([]*gitlab.Discussion)
	require.Len(t, discussions, 2)
	require.Equal(t, "d1", discussions[0].ID)
	require.Equal(t, "d2", discussions[1].ID)
}

func TestListIssuesPassesFilters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/1/issues", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "opened", q.Get("state"))
		require.Equal(t, "bug,crash", q.Get("labels"))
		require.Equal(t, "2", q.Get("page"))
		writeJSON(t, w, []map[string]any{{"id": 3, "iid": 3, "title": "boom"}})
	})
	h := newTestHandlers(t, mux)

	out, err := h.listIssues(context.Background(),
		call(`{"state":"opened","labels":"bug, crash","page":2}`, "1"))
	require.NoError(t, err)

	issues, ok := out.([]*gitlab.Issue)
	require.True(t, ok)
	require.Len(t, issues, 1)
	require.Equal(t, 3, issues[0].IID)
}

func TestCreateIssueBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/1/issues", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "crash on start", body["title"])
		require.Equal(t, true, body["confidential"])
		require.Equal(t, "2026-09-30", body["due_date"])
		writeJSON(t, w, map[string]any{"id": 10, "iid": 10, "title": body["title"]})
	})
	h := newTestHandlers(t, mux)

	out, err := h.createIssue(context.Background(),
		call(`{"title":"crash on start","confidential":true,"due_date":"2026-09-30"}`, "1"))
	require.NoError(t, err)
	require.Equal(t, 10, out.(*gitlab.Issue).IID)
}

func TestCreateIssueRejectsBadDate(t *testing.T) {
	h := newTestHandlers(t, http.NewServeMux())
	_, err := h.createIssue(context.Background(), call(`{"title":"x","due_date":"next week"}`, "1"))
	requireKind(t, err, KindInvalidArguments)
}

func TestGetMergeRequestByBranch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/1/merge_requests", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "feat-x", q.Get("source_branch"))
		require.Equal(t, "opened", q.Get("state"))
		writeJSON(t, w, []map[string]any{{"iid": 5}})
	})
	mux.HandleFunc("/api/v4/projects/1/merge_requests/5", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"iid": 5, "title": "feature"})
	})
	h := newTestHandlers(t, mux)

	out, err := h.getMergeRequest(context.Background(), call(`{"branch_name":"feat-x"}`, "1"))
	require.NoError(t, err)
	require.Equal(t, "feature", out.(*gitlab.MergeRequest).Title)
}

func TestGetMergeRequestNoOpenMR(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/1/merge_requests", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{})
	})
	h := newTestHandlers(t, mux)

	_, err := h.getMergeRequest(context.Background(), call(`{"branch_name":"gone"}`, "1"))
	requireKind(t, err, KindInvalidArguments)
}

func TestGetMergeRequestNeedsIIDOrBranch(t *testing.T) {
	h := newTestHandlers(t, http.NewServeMux())
	_, err := h.getMergeRequest(context.Background(), call(`{}`, "1"))
	requireKind(t, err, KindInvalidArguments)
}

func TestCreateMergeRequestDraftPrefix(t *testing.T) {
	for name, tc := range map[string]struct {
		title string
		want  string
	}{
		"adds_prefix":             {"new thing", "Draft: new thing"},
		"keeps_existing_prefix":   {"Draft: new thing", "Draft: new thing"},
		"keeps_lowercase_prefix":  {"draft: new thing", "draft: new thing"},
		"keeps_prefix_without_sp": {"Draft:new thing", "Draft:new thing"},
	} {
		t.Run(name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v4/projects/1/merge_requests", func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				require.Equal(t, tc.want, body["title"])
				writeJSON(t, w, map[string]any{"iid": 8, "title": body["title"]})
			})
			h := newTestHandlers(t, mux)

			args, err := json.Marshal(map[string]any{
				"source_branch": "a",
				"target_branch": "main",
				"title":         tc.title,
				"draft":         true,
			})
			require.NoError(t, err)

			_, err = h.createMergeRequest(context.Background(), call(string(args), "1"))
			require.NoError(t, err)
		})
	}
}

func TestGetFileContentsDecodesBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("hello world\n"))
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/1/repository/files/README.md", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "main", r.URL.Query().Get("ref"))
		writeJSON(t, w, map[string]any{
			"file_path": "README.md",
			"file_name": "README.md",
			"encoding":  "base64",
			"content":   encoded,
			"ref":       "main",
		})
	})
	h := newTestHandlers(t, mux)

	out, err := h.getFileContents(context.Background(), call(`{"path":"README.md","ref":"main"}`, "1"))
	require.NoError(t, err)
	result := out.(map[string]any)
	require.Equal(t, "hello world\n", result["content"])
}

func TestGetFileContentsWithTree(t *testing.T) {
	t.Run("returns_content_and_tree", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("package docs\n"))
		var fileRequested bool
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v4/projects/1/repository/tree", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "docs", r.URL.Query().Get("path"))
			writeJSON(t, w, []map[string]any{{"type": "blob", "path": "docs/doc.go", "name": "doc.go"}})
		})
		mux.HandleFunc("/api/v4/projects/1/repository/files/docs", func(w http.ResponseWriter, r *http.Request) {
			fileRequested = true
			writeJSON(t, w, map[string]any{
				"file_path": "docs",
				"encoding":  "base64",
				"content":   encoded,
				"ref":       "main",
			})
		})
		h := newTestHandlers(t, mux)

		out, err := h.getFileContents(context.Background(),
			call(`{"path":"docs","ref":"main","with_tree":true}`, "1"))
		require.NoError(t, err)
		require.True(t, fileRequested)

		result := out.(map[string]any)
		require.Equal(t, "package docs\n", result["content"])
		tree := result["tree"].([]*gitlab.TreeNode)
		require.Len(t, tree, 1)
		require.Equal(t, "docs/doc.go", tree[0].Path)
	})

	t.Run("directory_yields_tree_without_content", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v4/projects/1/repository/tree", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, []map[string]any{{"type": "blob", "path": "docs/doc.go", "name": "doc.go"}})
		})
		mux.HandleFunc("/api/v4/projects/1/repository/files/docs", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		h := newTestHandlers(t, mux)

		out, err := h.getFileContents(context.Background(),
			call(`{"path":"docs","ref":"main","with_tree":true}`, "1"))
		require.NoError(t, err)

		result := out.(map[string]any)
		require.Nil(t, result["content"])
		require.Len(t, result["tree"].([]*gitlab.TreeNode), 1)
	})

	t.Run("missing_file_without_tree_fails", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v4/projects/1/repository/files/gone.txt", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		h := newTestHandlers(t, mux)

		_, err := h.getFileContents(context.Background(), call(`{"path":"gone.txt","ref":"main"}`, "1"))
		require.Error(t, err)
	})
}

func TestCreateOrUpdateFile(t *testing.T) {
	t.Run("creates_when_missing", func(t *testing.T) {
		var created bool
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v4/projects/1/repository/files/new.txt", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodHead:
				w.WriteHeader(http.StatusNotFound)
			case http.MethodPost:
				created = true
				writeJSON(t, w, map[string]any{"file_path": "new.txt", "branch": "main"})
			default:
				t.Fatalf("unexpected method %s", r.Method)
			}
		})
		h := newTestHandlers(t, mux)

		_, err := h.createOrUpdateFile(context.Background(),
			call(`{"branch":"main","path":"new.txt","content":"x","commit_message":"add"}`, "1"))
		require.NoError(t, err)
		require.True(t, created)
	})

	t.Run("updates_when_present", func(t *testing.T) {
		var updated bool
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v4/projects/1/repository/files/old.txt", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodHead:
				w.Header().Set("X-Gitlab-File-Name", "old.txt")
				w.WriteHeader(http.StatusOK)
			case http.MethodPut:
				updated = true
				writeJSON(t, w, map[string]any{"file_path": "old.txt", "branch": "main"})
			default:
				t.Fatalf("unexpected method %s", r.Method)
			}
		})
		h := newTestHandlers(t, mux)

		_, err := h.createOrUpdateFile(context.Background(),
			call(`{"branch":"main","path":"old.txt","content":"y","commit_message":"edit"}`, "1"))
		require.NoError(t, err)
		require.True(t, updated)
	})
}

func TestCreateNoteTargets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/1/issues/3/notes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"id": 100, "body": "on issue"})
	})
	mux.HandleFunc("/api/v4/projects/1/merge_requests/4/notes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"id": 101, "body": "on mr"})
	})
	h := newTestHandlers(t, mux)

	out, err := h.createNote(context.Background(), call(`{"on":"issue","iid":3,"body":"on issue"}`, "1"))
	require.NoError(t, err)
	require.Equal(t, 100, out.(*gitlab.Note).ID)

	out, err = h.createNote(context.Background(), call(`{"on":"merge_request","iid":4,"body":"on mr"}`, "1"))
	require.NoError(t, err)
	require.Equal(t, 101, out.(*gitlab.Note).ID)
}

func TestPipelineJobOutput(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/1/jobs/55/trace", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("line 1\nline 2\n"))
	})
	h := newTestHandlers(t, mux)

	out, err := h.getPipelineJobOutput(context.Background(), call(`{"job_id":55}`, "1"))
	require.NoError(t, err)
	require.Equal(t, "line 1\nline 2\n", out.(map[string]any)["output"])
}

func TestDeleteWikiPageAck(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/1/wikis/home", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	h := newTestHandlers(t, mux)

	out, err := h.deleteWikiPage(context.Background(), call(`{"slug":"home"}`, "1"))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"deleted": true, "slug": "home"}, out)
}

func TestUpstreamErrorSurfaced(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/1/issues", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"403 Forbidden"}`))
	})
	h := newTestHandlers(t, mux)

	_, err := h.listIssues(context.Background(), call(`{}`, "1"))
	require.Error(t, err)
	mapped := mapHandlerError(err)
	requireKind(t, mapped, KindUpstream)
	require.Contains(t, mapped.Error(), "403")
}
