package glclient

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fyrsmithlabs/gitlabd/internal/config"
)

func TestParseCookieFile(t *testing.T) {
	data := []byte("# Netscape HTTP Cookie File\n" +
		"\n" +
		"gitlab.example.com\tFALSE\t/\tTRUE\t0\t_gitlab_session\tabc123\n" +
		"#HttpOnly_gitlab.example.com\tFALSE\t/\tTRUE\t0\tknown_sign_in\txyz\n" +
		"malformed line\n")

	cookies := parseCookieFile(data)
	require.Len(t, cookies, 2)
	require.Equal(t, "_gitlab_session", cookies[0].Name)
	require.Equal(t, "abc123", cookies[0].Value)
	require.Equal(t, "known_sign_in", cookies[1].Name)
}

func TestNewSendsCookies(t *testing.T) {
	var gotCookie string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("_gitlab_session"); err == nil {
			gotCookie = c.Value
		}
		gotAuth = r.Header.Get("PRIVATE-TOKEN")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 1}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(path,
		[]byte("gitlab.example.com\tFALSE\t/\tTRUE\t0\t_gitlab_session\tsess-value\n"), 0o600))

	cfg := config.GitLabConfig{
		APIURL:         srv.URL,
		AuthCookiePath: path,
	}
	cfg.Token = mustToken(t, "tok")

	client, err := New(cfg, "test", zaptest.NewLogger(t))
	require.NoError(t, err)

	_, _, err = client.Projects.GetProject("1", nil)
	require.NoError(t, err)
	require.Equal(t, "sess-value", gotCookie)
	require.Equal(t, "tok", gotAuth)
}

func TestNewMissingCookieFileIsSkipped(t *testing.T) {
	cfg := config.GitLabConfig{
		APIURL:         "https://gitlab.example.com",
		AuthCookiePath: filepath.Join(t.TempDir(), "absent.txt"),
	}
	cfg.Token = mustToken(t, "tok")

	client, err := New(cfg, "test", zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, client)
}

func mustToken(t *testing.T, v string) config.Secret {
	t.Helper()
	var s config.Secret
	require.NoError(t, s.UnmarshalText([]byte(v)))
	return s
}
