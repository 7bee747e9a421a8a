// Package glclient constructs the authenticated GitLab API client.
package glclient

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/fyrsmithlabs/gitlabd/internal/config"
)

// New builds a GitLab client for the configured instance. When an auth
// cookie file is configured and exists, its cookies are attached to every
// request; a missing file is logged and skipped so the same configuration
// works with and without the cookie present.
func New(cfg config.GitLabConfig, version string, log *zap.Logger) (*gitlab.Client, error) {
	httpClient := &http.Client{}

	if cfg.AuthCookiePath != "" {
		cookies, err := loadCookieFile(cfg.AuthCookiePath)
		switch {
		case os.IsNotExist(err):
			log.Warn("auth cookie file not found, continuing without it",
				zap.String("path", cfg.AuthCookiePath))
		case err != nil:
			return nil, fmt.Errorf("load auth cookie file: %w", err)
		case len(cookies) > 0:
			httpClient.Transport = &cookieTransport{
				base:    http.DefaultTransport,
				cookies: cookies,
			}
			log.Debug("attached auth cookies",
				zap.String("path", cfg.AuthCookiePath),
				zap.Int("count", len(cookies)))
		}
	}

	client, err := gitlab.NewClient(cfg.Token.Value(),
		gitlab.WithBaseURL(cfg.APIURL),
		gitlab.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("create gitlab client: %w", err)
	}
	client.UserAgent = "gitlabd/" + version
	return client, nil
}

// cookieTransport adds a fixed cookie set to every outgoing request.
type cookieTransport struct {
	base    http.RoundTripper
	cookies []*http.Cookie
}

func (t *cookieTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for _, c := range t.cookies {
		clone.AddCookie(c)
	}
	return t.base.RoundTrip(clone)
}
