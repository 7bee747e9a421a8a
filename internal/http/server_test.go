package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fyrsmithlabs/gitlabd/internal/config"
)

func newTestSrv(t *testing.T, mcpHandler http.Handler) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	srv, err := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, Transport{
		Path:    "/mcp",
		Handler: mcpHandler,
	}, reg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestSrv(t, http.NotFoundHandler())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "gitlabd_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	srv, err := NewServer(config.ServerConfig{}, Transport{Path: "/mcp", Handler: http.NotFoundHandler()}, reg, zaptest.NewLogger(t))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "gitlabd_test_total 1")
}

func TestTransportMounted(t *testing.T) {
	var hits int
	srv := newTestSrv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, hits)
}

func TestNilTransportRejected(t *testing.T) {
	_, err := NewServer(config.ServerConfig{}, Transport{Path: "/mcp"}, prometheus.NewRegistry(), nil)
	require.Error(t, err)
}

func TestRequestIDHeaderSet(t *testing.T) {
	srv := newTestSrv(t, http.NotFoundHandler())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
