package controlplane

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CloudNativeWorks/datalayer-license/dlmlicense"
	"github.com/CloudNativeWorks/datalayer-license/dlmlicense/optionstore"
	"github.com/CloudNativeWorks/datalayer-license/internal/logger"
	"github.com/CloudNativeWorks/datalayer-license/internal/metrics"
	"github.com/CloudNativeWorks/datalayer-license/internal/upstream"
)

// newTestServer starts the full router around provider. The server is closed
// when the test finishes.
func newTestServer(t *testing.T, provider upstream.Provider) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	h := NewHandler(provider, testProducts, WithMetrics(metrics.NewLicenseMetrics(reg)), WithLogger(logger.Nop()))
	server := httptest.NewServer(NewRouter(h, logger.Nop(), reg))
	t.Cleanup(server.Close)
	return server, reg
}

func TestRouter_Mounts(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &stubProvider{status: upstream.StatusActive})
	body := `{"action":"check","plugin":"datalayer-manager","license_key":"K"}`

	for _, path := range []string{"/", "/license-api", "/license-api/", "/license-api/index.php"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Post(server.URL+path, "application/json", strings.NewReader(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
		})
	}
}

func TestRouter_GetIsMethodNotAllowed(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &stubProvider{})
	resp, err := http.Get(server.URL + "/license-api/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "Method not allowed. Use POST.")
}

func TestRouter_CORS(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &stubProvider{status: upstream.StatusActive})

	t.Run("preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, server.URL+"/license-api/", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://shop.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("simple request", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, server.URL+"/", strings.NewReader(`{"action":"deactivate","plugin":"datalayer-manager","license_key":"K"}`))
		require.NoError(t, err)
		req.Header.Set("Origin", "https://shop.example.com")
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &stubProvider{status: upstream.StatusActive})

	resp, err := http.Get(server.URL + "/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(server.URL+"/", "application/json", strings.NewReader(`{"action":"check","plugin":"datalayer-manager","license_key":"K"}`))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `dlm_license_requests_total{action="check",status="valid"} 1`)
	assert.Contains(t, string(raw), "dlm_upstream_duration_seconds")
}

func TestRouter_PanicIsRecovered(t *testing.T) {
	t.Parallel()

	provider := upstream.ProviderFunc(func(context.Context, string, string) (*upstream.Validation, error) {
		panic("provider exploded")
	})
	server, _ := newTestServer(t, provider)

	resp, err := http.Post(server.URL+"/", "application/json", strings.NewReader(`{"action":"check","plugin":"datalayer-manager","license_key":"K"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "An error occurred while processing your request.")
	assert.NotContains(t, string(raw), "exploded")
}

// TestEndToEnd_ActivateThenCachedIsValid drives the client Manager against
// the control layer and checks that IsValid is answered from the cache.
func TestEndToEnd_ActivateThenCachedIsValid(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{status: upstream.StatusActive}
	server, _ := newTestServer(t, provider)

	now := time.Unix(1_700_000_000, 0)
	store := optionstore.NewMemoryStore()
	m := dlmlicense.NewManager(store,
		dlmlicense.WithEndpointOverride(server.URL+"/license-api/"),
		dlmlicense.WithSiteURL("https://shop.example.com"),
		dlmlicense.WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	res := m.Activate(ctx, "LIVE-KEY")
	require.True(t, res.Success, "activate: %+v", res)
	assert.Equal(t, dlmlicense.StatusValid, res.Status)
	assert.Equal(t, "License activated successfully.", res.Message)
	assert.Equal(t, int32(1), provider.calls.Load())

	assert.True(t, m.IsValid(ctx))
	assert.True(t, m.IsPremiumActive(ctx))
	assert.Equal(t, int32(1), provider.calls.Load(), "IsValid must be served from cache")

	now = now.Add(25 * time.Hour)
	provider.setStatus(upstream.StatusExpired)
	assert.False(t, m.IsValid(ctx))
	assert.Equal(t, int32(2), provider.calls.Load())

	res = m.Deactivate(ctx)
	assert.True(t, res.Success)
	assert.Equal(t, "License deactivated successfully.", res.Message)
	assert.Equal(t, dlmlicense.StatusNone, m.GetStatus(ctx, false))
}
