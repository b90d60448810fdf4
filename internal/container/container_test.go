package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"forecastbonus/internal/config"
	"forecastbonus/internal/testkit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: "8080", GinMode: gin.TestMode},
		Scoring:  config.ScoringConfig{DefaultSeed: "defaultSeed"},
		Payout:   config.PayoutConfig{Concurrency: 2, PageSize: 10, Currency: "EUR"},
		LogLevel: "ERROR",
	}
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNew_StatelessServices(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)

	assert.NotNil(t, c.Scoring)
	assert.NotNil(t, c.Payouts)
	assert.False(t, c.Stored())
	require.NoError(t, c.Connect(context.Background()), "no database configured is not an error")
	require.NoError(t, c.Shutdown(context.Background()))

	summary, err := c.Payouts.Summarize(nil)
	require.NoError(t, err)
	assert.Equal(t, "EUR", summary.Currency)
}

func TestRouter_StoredRoutesFollowRepositories(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)

	get := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/assignments/abc/payout", strings.NewReader(""))
		w := httptest.NewRecorder()
		c.Router().ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusServiceUnavailable, get())

	kit := testkit.NewTestKit()
	c.UseRepositories(kit.AssignmentRepository(), kit.PayoutRepository())
	assert.True(t, c.Stored())
	assert.Equal(t, http.StatusNotFound, get())
}
