package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCommand(t *testing.T) {
	before := testutil.ToFloat64(CommandsTotal.WithLabelValues("delete_account", "ok"))

	ObserveCommand("delete_account", "ok", 10*time.Millisecond)
	ObserveCommand("delete_account", "ok", 20*time.Millisecond)

	after := testutil.ToFloat64(CommandsTotal.WithLabelValues("delete_account", "ok"))
	assert.Equal(t, before+2, after)
}

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	AccountsTotal.Set(3)
	ObserveCommand("get_account_summary", "ok", time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "jasmify_accounts_total 3"))
	assert.Contains(t, body, `jasmify_commands_total{command="get_account_summary",result="ok"}`)
	assert.Contains(t, body, "jasmify_command_duration_seconds_bucket")
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, timer.Duration(), 5*time.Millisecond)
}
