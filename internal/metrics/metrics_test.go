package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

func getMetricsBody(t *testing.T, m *Metrics) string {
	t.Helper()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_RecordIntent(t *testing.T) {
	m := New()
	m.RecordIntent("send_message", "ok", time.Millisecond)
	m.RecordIntent("send_message", "ok", time.Millisecond)
	m.RecordIntent("send_message", "validation", time.Microsecond)

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `casework_intents_total{intent="send_message",result="ok"} 2`)
	assert.Contains(t, body, `casework_intents_total{intent="send_message",result="validation"} 1`)
	assert.Contains(t, body, "casework_intent_duration_seconds_bucket")
}

func TestMetrics_Publish(t *testing.T) {
	m := New()
	m.Publish(workspace.Event{Type: workspace.EventWorkspaceCreated})
	m.Publish(workspace.Event{Type: workspace.EventMessageSent})
	m.Publish(workspace.Event{Type: workspace.EventMessageSent})

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `casework_events_total{type="message_sent"} 2`)
	assert.Contains(t, body, "casework_workspaces 1")
}

func TestMetrics_Drops(t *testing.T) {
	m := New()
	m.RecordDrop("journal", 1)
	m.RecordExpired(3)
	m.SetSocketClients(4)

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `casework_sink_drops_total{sink="journal"} 1`)
	assert.Contains(t, body, "casework_presence_expired_total 3")
	assert.Contains(t, body, "casework_socket_clients 4")
}
