package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"argus/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturingServer struct {
	*httptest.Server

	mu     sync.Mutex
	bodies [][]byte
}

func newCapturingServer(t *testing.T, status int) *capturingServer {
	t.Helper()
	cs := &capturingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		cs.mu.Lock()
		cs.bodies = append(cs.bodies, body)
		cs.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *capturingServer) received() [][]byte {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.bodies
}

func sampleAlert(severity core.Severity) *core.TriggeredAlert {
	return &core.TriggeredAlert{
		ID:       "alert-1",
		RuleName: "Known C2 Infrastructure",
		IOC:      "45.33.32.156",
		Severity: severity,
		Details:  "Risk score 85 exceeds threshold",
		Status:   core.AlertStatusNew,
	}
}

func TestNotifier_NotifyAlert_Webhook(t *testing.T) {
	srv := newCapturingServer(t, http.StatusOK)

	n := NewNotifier([]ChannelConfig{
		{ID: "ops", Type: ChannelWebhook, URL: srv.URL},
	}, zap.NewNop().Sugar())

	n.NotifyAlert(sampleAlert(core.SeverityHigh), []string{"ops"})

	bodies := srv.received()
	require.Len(t, bodies, 1)

	var delivered core.TriggeredAlert
	require.NoError(t, json.Unmarshal(bodies[0], &delivered))
	assert.Equal(t, "alert-1", delivered.ID)
	assert.Equal(t, "45.33.32.156", delivered.IOC)
}

func TestNotifier_NotifyAlert_SlackMessageFormat(t *testing.T) {
	srv := newCapturingServer(t, http.StatusOK)

	n := NewNotifier([]ChannelConfig{
		{ID: "soc-channel", Type: ChannelSlack, URL: srv.URL},
	}, zap.NewNop().Sugar())

	n.NotifyAlert(sampleAlert(core.SeverityCritical), []string{"soc-channel"})

	bodies := srv.received()
	require.Len(t, bodies, 1)

	var msg map[string]string
	require.NoError(t, json.Unmarshal(bodies[0], &msg))
	assert.Contains(t, msg["text"], "Known C2 Infrastructure")
	assert.Contains(t, msg["text"], "45.33.32.156")
}

func TestNotifier_NotifyAlert_SeverityFloor(t *testing.T) {
	srv := newCapturingServer(t, http.StatusOK)

	n := NewNotifier([]ChannelConfig{
		{ID: "ops", Type: ChannelWebhook, URL: srv.URL, MinSeverity: "HIGH"},
	}, zap.NewNop().Sugar())

	n.NotifyAlert(sampleAlert(core.SeverityLow), []string{"ops"})
	assert.Empty(t, srv.received())

	n.NotifyAlert(sampleAlert(core.SeverityHigh), []string{"ops"})
	assert.Len(t, srv.received(), 1)
}

func TestNotifier_NotifyAlert_SkipsUnknownChannel(t *testing.T) {
	srv := newCapturingServer(t, http.StatusOK)

	n := NewNotifier([]ChannelConfig{
		{ID: "ops", Type: ChannelWebhook, URL: srv.URL},
	}, zap.NewNop().Sugar())

	n.NotifyAlert(sampleAlert(core.SeverityHigh), []string{"missing", "ops"})

	// The unknown channel is skipped, the configured one still fires.
	assert.Len(t, srv.received(), 1)
}

func TestNotifier_NotifyAlert_DeliveryFailureDoesNotPanic(t *testing.T) {
	srv := newCapturingServer(t, http.StatusInternalServerError)

	n := NewNotifier([]ChannelConfig{
		{ID: "ops", Type: ChannelWebhook, URL: srv.URL},
	}, zap.NewNop().Sugar())

	assert.NotPanics(t, func() {
		n.NotifyAlert(sampleAlert(core.SeverityHigh), []string{"ops"})
	})
}
