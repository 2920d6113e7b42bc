package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.RecordTick(2 * time.Millisecond)
	c.RecordTick(4 * time.Millisecond)
	c.RecordEmit()
	c.RecordHandlerFailure()
	c.RecordSave(true)
	c.RecordSave(false)
	c.RecordLoad(false)

	snap := c.Snapshot()

	tick := snap["tick"].(map[string]interface{})
	assert.Equal(t, int64(2), tick["count"])
	assert.InDelta(t, 3.0, tick["avg_latency_ms"], 0.001)
	assert.InDelta(t, 4.0, tick["max_latency_ms"], 0.001)

	saves := snap["saves"].(map[string]interface{})
	assert.Equal(t, int64(1), saves["ok"])
	assert.Equal(t, int64(1), saves["failed"])
	assert.Equal(t, int64(1), saves["loads_missing"])
	assert.NotEmpty(t, saves["last_save"])

	events := snap["events"].(map[string]interface{})
	assert.Equal(t, int64(1), events["emitted"])
	assert.Equal(t, int64(1), events["handler_failures"])
}

func TestHandlers(t *testing.T) {
	c := New()
	c.RecordWSConnection(1)
	c.RecordWSMessage(true)

	rec := httptest.NewRecorder()
	Handler(c)(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "websocket")

	rec = httptest.NewRecorder()
	PrometheusHandler(c)(rec, httptest.NewRequest(http.MethodGet, "/metrics/prometheus", nil))
	out := rec.Body.String()
	assert.True(t, strings.Contains(out, "devlearn_ws_connections 1"), out)
	assert.True(t, strings.Contains(out, `devlearn_ws_messages_total{direction="in"} 1`), out)
}
