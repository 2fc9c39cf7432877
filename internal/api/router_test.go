package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid_balance_simulator/internal/analysis"
	"grid_balance_simulator/internal/config"
	"grid_balance_simulator/internal/metrics"
	"grid_balance_simulator/internal/profile"
	"grid_balance_simulator/internal/simulator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T, opts Options) (*gin.Engine, *simulator.Engine) {
	t.Helper()
	p := config.Default()
	e, err := simulator.New(p, profile.New(p, profile.NewSource(11)), nil)
	require.NoError(t, err)
	t.Cleanup(e.Pause)
	return NewRouter(e, opts), e
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := testRouter(t, Options{})
	w := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestState(t *testing.T) {
	r, e := testRouter(t, Options{})
	e.Run(4)

	w := do(r, http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Run      simulator.State    `json:"run"`
		Sim      simulator.SimState `json:"sim"`
		Snapshot simulator.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Run.Ticks)
	assert.Equal(t, 2.0, body.Sim.TimeClock)
	assert.Equal(t, 3, body.Snapshot.Tick)
}

func TestParams(t *testing.T) {
	r, _ := testRouter(t, Options{})
	w := do(r, http.MethodGet, "/api/v1/params", "")
	require.Equal(t, http.StatusOK, w.Code)

	var p config.Params
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, config.Default(), p)
}

func TestHistory(t *testing.T) {
	r, e := testRouter(t, Options{})
	e.Run(5)

	w := do(r, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	assert.Len(t, recs, 5)
}

func TestCommands(t *testing.T) {
	r, e := testRouter(t, Options{})

	w := do(r, http.MethodPost, "/api/v1/bess/toggle-lock", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"queued":"toggle_lock"}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/v1/flex/trigger", "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	// queued, not applied
	assert.False(t, e.SimState().ChargingLocked)

	w = do(r, http.MethodPost, "/api/v1/sim/step", "")
	require.Equal(t, http.StatusOK, w.Code)

	var snap simulator.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.True(t, snap.ChargingLocked)
	assert.InDelta(t, 1.33, snap.DemandModification, 1e-12)
}

func TestStep(t *testing.T) {
	r, e := testRouter(t, Options{})

	w := do(r, http.MethodPost, "/api/v1/sim/step", `{"count":10}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, e.State().Ticks)

	w = do(r, http.MethodPost, "/api/v1/sim/step", `{"count":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/sim/step", `{"count":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 10, e.State().Ticks)
}

func TestStep_WhileRunning(t *testing.T) {
	r, e := testRouter(t, Options{})
	e.SetFPS(1)

	w := do(r, http.MethodPost, "/api/v1/sim/start", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/v1/sim/step", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/api/v1/sim/pause", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st simulator.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.False(t, st.Running)
}

func TestReset(t *testing.T) {
	r, e := testRouter(t, Options{})
	e.Run(20)

	w := do(r, http.MethodPost, "/api/v1/sim/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, e.Archive())
}

func TestReport(t *testing.T) {
	r, e := testRouter(t, Options{})
	e.SetAutopilot(&simulator.Autopilot{
		FlexHour: 6,
		Flex:     simulator.Schedule{PeriodDays: 4, ActiveDays: 1},
		Lock:     simulator.Schedule{PeriodDays: 8, ActiveDays: 4},
	})
	e.Run(48 * 16)

	w := do(r, http.MethodGet, "/api/v1/report", "")
	require.Equal(t, http.StatusOK, w.Code)

	var rep analysis.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, e.State().RunID, rep.RunID)
	assert.Equal(t, 48*16, rep.Ticks)
	require.Len(t, rep.Cohorts, 4)
	assert.Empty(t, rep.Skipped)
	assert.Empty(t, rep.Notice)

	ni, ok := rep.Cohort(analysis.NoIntervention)
	require.True(t, ok)
	assert.Equal(t, analysis.CostOK, ni.Cost.Status)
}

func TestReport_Empty(t *testing.T) {
	r, _ := testRouter(t, Options{})

	w := do(r, http.MethodGet, "/api/v1/report", "")
	require.Equal(t, http.StatusOK, w.Code)

	var rep analysis.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Zero(t, rep.Ticks)
	assert.Equal(t, analysis.InsufficientDataMessage, rep.Notice)
	assert.Len(t, rep.Skipped, 4)
}

func TestExport(t *testing.T) {
	r, e := testRouter(t, Options{})
	e.Run(3)

	w := do(r, http.MethodGet, "/api/v1/export/archive", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 4)

	w = do(r, http.MethodGet, "/api/v1/export/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	p := config.Default()
	e, err := simulator.New(p, profile.New(p, profile.NewSource(2)), m)
	require.NoError(t, err)
	r := NewRouter(e, Options{Gatherer: reg})

	e.Run(3)

	w := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gbset_ticks_total 3")
}

func TestWebSocketMounted(t *testing.T) {
	called := false
	ws := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})
	r, _ := testRouter(t, Options{WebSocket: ws})

	w := do(r, http.MethodGet, "/ws", "")
	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestNotFound(t *testing.T) {
	r, _ := testRouter(t, Options{})
	w := do(r, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":{"code":"INTERNAL_ERROR","message":"boom"}}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r, _ := testRouter(t, Options{})
	h := CORS(r, []string{"http://dash.local"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/state", nil)
	req.Header.Set("Origin", "http://dash.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "http://dash.local", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.local")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
