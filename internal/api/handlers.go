package api

import (
	"bytes"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"grid_balance_simulator/internal/analysis"
	"grid_balance_simulator/internal/export"
	"grid_balance_simulator/internal/simulator"
)

// maxSteps bounds a single step request.
const maxSteps = 100000

// SimHandler serves the simulation over HTTP.
type SimHandler struct {
	engine *simulator.Engine
}

func NewSimHandler(engine *simulator.Engine) *SimHandler {
	return &SimHandler{engine: engine}
}

// Health handles GET /health
func (h *SimHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// State handles GET /api/v1/state
func (h *SimHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"run":      h.engine.State(),
		"sim":      h.engine.SimState(),
		"snapshot": h.engine.Snapshot(),
	})
}

// History handles GET /api/v1/history
func (h *SimHandler) History(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.History())
}

// Params handles GET /api/v1/params
func (h *SimHandler) Params(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Params())
}

// Report handles GET /api/v1/report
func (h *SimHandler) Report(c *gin.Context) {
	c.JSON(http.StatusOK, h.report())
}

// Export handles GET /api/v1/export/:series
func (h *SimHandler) Export(c *gin.Context) {
	name := c.Param("series")
	if !slices.Contains(export.Names, name) {
		c.JSON(http.StatusNotFound, errorBody("UNKNOWN_SERIES", "unknown series "+strconv.Quote(name)))
		return
	}

	records := h.engine.Archive()
	rep := analysis.Build(h.engine.State().RunID, records, h.engine.Params())

	var buf bytes.Buffer
	if err := export.Write(&buf, name, rep, records); err != nil {
		log.Error().Err(err).Str("series", name).Msg("export failed")
		c.JSON(http.StatusInternalServerError, errorBody("EXPORT_FAILED", err.Error()))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+name+".csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ToggleLock handles POST /api/v1/bess/toggle-lock
func (h *SimHandler) ToggleLock(c *gin.Context) {
	h.engine.ToggleLock()
	c.JSON(http.StatusAccepted, gin.H{"queued": simulator.CommandToggleLock.String()})
}

// TriggerFlex handles POST /api/v1/flex/trigger
func (h *SimHandler) TriggerFlex(c *gin.Context) {
	h.engine.TriggerFlex()
	c.JSON(http.StatusAccepted, gin.H{"queued": simulator.CommandTriggerFlex.String()})
}

// Start handles POST /api/v1/sim/start
func (h *SimHandler) Start(c *gin.Context) {
	h.engine.Start()
	c.JSON(http.StatusOK, h.engine.State())
}

// Pause handles POST /api/v1/sim/pause
func (h *SimHandler) Pause(c *gin.Context) {
	h.engine.Pause()
	c.JSON(http.StatusOK, h.engine.State())
}

// StepRequest is the body of POST /api/v1/sim/step.
type StepRequest struct {
	Count int `json:"count"`
}

// Step handles POST /api/v1/sim/step
func (h *SimHandler) Step(c *gin.Context) {
	req := StepRequest{Count: 1}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", err.Error()))
			return
		}
	}
	if err := validateSteps(req.Count); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", err.Error()))
		return
	}
	if h.engine.State().Running {
		c.JSON(http.StatusConflict, errorBody("RUNNING", "pause the simulation before stepping"))
		return
	}
	h.engine.Run(req.Count)
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

// Reset handles POST /api/v1/sim/reset
func (h *SimHandler) Reset(c *gin.Context) {
	h.engine.Pause()
	h.engine.Reset()
	c.JSON(http.StatusOK, h.engine.State())
}

func (h *SimHandler) report() analysis.Report {
	return analysis.Build(h.engine.State().RunID, h.engine.Archive(), h.engine.Params())
}

func validateSteps(n int) error {
	if n < 1 || n > maxSteps {
		return errors.New("count must be between 1 and " + strconv.Itoa(maxSteps))
	}
	return nil
}
