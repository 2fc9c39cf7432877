package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grid_balance_simulator/internal/simulator"
)

// Options selects the optional surfaces of the router.
type Options struct {
	// WebSocket is mounted at /ws when set.
	WebSocket http.Handler
	// Gatherer is served at /metrics when set.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the HTTP surface of the simulator.
func NewRouter(engine *simulator.Engine, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(Logger())
	router.Use(ErrorHandler())

	h := NewSimHandler(engine)

	router.GET("/health", h.Health)

	if opts.WebSocket != nil {
		router.GET("/ws", gin.WrapH(opts.WebSocket))
	}
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	{
		api.GET("/state", h.State)
		api.GET("/params", h.Params)
		api.GET("/history", h.History)
		api.GET("/report", h.Report)
		api.GET("/export/:series", h.Export)

		api.POST("/bess/toggle-lock", h.ToggleLock)
		api.POST("/flex/trigger", h.TriggerFlex)

		api.POST("/sim/start", h.Start)
		api.POST("/sim/pause", h.Pause)
		api.POST("/sim/step", h.Step)
		api.POST("/sim/reset", h.Reset)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "Not found"))
	})

	return router
}
