package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vivekxkt/trading-app/internal/engines/simulation"
)

type SimulationHandler struct {
	engine *simulation.MarketEngine
}

func NewSimulationHandler(engine *simulation.MarketEngine) *SimulationHandler {
	return &SimulationHandler{
		engine: engine,
	}
}

type SetSpeedRequest struct {
	Speed int `json:"speed" binding:"required"`
}

// POST /api/v1/simulation/start
func (sh *SimulationHandler) StartSimulation(c *gin.Context) {
	if err := sh.engine.Start(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Simulation started",
		"status":  sh.engine.Status(),
	})
}

// POST /api/v1/simulation/pause
func (sh *SimulationHandler) PauseSimulation(c *gin.Context) {
	if err := sh.engine.Pause(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Simulation paused"})
}

// POST /api/v1/simulation/resume
func (sh *SimulationHandler) ResumeSimulation(c *gin.Context) {
	if err := sh.engine.Resume(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Simulation resumed"})
}

// POST /api/v1/simulation/stop
func (sh *SimulationHandler) StopSimulation(c *gin.Context) {
	if err := sh.engine.Stop(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Simulation stopped"})
}

// POST /api/v1/simulation/speed
func (sh *SimulationHandler) SetSpeed(c *gin.Context) {
	var req SetSpeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sh.engine.SetSpeed(req.Speed); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Speed updated",
		"speed":   req.Speed,
	})
}

// GET /api/v1/simulation/status
func (sh *SimulationHandler) GetStatus(c *gin.Context) {
	status := sh.engine.Status()
	c.JSON(http.StatusOK, status)
}

// RegisterSimulationRoutes registers all simulation routes
func RegisterSimulationRoutes(router *gin.RouterGroup, handler *SimulationHandler) {
	simulation := router.Group("/simulation")
	{
		simulation.POST("/start", handler.StartSimulation)
		simulation.POST("/pause", handler.PauseSimulation)
		simulation.POST("/resume", handler.ResumeSimulation)
		simulation.POST("/stop", handler.StopSimulation)
		simulation.POST("/speed", handler.SetSpeed)
		simulation.GET("/status", handler.GetStatus)
	}
}
