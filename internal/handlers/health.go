package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vivekxkt/trading-app/internal/database"
	"github.com/vivekxkt/trading-app/internal/engines/simulation"
)

type HealthHandler struct {
	engine *simulation.MarketEngine
}

func NewHealthHandler(engine *simulation.MarketEngine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// Health checks the health status of the service
// @Summary Health Check
// @Description Get health status of the service, engine state and database connection
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Service is healthy"
// @Failure 503 {object} map[string]interface{} "Service is unhealthy"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	response := gin.H{
		"status":  "healthy",
		"service": "trading-app",
		"engine":  h.engine.Status().State,
	}

	// Session recording is optional; report the database only when wired.
	db := database.GetDB()
	if db == nil {
		response["database"] = "disabled"
		c.JSON(http.StatusOK, response)
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database connection failed",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database ping failed",
		})
		return
	}

	response["database"] = "connected"
	c.JSON(http.StatusOK, response)
}
