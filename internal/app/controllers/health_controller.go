package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/services"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/services/container"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/error/response"
)

// HealthCheckController serves liveness and dependency status
type HealthCheckController struct {
	Container *container.ServiceContainer
}

// NewHealthCheckController creates a health check controller instance
func NewHealthCheckController(container *container.ServiceContainer) *HealthCheckController {
	return &HealthCheckController{Container: container}
}

// Ping is the liveness endpoint
// @Summary Liveness check
// @Description Returns pong when the process is serving requests
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Router /ping [get]
func (h *HealthCheckController) Ping(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Status reports the state of the database and cache dependencies
// @Summary Dependency status
// @Description Reports database and cache connectivity with pool statistics
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Router /health/status [get]
func (h *HealthCheckController) Status(c *gin.Context) {
	ctx := c.Request.Context()

	status := gin.H{"time": time.Now().Format(time.RFC3339)}

	dbStatus := "up"
	var poolStats gin.H
	sqlDB, err := h.Container.GetDB().DB()
	if err != nil {
		dbStatus = "down: " + err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "down: " + err.Error()
	} else {
		stats := sqlDB.Stats()
		poolStats = gin.H{
			"openConnections": stats.OpenConnections,
			"inUse":           stats.InUse,
			"idle":            stats.Idle,
			"waitCount":       stats.WaitCount,
		}
	}
	status["database"] = dbStatus
	if poolStats != nil {
		status["pool"] = poolStats
	}

	redisStatus := "disabled"
	if cache, ok := h.Container.GetService("redis").(services.InterfaceRedisService); ok && cache != nil {
		redisStatus = "up"
		if err := cache.Ping(ctx); err != nil {
			redisStatus = "down: " + err.Error()
		}
	}
	status["redis"] = redisStatus

	response.Success(c, status)
}
