package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hgvtools/geofence/module/geofence/service"
)

type monitorService interface {
	Start() error
	Stop() error
	Status() service.MonitorStatus
}

type statusResponse struct {
	Active       bool `json:"active"`
	EnabledZones int  `json:"enabled_zones"`
}

type MonitoringHandler struct {
	monitor monitorService
}

func NewMonitoringHandler(monitor monitorService) *MonitoringHandler {
	return &MonitoringHandler{monitor: monitor}
}

func (h *MonitoringHandler) Register(r *gin.RouterGroup) {
	r.POST("/monitoring/start", h.Start)
	r.POST("/monitoring/stop", h.Stop)
	r.GET("/monitoring/status", h.Status)
}

func (h *MonitoringHandler) Start(c *gin.Context) {
	if err := h.monitor.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start monitoring"})
		return
	}
	c.JSON(http.StatusOK, toStatusResponse(h.monitor.Status()))
}

func (h *MonitoringHandler) Stop(c *gin.Context) {
	if err := h.monitor.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stop monitoring"})
		return
	}
	c.JSON(http.StatusOK, toStatusResponse(h.monitor.Status()))
}

func (h *MonitoringHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, toStatusResponse(h.monitor.Status()))
}

func toStatusResponse(s service.MonitorStatus) statusResponse {
	return statusResponse{Active: s.Active, EnabledZones: s.EnabledZones}
}
