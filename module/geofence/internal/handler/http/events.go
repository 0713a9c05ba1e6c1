package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hgvtools/geofence/module/geofence/domain"
)

// defaultEventLimit matches the typical display size; the log itself retains
// up to 50.
const defaultEventLimit = 10

type eventService interface {
	List(ctx context.Context, limit int) []domain.Event
	Clear(ctx context.Context) error
}

type eventResponse struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	ZoneName       string   `json:"zone_name"`
	ZoneCategory   string   `json:"zone_category"`
	Timestamp      int64    `json:"timestamp"`
	DistanceMeters *float64 `json:"distance_meters"`
}

type EventHandler struct {
	events eventService
}

func NewEventHandler(events eventService) *EventHandler {
	return &EventHandler{events: events}
}

func (h *EventHandler) Register(r *gin.RouterGroup) {
	r.GET("/events", h.List)
	r.DELETE("/events", h.Clear)
}

func (h *EventHandler) List(c *gin.Context) {
	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
		limit = parsed
	}

	events := h.events.List(c.Request.Context(), limit)

	results := make([]eventResponse, len(events))
	for i, e := range events {
		results[i] = eventResponse{
			ID:             e.ID,
			Type:           string(e.Type),
			ZoneName:       e.ZoneName,
			ZoneCategory:   string(e.ZoneCategory),
			Timestamp:      e.Timestamp.Unix(),
			DistanceMeters: e.DistanceMeters,
		}
	}
	c.JSON(http.StatusOK, results)
}

func (h *EventHandler) Clear(c *gin.Context) {
	if err := h.events.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear events"})
		return
	}
	c.Status(http.StatusNoContent)
}
