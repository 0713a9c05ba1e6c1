package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hgvtools/geofence/module/geofence/domain"
	"github.com/hgvtools/geofence/module/geofence/service"
)

type zoneService interface {
	Create(ctx context.Context, in service.CreateZoneInput) (*domain.Zone, error)
	List(ctx context.Context) []domain.Zone
	Get(ctx context.Context, id string) (*domain.Zone, error)
	Update(ctx context.Context, id string, in service.UpdateZoneInput) (*domain.Zone, error)
	SetEnabled(ctx context.Context, id string, enabled bool) (*domain.Zone, error)
	Delete(ctx context.Context, id string) error
}

type notifyPartyPayload struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Details string `json:"details"`
}

type createZoneRequest struct {
	Name                string             `json:"name"`
	Category            string             `json:"category"`
	RadiusMeters        int                `json:"radius_meters"`
	AutoNotify          bool               `json:"auto_notify"`
	NotifyMinutesBefore int                `json:"notify_minutes_before"`
	NotificationMethod  string             `json:"notification_method"`
	NotifyParty         notifyPartyPayload `json:"notify_party"`
}

type updateZoneRequest struct {
	Name                *string             `json:"name"`
	RadiusMeters        *int                `json:"radius_meters"`
	AutoNotify          *bool               `json:"auto_notify"`
	NotifyMinutesBefore *int                `json:"notify_minutes_before"`
	NotificationMethod  *string             `json:"notification_method"`
	NotifyParty         *notifyPartyPayload `json:"notify_party"`
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

type zoneResponse struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	Category            string             `json:"category"`
	Latitude            float64            `json:"latitude"`
	Longitude           float64            `json:"longitude"`
	RadiusMeters        int                `json:"radius_meters"`
	Enabled             bool               `json:"enabled"`
	CreatedAt           int64              `json:"created_at"`
	AutoNotify          bool               `json:"auto_notify"`
	NotifyMinutesBefore int                `json:"notify_minutes_before"`
	NotificationMethod  string             `json:"notification_method"`
	NotifyParty         notifyPartyPayload `json:"notify_party"`
	LastStatus          string             `json:"last_status"`
}

type ZoneHandler struct {
	zones zoneService
}

func NewZoneHandler(zones zoneService) *ZoneHandler {
	return &ZoneHandler{zones: zones}
}

func (h *ZoneHandler) Register(r *gin.RouterGroup) {
	r.POST("/zones", h.Create)
	r.GET("/zones", h.List)
	r.GET("/zones/:zone_id", h.Get)
	r.PATCH("/zones/:zone_id", h.Update)
	r.PUT("/zones/:zone_id/enabled", h.SetEnabled)
	r.DELETE("/zones/:zone_id", h.Delete)
}

func (h *ZoneHandler) Create(c *gin.Context) {
	var req createZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	zone, err := h.zones.Create(c.Request.Context(), service.CreateZoneInput{
		Name:                req.Name,
		Category:            domain.Category(req.Category),
		RadiusMeters:        req.RadiusMeters,
		AutoNotify:          req.AutoNotify,
		NotifyMinutesBefore: req.NotifyMinutesBefore,
		NotificationMethod:  domain.NotificationMethod(req.NotificationMethod),
		NotifyParty:         toNotifyParty(req.NotifyParty),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toZoneResponse(zone))
}

func (h *ZoneHandler) List(c *gin.Context) {
	zones := h.zones.List(c.Request.Context())

	results := make([]zoneResponse, len(zones))
	for i := range zones {
		results[i] = toZoneResponse(&zones[i])
	}
	c.JSON(http.StatusOK, results)
}

func (h *ZoneHandler) Get(c *gin.Context) {
	zone, err := h.zones.Get(c.Request.Context(), c.Param("zone_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toZoneResponse(zone))
}

func (h *ZoneHandler) Update(c *gin.Context) {
	var req updateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := service.UpdateZoneInput{
		Name:                req.Name,
		RadiusMeters:        req.RadiusMeters,
		AutoNotify:          req.AutoNotify,
		NotifyMinutesBefore: req.NotifyMinutesBefore,
	}
	if req.NotificationMethod != nil {
		method := domain.NotificationMethod(*req.NotificationMethod)
		in.NotificationMethod = &method
	}
	if req.NotifyParty != nil {
		party := toNotifyParty(*req.NotifyParty)
		in.NotifyParty = &party
	}

	zone, err := h.zones.Update(c.Request.Context(), c.Param("zone_id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toZoneResponse(zone))
}

func (h *ZoneHandler) SetEnabled(c *gin.Context) {
	var req setEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enabled flag is required"})
		return
	}

	zone, err := h.zones.SetEnabled(c.Request.Context(), c.Param("zone_id"), *req.Enabled)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toZoneResponse(zone))
}

func (h *ZoneHandler) Delete(c *gin.Context) {
	if err := h.zones.Delete(c.Request.Context(), c.Param("zone_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toZoneResponse(z *domain.Zone) zoneResponse {
	return zoneResponse{
		ID:                  z.ID,
		Name:                z.Name,
		Category:            string(z.Category),
		Latitude:            z.Center.Lat,
		Longitude:           z.Center.Lon,
		RadiusMeters:        z.RadiusMeters,
		Enabled:             z.Enabled,
		CreatedAt:           z.CreatedAt.Unix(),
		AutoNotify:          z.AutoNotify,
		NotifyMinutesBefore: z.NotifyMinutesBefore,
		NotificationMethod:  string(z.NotificationMethod),
		NotifyParty: notifyPartyPayload{
			Name:    z.NotifyParty.Name,
			Phone:   z.NotifyParty.Phone,
			Email:   z.NotifyParty.Email,
			Details: z.NotifyParty.Details,
		},
		LastStatus: string(z.LastStatus),
	}
}

func toNotifyParty(p notifyPartyPayload) domain.NotifyParty {
	return domain.NotifyParty{Name: p.Name, Phone: p.Phone, Email: p.Email, Details: p.Details}
}

func writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, domain.ErrZoneNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "zone not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
