package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lodgical/service-reservation/internal/application"
	"github.com/lodgical/service-reservation/internal/domain/calendar"
	"github.com/lodgical/service-reservation/internal/platform/response"
)

// AvailabilityHandler handles HTTP requests for calendar and availability reads
// plus host-initiated blocks.
type AvailabilityHandler struct {
	service *application.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(service *application.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// RegisterRoutes registers all availability routes on the given router group.
func (h *AvailabilityHandler) RegisterRoutes(r *gin.RouterGroup) {
	resources := r.Group("/api/v1/resources/:id")
	{
		resources.GET("/availability", h.CheckAvailability)
		resources.GET("/calendar", h.GetCalendar)
		resources.POST("/blocks", h.BlockDates)
		resources.DELETE("/blocks", h.UnblockDates)
	}

	providers := r.Group("/api/v1/providers/:id")
	{
		providers.GET("/slots", h.GetProviderSlots)
	}
}

// CheckAvailability handles GET /api/v1/resources/:id/availability.
func (h *AvailabilityHandler) CheckAvailability(c *gin.Context) {
	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid resource ID")
		return
	}

	start, end, ok := parseRange(c, "start", "end")
	if !ok {
		return
	}
	interval, err := calendar.NewInterval(start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	available, err := h.service.IsAvailable(c.Request.Context(), resourceID, interval)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"resource_id": resourceID, "available": available})
}

// GetCalendar handles GET /api/v1/resources/:id/calendar.
func (h *AvailabilityHandler) GetCalendar(c *gin.Context) {
	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid resource ID")
		return
	}

	from, to, ok := parseRange(c, "from", "to")
	if !ok {
		return
	}

	days, err := h.service.Calendar(c.Request.Context(), resourceID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, days)
}

// GetProviderSlots handles GET /api/v1/providers/:id/slots.
func (h *AvailabilityHandler) GetProviderSlots(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid provider ID")
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}

	slots, err := h.service.ProviderSlots(c.Request.Context(), providerID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, slots)
}

// BlockDates handles POST /api/v1/resources/:id/blocks.
func (h *AvailabilityHandler) BlockDates(c *gin.Context) {
	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid resource ID")
		return
	}

	userID, ok := actorID(c)
	if !ok {
		return
	}

	var body struct {
		Start  time.Time `json:"start" binding:"required"`
		End    time.Time `json:"end" binding:"required"`
		Reason string    `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	interval, err := calendar.NewInterval(body.Start, body.End)
	if err != nil {
		response.Error(c, err)
		return
	}

	block, err := h.service.HostBlockDates(c.Request.Context(), resourceID, interval, body.Reason, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, block)
}

// UnblockDates handles DELETE /api/v1/resources/:id/blocks.
func (h *AvailabilityHandler) UnblockDates(c *gin.Context) {
	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid resource ID")
		return
	}

	start, end, ok := parseRange(c, "start", "end")
	if !ok {
		return
	}
	interval, err := calendar.NewInterval(start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.UnblockRange(c.Request.Context(), resourceID, interval); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"resource_id": resourceID})
}

// parseRange reads two RFC 3339 timestamps from query parameters.
func parseRange(c *gin.Context, fromKey, toKey string) (time.Time, time.Time, bool) {
	from, err := time.Parse(time.RFC3339, c.Query(fromKey))
	if err != nil {
		response.BadRequest(c, fromKey+" must be RFC 3339")
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.RFC3339, c.Query(toKey))
	if err != nil {
		response.BadRequest(c, toKey+" must be RFC 3339")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
