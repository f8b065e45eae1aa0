package handler

import (
	"time"

	crmapp "github.com/eventos/backend/internal/application/crm"
	"github.com/eventos/backend/internal/domain/crm"
	"github.com/eventos/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventHandler handles event API endpoints
type EventHandler struct {
	BaseHandler
	eventService *crmapp.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService *crmapp.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// CreateEventRequest represents a request to open a new event inquiry
type CreateEventRequest struct {
	ClientID   string    `json:"client_id" binding:"required,uuid"`
	Name       string    `json:"name" binding:"required,min=1,max=200"`
	Type       string    `json:"type" binding:"required"`
	EventDate  time.Time `json:"event_date" binding:"required"`
	GuestCount int       `json:"guest_count" binding:"omitempty,min=0"`
	Venue      string    `json:"venue" binding:"max=300"`
	Notes      string    `json:"notes" binding:"max=2000"`
}

// UpdateEventRequest represents a request to update an event's details
type UpdateEventRequest struct {
	Name       string     `json:"name" binding:"required,min=1,max=200"`
	Venue      string     `json:"venue" binding:"max=300"`
	Notes      string     `json:"notes" binding:"max=2000"`
	GuestCount int        `json:"guest_count" binding:"omitempty,min=0"`
	EventDate  *time.Time `json:"event_date"`
}

// TransitionEventRequest represents a lifecycle transition request
type TransitionEventRequest struct {
	Action string `json:"action" binding:"required,oneof=confirm start_logistics start complete cancel no_show"`
	Reason string `json:"reason" binding:"max=500"`
}

// Create opens a new event inquiry
func (h *EventHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), crmapp.CreateEventRequest{
		TenantID:   tenantID,
		ClientID:   clientID,
		Name:       req.Name,
		Type:       crm.EventType(req.Type),
		EventDate:  req.EventDate,
		GuestCount: req.GuestCount,
		Venue:      req.Venue,
		Notes:      req.Notes,
		CreatedBy:  getActorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, event)
}

// Get returns a single event
func (h *EventHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid event ID")
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), tenantID, eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, event)
}

// List returns a paginated list of events
func (h *EventHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := toFilter(req)
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if clientIDStr := c.Query("client_id"); clientIDStr != "" {
		clientID, err := uuid.Parse(clientIDStr)
		if err != nil {
			h.BadRequest(c, "Invalid client ID")
			return
		}
		filter.Filters["client_id"] = clientID
	}

	result, err := h.eventService.ListEvents(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update updates an event's details
func (h *EventHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid event ID")
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), crmapp.UpdateEventRequest{
		TenantID:   tenantID,
		EventID:    eventID,
		Name:       req.Name,
		Venue:      req.Venue,
		Notes:      req.Notes,
		GuestCount: req.GuestCount,
		EventDate:  req.EventDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, event)
}

// Transition moves an event through its lifecycle
func (h *EventHandler) Transition(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid event ID")
		return
	}

	var req TransitionEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.TransitionEvent(c.Request.Context(), tenantID, eventID, req.Action, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, event)
}

// Calendar returns events inside a date range annotated with financial status
func (h *EventHandler) Calendar(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		h.BadRequest(c, "Invalid from date")
		return
	}
	to, err := parseDateParam(c.Query("to"))
	if err != nil {
		h.BadRequest(c, "Invalid to date")
		return
	}

	entries, err := h.eventService.Calendar(c.Request.Context(), tenantID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// parseDateParam accepts date-only or RFC3339 timestamps
func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
