package handler

import (
	"context"
	"time"

	crmapp "github.com/eventos/backend/internal/application/crm"
	"github.com/eventos/backend/internal/domain/crm"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteHandler handles quote API endpoints
type QuoteHandler struct {
	BaseHandler
	quoteService *crmapp.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quoteService *crmapp.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// LineItemRequest is a single quote line as submitted over the API
type LineItemRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=300"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateQuoteRequest represents a request to draft a quote for an event
type CreateQuoteRequest struct {
	EventID string            `json:"event_id" binding:"required,uuid"`
	Items   []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes   string            `json:"notes" binding:"max=2000"`
}

// UpdateQuoteLinesRequest replaces the line items of a draft quote
type UpdateQuoteLinesRequest struct {
	Items []LineItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SendQuoteRequest marks a quote as sent with its validity window
type SendQuoteRequest struct {
	ValidUntil time.Time `json:"valid_until" binding:"required"`
}

func toLineItemInputs(items []LineItemRequest) []crmapp.LineItemInput {
	inputs := make([]crmapp.LineItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, crmapp.LineItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return inputs
}

// Create drafts a new quote for an event
func (h *QuoteHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		h.BadRequest(c, "Invalid event ID")
		return
	}

	quote, err := h.quoteService.CreateQuote(c.Request.Context(), crmapp.CreateQuoteRequest{
		TenantID:  tenantID,
		EventID:   eventID,
		Items:     toLineItemInputs(req.Items),
		Notes:     req.Notes,
		CreatedBy: getActorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, quote)
}

// Get returns a single quote
func (h *QuoteHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID")
		return
	}

	quote, err := h.quoteService.GetQuote(c.Request.Context(), tenantID, quoteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quote)
}

// ListByEvent returns all quotes drafted for an event
func (h *QuoteHandler) ListByEvent(c *gin.Context) {
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

	quotes, err := h.quoteService.ListQuotesByEvent(c.Request.Context(), tenantID, eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quotes)
}

// UpdateLines replaces the line items of a draft quote
func (h *QuoteHandler) UpdateLines(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID")
		return
	}

	var req UpdateQuoteLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quote, err := h.quoteService.UpdateQuoteLines(c.Request.Context(), tenantID, quoteID, toLineItemInputs(req.Items))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quote)
}

// Send marks a quote as sent to the client
func (h *QuoteHandler) Send(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID")
		return
	}

	var req SendQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quote, err := h.quoteService.SendQuote(c.Request.Context(), tenantID, quoteID, req.ValidUntil)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quote)
}

// Accept marks a sent quote as accepted by the client
func (h *QuoteHandler) Accept(c *gin.Context) {
	h.transition(c, h.quoteService.AcceptQuote)
}

// Reject marks a sent quote as rejected by the client
func (h *QuoteHandler) Reject(c *gin.Context) {
	h.transition(c, h.quoteService.RejectQuote)
}

func (h *QuoteHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, quoteID uuid.UUID) (*crm.Quote, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID")
		return
	}

	quote, err := fn(c.Request.Context(), tenantID, quoteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quote)
}
