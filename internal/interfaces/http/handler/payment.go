package handler

import (
	"time"

	billingapp "github.com/eventos/backend/internal/application/billing"
	"github.com/eventos/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IdempotencyKeyHeader carries the client-supplied retry key
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentHandler handles payment and quote summary API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
	summaryService *billingapp.SummaryService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService, summaryService *billingapp.SummaryService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		summaryService: summaryService,
	}
}

// RegisterPaymentRequest represents a request to register a payment against a quote
type RegisterPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate time.Time       `json:"payment_date" binding:"required"`
	Method      string          `json:"method" binding:"required,oneof=CASH TRANSFER CARD CHECK OTHER"`
	Reference   string          `json:"reference" binding:"max=100"`
	Notes       string          `json:"notes" binding:"max=2000"`
}

// CancelPaymentRequest carries the reason a payment is being cancelled
type CancelPaymentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// Register records a payment against an accepted quote
func (h *PaymentHandler) Register(c *gin.Context) {
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

	var req RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.paymentService.RegisterPayment(c.Request.Context(), billingapp.RegisterPaymentRequest{
		TenantID:       tenantID,
		QuoteID:        quoteID,
		Amount:         req.Amount,
		PaymentDate:    req.PaymentDate,
		Method:         billing.PaymentMethod(req.Method),
		Reference:      req.Reference,
		Notes:          req.Notes,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
		CreatedBy:      getActorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// List returns the payments registered against a quote
func (h *PaymentHandler) List(c *gin.Context) {
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

	req := billingapp.ListPaymentsRequest{
		TenantID:         tenantID,
		QuoteID:          quoteID,
		Method:           billing.PaymentMethod(c.Query("method")),
		IncludeCancelled: c.Query("include_cancelled") == "true",
	}
	if fromStr := c.Query("from"); fromStr != "" {
		from, err := parseDateParam(fromStr)
		if err != nil {
			h.BadRequest(c, "Invalid from date")
			return
		}
		req.From = &from
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := parseDateParam(toStr)
		if err != nil {
			h.BadRequest(c, "Invalid to date")
			return
		}
		req.To = &to
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// Summary returns the financial summary for a quote
func (h *PaymentHandler) Summary(c *gin.Context) {
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

	financials, err := h.summaryService.GetQuoteFinancials(c.Request.Context(), tenantID, quoteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, financials)
}

// Cancel voids a payment while keeping it in the ledger
func (h *PaymentHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req CancelPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.CancelPayment(c.Request.Context(), tenantID, paymentID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// Delete permanently removes a payment record
func (h *PaymentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.paymentService.DeletePayment(c.Request.Context(), tenantID, paymentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
