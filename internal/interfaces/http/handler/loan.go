package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	lendingapp "github.com/clinicore/backend/internal/application/lending"
)

// LoanHandler handles loan and schedule HTTP requests
type LoanHandler struct {
	BaseHandler
	loanService         *lendingapp.LoanService
	paymentService      *lendingapp.PaymentService
	regenerationService *lendingapp.RegenerationService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(
	loanService *lendingapp.LoanService,
	paymentService *lendingapp.PaymentService,
	regenerationService *lendingapp.RegenerationService,
) *LoanHandler {
	return &LoanHandler{
		loanService:         loanService,
		paymentService:      paymentService,
		regenerationService: regenerationService,
	}
}

// Create handles POST /api/v1/lending/loans
func (h *LoanHandler) Create(c *gin.Context) {
	var req lendingapp.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	loan, err := h.loanService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, loan)
}

// List handles GET /api/v1/lending/loans
func (h *LoanHandler) List(c *gin.Context) {
	var filter lendingapp.LoanListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.loanService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByNumber handles GET /api/v1/lending/loans/:number
func (h *LoanHandler) GetByNumber(c *gin.Context) {
	loanNumber := c.Param("number")

	loan, err := h.loanService.GetByNumber(c.Request.Context(), loanNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, loan)
}

// Regenerate handles POST /api/v1/lending/loans/:number/regenerate
func (h *LoanHandler) Regenerate(c *gin.Context) {
	loanNumber := c.Param("number")

	var req lendingapp.RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	loan, err := h.regenerationService.Regenerate(c.Request.Context(), loanNumber, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, loan)
}

// MarkDefaulted handles POST /api/v1/lending/loans/:number/default
func (h *LoanHandler) MarkDefaulted(c *gin.Context) {
	loanNumber := c.Param("number")

	loan, err := h.loanService.MarkDefaulted(c.Request.Context(), loanNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, loan)
}

// RegisterPayment handles POST /api/v1/lending/schedules/:id/payment
func (h *LoanHandler) RegisterPayment(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid schedule ID")
		return
	}

	var req lendingapp.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	schedule, err := h.paymentService.RegisterPayment(c.Request.Context(), scheduleID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, schedule)
}

// UnlinkPayment handles DELETE /api/v1/lending/schedules/:id/payment
func (h *LoanHandler) UnlinkPayment(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid schedule ID")
		return
	}

	schedule, err := h.paymentService.UnlinkPayment(c.Request.Context(), scheduleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, schedule)
}

// SkipInstallment handles POST /api/v1/lending/schedules/:id/skip
func (h *LoanHandler) SkipInstallment(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid schedule ID")
		return
	}

	schedule, err := h.paymentService.SkipInstallment(c.Request.Context(), scheduleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, schedule)
}
