package debt

import (
	"errors"
	"net/http"
	"strconv"

	debtapi "github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/api/v1/debt"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/models"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/services"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	debts *services.DebtService
}

func NewHandler(debts *services.DebtService) *Handler {
	return &Handler{debts: debts}
}

func adminID(c *gin.Context) uint {
	if id, ok := c.Get("admin_id"); ok {
		if uid, ok := id.(uint); ok {
			return uid
		}
	}
	return 0
}

func toResponse(d *models.OutstandingDebt) debtapi.DebtResponse {
	return debtapi.DebtResponse{
		ID:               d.ID,
		UserID:           d.UserID,
		OriginalAmount:   d.OriginalAmount,
		CurrentAmount:    d.CurrentAmount,
		PaidAmount:       d.PaidAmount,
		LateFees:         d.LateFees,
		WeeksPastDue:     d.WeeksPastDue,
		Remaining:        d.Remaining(),
		Status:           string(d.Status),
		DueDate:          d.DueDate,
		PaidAt:           d.PaidAt,
		PaymentReference: d.PaymentReference,
		CreatedAt:        d.CreatedAt,
	}
}

// CreateDebt opens a new debt row for a user.
func (h *Handler) CreateDebt(c *gin.Context) {
	var req CreateDebtRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	debt, err := h.debts.CreateDebt(req.UserID, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDebtAmount) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not create debt"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Debt created successfully", toResponse(debt)))
}

// RecordPayment applies an out-of-band payment to a debt.
func (h *Handler) RecordPayment(c *gin.Context) {
	debtID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid debt id"))
		return
	}

	var req RecordPaymentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	debt, err := h.debts.RecordPayment(uint(debtID), req.Amount, req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDebtNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Debt not found"))
		case errors.Is(err, services.ErrDebtAlreadyWaived):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Debt is already waived"))
		case errors.Is(err, services.ErrInvalidPaymentAmount):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not record payment"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Payment recorded successfully", toResponse(debt)))
}

// WaiveDebt forgives the remaining balance of a debt.
func (h *Handler) WaiveDebt(c *gin.Context) {
	debtID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid debt id"))
		return
	}

	var req WaiveDebtRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	debt, err := h.debts.WaiveDebt(uint(debtID), adminID(c), req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDebtNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Debt not found"))
		case errors.Is(err, services.ErrDebtAlreadyWaived):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Debt is already waived"))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not waive debt"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Debt waived successfully", toResponse(debt)))
}

// CheckNegativeBalance derives the user's balance and creates or adjusts
// their debt if it is negative.
func (h *Handler) CheckNegativeBalance(c *gin.Context) {
	var req CheckBalanceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	debt, err := h.debts.CheckAndCreateDebtForNegativeBalance(req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not check balance"))
		return
	}
	if debt == nil {
		c.JSON(http.StatusOK, utils.NewSuccessResponse("Balance is not negative, no debt required", nil))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Debt reconciled against negative balance", toResponse(debt)))
}

// RunLateFeeAccrual runs one late-fee sweep over all active debts.
func (h *Handler) RunLateFeeAccrual(c *gin.Context) {
	summary, err := h.debts.UpdateLateFeesForAllDebts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Late fee sweep failed"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Late fee sweep completed", summary))
}
