package debt

import (
	"net/http"
	"strconv"

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

func toDebtResponse(d *models.OutstandingDebt) DebtResponse {
	return DebtResponse{
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

// GetSummary returns the user's active debt total and rows.
func (h *Handler) GetSummary(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user id"))
		return
	}

	total, debts, err := h.debts.ActiveDebtTotal(uint(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not load debt summary"))
		return
	}

	resp := DebtSummaryResponse{
		UserID:      uint(userID),
		TotalActive: total,
		Debts:       make([]DebtResponse, 0, len(debts)),
	}
	for i := range debts {
		resp.Debts = append(resp.Debts, toDebtResponse(&debts[i]))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Debt summary retrieved successfully", resp))
}

// GetDebt returns a single debt row.
func (h *Handler) GetDebt(c *gin.Context) {
	debtID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid debt id"))
		return
	}

	debt, err := h.debts.GetDebt(uint(debtID))
	if err == services.ErrDebtNotFound {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Debt not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not load debt"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Debt retrieved successfully", toDebtResponse(debt)))
}
