package gem

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/models"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/services"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	gems *services.GemService
}

func NewHandler(gems *services.GemService) *Handler {
	return &Handler{gems: gems}
}

func appliedBy(c *gin.Context) string {
	if id, ok := c.Get("admin_id"); ok {
		if uid, ok := id.(uint); ok && uid > 0 {
			return "admin:" + strconv.FormatUint(uint64(uid), 10)
		}
	}
	return "admin"
}

// ApplyPenalty applies a severity-based gem deduction to the citizen or
// driver ledger.
func (h *Handler) ApplyPenalty(c *gin.Context) {
	var req ApplyPenaltyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	in := services.PenaltyInput{
		CitizenID:   req.CitizenID,
		Amount:      req.Amount,
		Severity:    models.Severity(req.Severity),
		Reason:      req.Reason,
		AppliedBy:   appliedBy(c),
		ViolationID: req.ViolationID,
	}

	var result *services.PenaltyResult
	var err error
	if req.Account == models.GemLedgerDriver {
		result, err = h.gems.ApplyDriverPenalty(in)
	} else {
		result, err = h.gems.ApplyPenalty(in)
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPenaltyAmount), errors.Is(err, services.ErrUnknownSeverity):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not apply penalty"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Penalty applied successfully", PenaltyResultResponse{
		CitizenID:      req.CitizenID,
		NewBalance:     result.NewBalance,
		WasAlreadyZero: result.WasAlreadyZero,
		IsRestricted:   result.NewBalance == 0,
	}))
}

// AdjustGems credits or debits gems outside the penalty path.
func (h *Handler) AdjustGems(c *gin.Context) {
	var req AdjustGemsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var newBalance int
	var err error
	if req.Direction == "increase" {
		newBalance, err = h.gems.IncreaseGems(req.CitizenID, req.Amount)
	} else {
		newBalance, err = h.gems.DecreaseGems(req.CitizenID, req.Amount)
	}
	if err != nil {
		if errors.Is(err, services.ErrInvalidGemAmount) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not adjust gems"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Gems adjusted successfully", AdjustResultResponse{
		CitizenID:  req.CitizenID,
		NewBalance: newBalance,
	}))
}

// SetRestriction overrides the restriction flag; the effective value is
// returned since zero-gem accounts stay restricted.
func (h *Handler) SetRestriction(c *gin.Context) {
	var req SetRestrictionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	effective, err := h.gems.SetRestriction(req.CitizenID, *req.Restricted)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Gem account not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not update restriction"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Restriction updated", RestrictionResponse{
		CitizenID:    req.CitizenID,
		IsRestricted: effective,
	}))
}
