package gem

import (
	"net/http"
	"strconv"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/models"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/services"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	gems *services.GemService
}

func NewHandler(gems *services.GemService) *Handler {
	return &Handler{gems: gems}
}

func parseCitizenID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("citizenId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid citizen id"))
		return 0, false
	}
	return uint(id), true
}

// GetCitizenGems returns the citizen-ledger balance and restriction flag.
func (h *Handler) GetCitizenGems(c *gin.Context) {
	citizenID, ok := parseCitizenID(c)
	if !ok {
		return
	}

	gem, err := h.gems.GetCitizenGem(citizenID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not load gem balance"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Gem balance retrieved successfully", GemResponse{
		CitizenID:    citizenID,
		Account:      models.GemLedgerCitizen,
		Amount:       gem.Amount,
		IsRestricted: gem.IsRestricted,
		LastUpdated:  gem.LastUpdated,
	}))
}

// GetDriverGems returns the driver-ledger balance and restriction flag.
func (h *Handler) GetDriverGems(c *gin.Context) {
	citizenID, ok := parseCitizenID(c)
	if !ok {
		return
	}

	gem, err := h.gems.GetDriverGem(citizenID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not load gem balance"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Gem balance retrieved successfully", GemResponse{
		CitizenID:    citizenID,
		Account:      models.GemLedgerDriver,
		Amount:       gem.Amount,
		IsRestricted: gem.IsRestricted,
		LastUpdated:  gem.LastUpdated,
	}))
}

// GetPenaltyHistory returns the penalty audit rows with the severity
// breakdown aggregation.
func (h *Handler) GetPenaltyHistory(c *gin.Context) {
	citizenID, ok := parseCitizenID(c)
	if !ok {
		return
	}

	records, breakdown, err := h.gems.PenaltyHistory(citizenID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not load penalty history"))
		return
	}

	resp := PenaltyHistoryResponse{
		CitizenID: citizenID,
		Penalties: make([]PenaltyRecordResponse, 0, len(records)),
		Breakdown: breakdown,
	}
	for _, r := range records {
		resp.Penalties = append(resp.Penalties, PenaltyRecordResponse{
			ID:          r.ID,
			Account:     r.Account,
			Amount:      r.Amount,
			Reason:      r.Reason,
			Severity:    string(r.Severity),
			ViolationID: r.ViolationID,
			AppliedBy:   r.AppliedBy,
			CreatedAt:   r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Penalty history retrieved successfully", resp))
}
