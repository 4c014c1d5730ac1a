package gem

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	gems := router.Group("/gems")
	gems.GET("/:citizenId", h.GetCitizenGems)
	gems.GET("/:citizenId/driver", h.GetDriverGems)
	gems.GET("/:citizenId/penalties", h.GetPenaltyHistory)
}
