package gem

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	router.POST("/gems/penalty", h.ApplyPenalty)
	router.POST("/gems/adjust", h.AdjustGems)
	router.POST("/gems/restriction", h.SetRestriction)
}
