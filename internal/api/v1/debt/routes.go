package debt

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	router.GET("/users/:userId/debts", h.GetSummary)
	router.GET("/debts/:id", h.GetDebt)
}
