package debt

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	router.POST("/debts", h.CreateDebt)
	router.POST("/debts/:id/payments", h.RecordPayment)
	router.POST("/debts/:id/waive", h.WaiveDebt)
	router.POST("/debts/check-balance", h.CheckNegativeBalance)
	router.POST("/debts/accrue-late-fees", h.RunLateFeeAccrual)
}
