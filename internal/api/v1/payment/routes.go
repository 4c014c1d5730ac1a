package payment

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	router.GET("/payment/methods", h.ListMethods)
	router.POST("/payment/orders", h.CreateOrder)
	router.POST("/payment/jump", h.Jump)
	router.POST("/payment/notify/:uuid", h.Notify)
}
