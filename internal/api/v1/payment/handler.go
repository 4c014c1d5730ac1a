package payment

import (
	"errors"
	"net/http"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/services"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	payments      *services.PaymentService
	notifyBaseURL string
}

func NewHandler(payments *services.PaymentService, notifyBaseURL string) *Handler {
	return &Handler{payments: payments, notifyBaseURL: notifyBaseURL}
}

// ListMethods returns the enabled payment gateways.
func (h *Handler) ListMethods(c *gin.Context) {
	methods, err := h.payments.PaymentMethods()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not load payment methods"))
		return
	}

	resp := make([]PaymentMethodResponse, 0, len(methods))
	for _, m := range methods {
		resp = append(resp, PaymentMethodResponse{
			UUID:   m.UUID,
			Name:   m.Name,
			Method: m.PaymentMethod,
		})
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Payment methods retrieved successfully", resp))
}

// CreateOrder opens a pending payment order against an active debt.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	order, err := h.payments.CreateFineOrder(req.UserID, req.DebtID, req.Amount, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDebtNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Debt not found"))
		case errors.Is(err, services.ErrDebtNotActive):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Debt is not active"))
		case errors.Is(err, services.ErrInvalidPaymentAmount):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not create payment order"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Payment order created successfully", OrderResponse{
		OrderID: order.ID,
		UserID:  order.UserID,
		DebtID:  order.DebtID,
		Amount:  order.Amount,
		Status:  order.Status,
	}))
}

// Jump returns the gateway redirect URL for a pending order.
func (h *Handler) Jump(c *gin.Context) {
	var req JumpRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	url, err := h.payments.PaymentJumpURL(req.OrderID, req.Method, req.Channel, h.notifyBaseURL, req.ReturnURL)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Order not found"))
		case errors.Is(err, services.ErrPaymentMethodDisabled), errors.Is(err, services.ErrUnsupportedGateway):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not build payment URL"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Payment URL generated successfully", JumpResponse{URL: url}))
}

// Notify is the gateway webhook. Gateways expect a bare "success" body and
// retry on anything else, so signature failures answer 400 and transient
// errors 500 without a JSON envelope.
func (h *Handler) Notify(c *gin.Context) {
	paymentUUID := c.Param("uuid")

	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}
	params := make(map[string]interface{}, len(c.Request.Form))
	for key, values := range c.Request.Form {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	err := h.payments.HandleNotify(paymentUUID, params)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderAlreadyPaid):
			// Gateway retries are expected, the first settlement won.
			c.String(http.StatusOK, "success")
		case errors.Is(err, services.ErrInvalidSignature), errors.Is(err, services.ErrOrderNotFound), errors.Is(err, services.ErrOrderCancelled):
			zap.L().Warn("Rejected payment notification",
				zap.String("payment_uuid", paymentUUID),
				zap.Error(err))
			c.String(http.StatusBadRequest, "fail")
		default:
			zap.L().Error("Payment notification failed",
				zap.String("payment_uuid", paymentUUID),
				zap.Error(err))
			c.String(http.StatusInternalServerError, "fail")
		}
		return
	}

	c.String(http.StatusOK, "success")
}
