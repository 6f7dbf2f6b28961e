package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TusharChow20/project-Chef-Lokal/internal/dto"
	"github.com/TusharChow20/project-Chef-Lokal/internal/lifecycle"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/service"
)

type OrderService interface {
	Place(ctx context.Context, caller service.Caller, in service.PlaceOrderInput) (*model.Order, bool, error)
	ListMine(ctx context.Context, caller service.Caller) ([]lifecycle.OrderView, error)
	Summary(ctx context.Context, caller service.Caller) (lifecycle.OrderSummary, error)
	ListForChef(ctx context.Context, caller service.Caller) ([]lifecycle.OrderView, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	Advance(ctx context.Context, caller service.Caller, orderID string, action lifecycle.Action) (*lifecycle.OrderView, error)
	CancelAsAdmin(ctx context.Context, caller service.Caller, orderID string) (*model.Order, error)
	Pay(ctx context.Context, caller service.Caller, orderID string) (model.CheckoutSession, error)
	VerifyPayment(ctx context.Context, caller service.Caller, sessionID, orderID string) (*model.Payment, error)
	PaymentHistory(ctx context.Context) ([]model.Payment, error)
}

type OrderController struct {
	Service OrderService
}

func NewOrderController(s OrderService) *OrderController {
	return &OrderController{Service: s}
}

// POST /orders
func (ctl *OrderController) Place(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	o, replayed, err := ctl.Service.Place(c.Request.Context(), who, service.PlaceOrderInput{
		MealID:         req.MealID,
		Quantity:       req.Quantity,
		Address:        req.Address,
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// un reintento con la misma key devuelve la orden ya creada
	if replayed {
		c.JSON(http.StatusOK, o)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// GET /orders/mine
func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	views, err := ctl.Service.ListMine(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GET /orders/summary
func (ctl *OrderController) GetSummary(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	s, err := ctl.Service.Summary(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// GET /chef/orders - chef only
func (ctl *OrderController) GetChefOrders(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	views, err := ctl.Service.ListForChef(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// PATCH /chef/orders/:orderId - chef only
func (ctl *OrderController) Advance(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req dto.OrderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := ctl.Service.Advance(c.Request.Context(), who, c.Param("orderId"), lifecycle.Action(req.Action))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /orders/:orderId/pay
func (ctl *OrderController) Pay(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	checkout, err := ctl.Service.Pay(c.Request.Context(), who, c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkout)
}

// POST /payments/verify
func (ctl *OrderController) VerifyPayment(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := ctl.Service.VerifyPayment(c.Request.Context(), who, req.SessionID, req.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /admin/orders - admin only
func (ctl *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := ctl.Service.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// PATCH /admin/orders/:orderId/cancel - admin only
func (ctl *OrderController) Cancel(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	o, err := ctl.Service.CancelAsAdmin(c.Request.Context(), who, c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// GET /admin/payments - admin only
func (ctl *OrderController) GetPayments(c *gin.Context) {
	payments, err := ctl.Service.PaymentHistory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
