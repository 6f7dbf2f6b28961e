package remote

import (
	"context"

	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
)

type CheckoutRequest struct {
	OrderID   string  `json:"orderId"`
	MealName  string  `json:"mealName"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	UserEmail string  `json:"userEmail"`
}

func (c *Client) CreateCheckoutSession(ctx context.Context, r CheckoutRequest) (model.CheckoutSession, error) {
	var s model.CheckoutSession
	err := c.post(ctx, "/create-checkout-session", r, &s)
	return s, err
}

func (c *Client) VerifyPayment(ctx context.Context, sessionID, orderID string) (model.PaymentVerification, error) {
	var v model.PaymentVerification
	body := map[string]string{"sessionId": sessionID, "orderId": orderID}
	err := c.post(ctx, "/verify-payment", body, &v)
	return v, err
}

func (c *Client) PaymentHistory(ctx context.Context) ([]model.Payment, error) {
	payments := []model.Payment{}
	err := c.get(ctx, "/paymentHistory", nil, &payments)
	return payments, err
}
