package remote

import (
	"context"
	"net/url"

	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
)

func (c *Client) CreateOrder(ctx context.Context, o model.Order) (model.InsertResult, error) {
	var res model.InsertResult
	err := c.post(ctx, "/orders", o, &res)
	return res, err
}

func (c *Client) ListOrdersByEmail(ctx context.Context, email string) ([]model.Order, error) {
	orders := []model.Order{}
	err := c.get(ctx, "/orders", url.Values{"email": {email}}, &orders)
	return orders, err
}

func (c *Client) ListOrdersByChef(ctx context.Context, chefID string) ([]model.Order, error) {
	orders := []model.Order{}
	err := c.get(ctx, "/orders/"+url.PathEscape(chefID), nil, &orders)
	return orders, err
}

func (c *Client) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	orders := []model.Order{}
	err := c.get(ctx, "/orders/all", nil, &orders)
	return orders, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.UpdateResult, error) {
	var res model.UpdateResult
	body := map[string]model.OrderStatus{"orderStatus": status}
	err := c.patch(ctx, "/orders/update/"+url.PathEscape(id), body, &res)
	return res, err
}
