package remote

import (
	"context"
	"net/url"

	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
)

func (c *Client) CreateRoleRequest(ctx context.Context, r model.RoleChangeRequest) (model.InsertResult, error) {
	var res model.InsertResult
	err := c.post(ctx, "/role_change_req", r, &res)
	return res, err
}

func (c *Client) ListRoleRequestsByUser(ctx context.Context, email string) ([]model.RoleChangeRequest, error) {
	reqs := []model.RoleChangeRequest{}
	err := c.get(ctx, "/role_change_req", url.Values{"email": {email}}, &reqs)
	return reqs, err
}

func (c *Client) ListRoleRequests(ctx context.Context) ([]model.RoleChangeRequest, error) {
	reqs := []model.RoleChangeRequest{}
	err := c.get(ctx, "/role_change_req/all", nil, &reqs)
	return reqs, err
}

func (c *Client) DeleteRoleRequest(ctx context.Context, id string) (model.DeleteResult, error) {
	var res model.DeleteResult
	err := c.delete(ctx, "/role_change_req/"+url.PathEscape(id), &res)
	return res, err
}
