package remote

import (
	"context"
	"net/url"

	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
)

// UserPatch is the body of PATCH /users/:email. RequestType changes the role.
type UserPatch struct {
	RequestType *model.Role       `json:"requestType,omitempty"`
	UserStatus  *model.UserStatus `json:"userStatus,omitempty"`
	DisplayName *string           `json:"displayName,omitempty"`
	PhotoURL    *string           `json:"photoURL,omitempty"`
	Address     *string           `json:"address,omitempty"`
}

func (c *Client) GetUser(ctx context.Context, email string) (*model.User, error) {
	var u *model.User
	if err := c.get(ctx, "/users", url.Values{"email": {email}}, &u); err != nil {
		return nil, err
	}
	if u == nil || u.Email == "" {
		return nil, ErrNotFound
	}
	return u, nil
}

func (c *Client) GetUserRole(ctx context.Context, email string) (model.Role, error) {
	var out struct {
		Role model.Role `json:"role"`
	}
	if err := c.get(ctx, "/users/"+url.PathEscape(email)+"/role", nil, &out); err != nil {
		return "", err
	}
	return out.Role, nil
}

func (c *Client) CreateUser(ctx context.Context, u model.User) (model.InsertResult, error) {
	var res model.InsertResult
	err := c.post(ctx, "/users", u, &res)
	return res, err
}

func (c *Client) UpdateUser(ctx context.Context, email string, patch UserPatch) (model.UpdateResult, error) {
	var res model.UpdateResult
	err := c.patch(ctx, "/users/"+url.PathEscape(email), patch, &res)
	return res, err
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	err := c.get(ctx, "/user/allUser", nil, &users)
	return users, err
}
