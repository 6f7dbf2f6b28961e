package remote

import (
	"context"
	"net/url"

	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
)

// FindFavorites is the duplicate pre-check: the user's favorites for one meal.
func (c *Client) FindFavorites(ctx context.Context, email, mealID string) ([]model.Favorite, error) {
	favs := []model.Favorite{}
	err := c.get(ctx, "/favorites/"+url.PathEscape(email), url.Values{"mealId": {mealID}}, &favs)
	return favs, err
}

func (c *Client) ListFavorites(ctx context.Context, email string) ([]model.Favorite, error) {
	favs := []model.Favorite{}
	err := c.get(ctx, "/favorites/all/"+url.PathEscape(email), nil, &favs)
	return favs, err
}

func (c *Client) CreateFavorite(ctx context.Context, f model.Favorite) (model.InsertResult, error) {
	var res model.InsertResult
	err := c.post(ctx, "/favorites", f, &res)
	return res, err
}

func (c *Client) DeleteFavorite(ctx context.Context, id string) (model.DeleteResult, error) {
	var res model.DeleteResult
	err := c.delete(ctx, "/favorites/"+url.PathEscape(id), &res)
	return res, err
}
