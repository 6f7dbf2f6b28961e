package remote

import (
	"context"
	"net/url"

	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
)

type ReviewPatch struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"reviewText"`
}

func (c *Client) CreateReview(ctx context.Context, r model.Review) (model.InsertResult, error) {
	var res model.InsertResult
	err := c.post(ctx, "/reviews", r, &res)
	return res, err
}

func (c *Client) ListReviews(ctx context.Context) ([]model.Review, error) {
	reviews := []model.Review{}
	err := c.get(ctx, "/reviews", nil, &reviews)
	return reviews, err
}

func (c *Client) ListReviewsByUser(ctx context.Context, email string) ([]model.Review, error) {
	reviews := []model.Review{}
	err := c.get(ctx, "/reviews/"+url.PathEscape(email), nil, &reviews)
	return reviews, err
}

func (c *Client) ListReviewsByMeal(ctx context.Context, mealID string) ([]model.Review, error) {
	reviews := []model.Review{}
	err := c.get(ctx, "/reviews/meal/"+url.PathEscape(mealID), nil, &reviews)
	return reviews, err
}

func (c *Client) UpdateReview(ctx context.Context, id string, patch ReviewPatch) (model.UpdateResult, error) {
	var res model.UpdateResult
	err := c.patch(ctx, "/reviews/"+url.PathEscape(id), patch, &res)
	return res, err
}

func (c *Client) DeleteReview(ctx context.Context, id string) (model.DeleteResult, error) {
	var res model.DeleteResult
	err := c.delete(ctx, "/reviews/"+url.PathEscape(id), &res)
	return res, err
}
