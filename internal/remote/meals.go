package remote

import (
	"context"
	"net/url"
	"strconv"

	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
)

type MealQuery struct {
	Limit     int
	Skip      int
	SortBy    string
	SortOrder string
}

func (q MealQuery) values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	v.Set("skip", strconv.Itoa(q.Skip))
	if q.SortOrder != "" {
		sortBy := q.SortBy
		if sortBy == "" {
			sortBy = "price"
		}
		v.Set("sortBy", sortBy)
		v.Set("sortOrder", q.SortOrder)
	}
	return v
}

func (c *Client) ListMeals(ctx context.Context, q MealQuery) (model.MealPage, error) {
	var page model.MealPage
	err := c.get(ctx, "/meals", q.values(), &page)
	if page.Meals == nil {
		page.Meals = []model.Meal{}
	}
	return page, err
}

func (c *Client) GetMeal(ctx context.Context, id string) (*model.Meal, error) {
	var m *model.Meal
	if err := c.get(ctx, "/mealDetails/"+url.PathEscape(id), nil, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return m, nil
}

func (c *Client) ListChefMeals(ctx context.Context, chefID string) ([]model.Meal, error) {
	meals := []model.Meal{}
	err := c.get(ctx, "/meals/chef/"+url.PathEscape(chefID), nil, &meals)
	return meals, err
}

func (c *Client) CreateMeal(ctx context.Context, m model.Meal) (model.InsertResult, error) {
	var res model.InsertResult
	err := c.post(ctx, "/meals", m, &res)
	return res, err
}

func (c *Client) UpdateMeal(ctx context.Context, id string, m model.Meal) (model.UpdateResult, error) {
	var res model.UpdateResult
	err := c.put(ctx, "/meals/meal/"+url.PathEscape(id), m, &res)
	return res, err
}

func (c *Client) DeleteMeal(ctx context.Context, id string) (model.DeleteResult, error) {
	var res model.DeleteResult
	err := c.delete(ctx, "/meals/"+url.PathEscape(id), &res)
	return res, err
}
