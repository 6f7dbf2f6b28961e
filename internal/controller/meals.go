package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TusharChow20/project-Chef-Lokal/internal/dto"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/service"
)

type MealService interface {
	List(ctx context.Context, f service.MealFilter) (service.MealListing, error)
	Get(ctx context.Context, id string) (*service.MealDetails, error)
	ListMine(ctx context.Context, caller service.Caller) ([]model.Meal, error)
	Create(ctx context.Context, caller service.Caller, in service.MealInput) (*model.Meal, error)
	Update(ctx context.Context, caller service.Caller, id string, in service.MealInput) (*model.Meal, error)
	Delete(ctx context.Context, caller service.Caller, id string) error
}

type MealController struct {
	Service MealService
}

func NewMealController(s MealService) *MealController {
	return &MealController{Service: s}
}

// GET /meals?page=&search=&minPrice=&maxPrice=&minRating=&sort=
func (ctl *MealController) List(c *gin.Context) {
	var q dto.MealQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	listing, err := ctl.Service.List(c.Request.Context(), service.MealFilter{
		Page:      q.Page,
		Search:    q.Search,
		MinPrice:  q.MinPrice,
		MaxPrice:  q.MaxPrice,
		MinRating: q.MinRating,
		Sort:      service.SortOrder(q.Sort),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// GET /meals/:id
func (ctl *MealController) Get(c *gin.Context) {
	details, err := ctl.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// GET /chef/meals - chef only
func (ctl *MealController) GetMine(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	meals, err := ctl.Service.ListMine(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

// POST /chef/meals - multipart con la imagen en "image", o JSON con foodImage
func (ctl *MealController) Create(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	in, closeImage, ok := bindMeal(c)
	if !ok {
		return
	}
	defer closeImage()
	in.IdempotencyKey = idempotencyKey(c)

	meal, err := ctl.Service.Create(c.Request.Context(), who, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

// PUT /chef/meals/:id
func (ctl *MealController) Update(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	in, closeImage, ok := bindMeal(c)
	if !ok {
		return
	}
	defer closeImage()

	meal, err := ctl.Service.Update(c.Request.Context(), who, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

// DELETE /chef/meals/:id
func (ctl *MealController) Delete(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	if err := ctl.Service.Delete(c.Request.Context(), who, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "meal deleted"})
}

func bindMeal(c *gin.Context) (service.MealInput, func(), bool) {
	noop := func() {}

	var req dto.MealRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return service.MealInput{}, noop, false
	}

	img, name, err := formFile(c, "image")
	if err != nil {
		badRequest(c, err)
		return service.MealInput{}, noop, false
	}

	in := service.MealInput{
		FoodName:              req.FoodName,
		Price:                 req.Price,
		Ingredients:           splitIngredients(req.Ingredients),
		EstimatedDeliveryTime: req.EstimatedDeliveryTime,
		FoodDescription:       req.FoodDescription,
		ChefsExperience:       req.ChefsExperience,
		DeliveryArea:          req.DeliveryArea,
		FoodImage:             req.FoodImage,
	}
	if img == nil {
		return in, noop, true
	}
	in.Image = img
	in.ImageName = name
	return in, func() { _ = img.Close() }, true
}

// splitIngredients acepta tanto valores repetidos como "arroz, pollo, cebolla".
func splitIngredients(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
