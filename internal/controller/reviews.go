package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TusharChow20/project-Chef-Lokal/internal/dto"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/service"
)

type ReviewService interface {
	Create(ctx context.Context, caller service.Caller, mealID string, in service.ReviewInput) (*model.Review, error)
	Update(ctx context.Context, caller service.Caller, id string, in service.ReviewInput) (*model.Review, error)
	Delete(ctx context.Context, caller service.Caller, id string) error
	ListForMeal(ctx context.Context, mealID string) ([]model.Review, error)
	ListMine(ctx context.Context, caller service.Caller) ([]model.Review, error)
	ListAll(ctx context.Context) ([]model.Review, error)
}

type ReviewController struct {
	Service ReviewService
}

func NewReviewController(s ReviewService) *ReviewController {
	return &ReviewController{Service: s}
}

// GET /meals/:id/reviews
func (ctl *ReviewController) ListForMeal(c *gin.Context) {
	reviews, err := ctl.Service.ListForMeal(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// POST /meals/:id/reviews
func (ctl *ReviewController) Create(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	r, err := ctl.Service.Create(c.Request.Context(), who, c.Param("id"), service.ReviewInput{
		Rating:         req.Rating,
		ReviewText:     req.ReviewText,
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GET /reviews/mine
func (ctl *ReviewController) ListMine(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	reviews, err := ctl.Service.ListMine(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// PATCH /reviews/:id
func (ctl *ReviewController) Update(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	r, err := ctl.Service.Update(c.Request.Context(), who, c.Param("id"), service.ReviewInput{
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DELETE /reviews/:id
func (ctl *ReviewController) Delete(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	if err := ctl.Service.Delete(c.Request.Context(), who, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}

// GET /admin/reviews - admin only
func (ctl *ReviewController) ListAll(c *gin.Context) {
	reviews, err := ctl.Service.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
