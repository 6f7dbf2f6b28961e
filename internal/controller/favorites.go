package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TusharChow20/project-Chef-Lokal/internal/dto"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/service"
)

type FavoriteService interface {
	Add(ctx context.Context, caller service.Caller, mealID string) (*model.Favorite, error)
	Remove(ctx context.Context, caller service.Caller, id string) error
	List(ctx context.Context, caller service.Caller) ([]model.Favorite, error)
}

type FavoriteController struct {
	Service FavoriteService
}

func NewFavoriteController(s FavoriteService) *FavoriteController {
	return &FavoriteController{Service: s}
}

// GET /favorites
func (ctl *FavoriteController) List(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	favs, err := ctl.Service.List(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, favs)
}

// POST /favorites
func (ctl *FavoriteController) Add(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req dto.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	fav, err := ctl.Service.Add(c.Request.Context(), who, req.MealID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fav)
}

// DELETE /favorites/:id
func (ctl *FavoriteController) Remove(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	if err := ctl.Service.Remove(c.Request.Context(), who, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "favorite removed"})
}
