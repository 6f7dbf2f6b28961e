package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TusharChow20/project-Chef-Lokal/internal/dto"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/service"
)

type UserService interface {
	Profile(ctx context.Context, caller service.Caller) (*model.User, error)
	Role(ctx context.Context, caller service.Caller) (model.Role, error)
	UpdateProfile(ctx context.Context, caller service.Caller, in service.ProfileInput) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	MarkFraud(ctx context.Context, caller service.Caller, email string) (*model.User, error)
}

type UserController struct {
	Service UserService
}

func NewUserController(s UserService) *UserController {
	return &UserController{Service: s}
}

// GET /me
func (ctl *UserController) Profile(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	u, err := ctl.Service.Profile(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /me/role
func (ctl *UserController) Role(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	role, err := ctl.Service.Role(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role})
}

// PATCH /me - JSON o multipart con la foto en "photo"
func (ctl *UserController) UpdateProfile(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req dto.ProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	photo, name, err := formFile(c, "photo")
	if err != nil {
		badRequest(c, err)
		return
	}

	in := service.ProfileInput{DisplayName: req.DisplayName, Address: req.Address}
	if photo != nil {
		defer photo.Close()
		in.Photo = photo
		in.PhotoName = name
	}

	u, err := ctl.Service.UpdateProfile(c.Request.Context(), who, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /admin/users - admin only
func (ctl *UserController) ListAll(c *gin.Context) {
	users, err := ctl.Service.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// PATCH /admin/users/:email/fraud - admin only
func (ctl *UserController) MarkFraud(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	u, err := ctl.Service.MarkFraud(c.Request.Context(), who, c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
