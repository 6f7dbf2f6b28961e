package controller

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TusharChow20/project-Chef-Lokal/internal/dto"
	"github.com/TusharChow20/project-Chef-Lokal/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.SignedIn, error)
	Login(ctx context.Context, email, password string) (*service.SignedIn, error)
	Logout(sessionID string) bool
}

type AuthController struct {
	Service AuthService
}

func NewAuthController(s AuthService) *AuthController {
	return &AuthController{Service: s}
}

// POST /auth/register - JSON o multipart con la foto en "photo"
func (ctl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	photo, name, err := formFile(c, "photo")
	if err != nil {
		badRequest(c, err)
		return
	}
	if photo != nil {
		defer photo.Close()
	}

	in := service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Address:   req.Address,
		PhotoURL:  req.PhotoURL,
		PhotoName: name,
	}
	if photo != nil {
		in.Photo = photo
	}

	out, err := ctl.Service.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// POST /auth/login
func (ctl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	out, err := ctl.Service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /auth/logout - requiere token
func (ctl *AuthController) Logout(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	ctl.Service.Logout(who.SessionID)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// formFile abre el archivo del campo si vino. Sin archivo devuelve nil.
func formFile(c *gin.Context, field string) (io.ReadCloser, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, "", nil
		}
		return nil, "", err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	return f, fh.Filename, nil
}
