package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TusharChow20/project-Chef-Lokal/internal/dto"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/service"
)

type RoleService interface {
	Request(ctx context.Context, caller service.Caller, roleType model.Role, idemKey string) (*model.RoleChangeRequest, error)
	ListMine(ctx context.Context, caller service.Caller) ([]model.RoleChangeRequest, error)
	ListAll(ctx context.Context) ([]model.RoleChangeRequest, error)
	ListSagas(ctx context.Context, limit int64) ([]*model.RoleSaga, error)
	Approve(ctx context.Context, caller service.Caller, requestID string) (*model.RoleSaga, error)
	Reject(ctx context.Context, caller service.Caller, requestID string) (*model.RoleSaga, error)
	Recover(ctx context.Context) (int, error)
}

type RoleController struct {
	Service RoleService
}

func NewRoleController(s RoleService) *RoleController {
	return &RoleController{Service: s}
}

const defaultSagaLimit = 50

// POST /role-requests
func (ctl *RoleController) Request(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req dto.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	r, err := ctl.Service.Request(c.Request.Context(), who, req.RequestType, idempotencyKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GET /role-requests/mine
func (ctl *RoleController) ListMine(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	reqs, err := ctl.Service.ListMine(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// GET /admin/role-requests - admin only
func (ctl *RoleController) ListAll(c *gin.Context) {
	reqs, err := ctl.Service.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// POST /admin/role-requests/:id/approve - admin only
func (ctl *RoleController) Approve(c *gin.Context) {
	ctl.decide(c, ctl.Service.Approve)
}

// POST /admin/role-requests/:id/reject - admin only
func (ctl *RoleController) Reject(c *gin.Context) {
	ctl.decide(c, ctl.Service.Reject)
}

func (ctl *RoleController) decide(c *gin.Context, fn func(context.Context, service.Caller, string) (*model.RoleSaga, error)) {
	who, ok := caller(c)
	if !ok {
		return
	}
	saga, err := fn(c.Request.Context(), who, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saga)
}

// GET /admin/sagas?limit= - admin only
func (ctl *RoleController) ListSagas(c *gin.Context) {
	limit := int64(defaultSagaLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	sagas, err := ctl.Service.ListSagas(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sagas)
}

// POST /admin/sagas/recover - admin only, corre con la credencial del admin
func (ctl *RoleController) Recover(c *gin.Context) {
	n, err := ctl.Service.Recover(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recovered": n})
}
