package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TusharChow20/project-Chef-Lokal/internal/service"
)

type StatsService interface {
	Platform(ctx context.Context) (service.PlatformStats, error)
}

type StatsController struct {
	Service StatsService
}

func NewStatsController(s StatsService) *StatsController {
	return &StatsController{Service: s}
}

// GET /admin/stats - admin only
func (ctl *StatsController) Platform(c *gin.Context) {
	stats, err := ctl.Service.Platform(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
