package handler

import (
	"net/http"

	"tradenet/internal/service"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	svc service.StatsService
}

func NewStatisticsHandler(svc service.StatsService) *StatisticsHandler {
	return &StatisticsHandler{svc: svc}
}

func (h *StatisticsHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
