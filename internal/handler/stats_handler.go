package handler

import (
	"net/http"

	"NWord_Counter/internal/service"

	"github.com/gin-gonic/gin"
)

// StatsHandler 跨 guild 的统计和排行
type StatsHandler struct {
	svc *service.CommandService
}

func NewStatsHandler(svc *service.CommandService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) Total(c *gin.Context) {
	total, err := h.svc.GetGlobalTotal(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total})
}

func (h *StatsHandler) Records(c *gin.Context) {
	n, err := h.svc.GetTotalRecords(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": n})
}

func (h *StatsHandler) TopCommunities(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	list, err := h.svc.GetTopCommunities(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *StatsHandler) TopMembers(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	list, err := h.svc.GetTopMembersGlobal(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
