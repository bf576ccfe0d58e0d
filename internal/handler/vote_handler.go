package handler

import (
	"net/http"

	"NWord_Counter/internal/service"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	svc *service.VoteService
}

func NewVoteHandler(svc *service.VoteService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Cast 投票/撤票接口
func (h *VoteHandler) Cast(c *gin.Context) {
	cid, ok := guildID(c)
	if !ok {
		return
	}
	var req service.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	req.CommunityID = cid

	out, err := h.svc.CastVote(c.Request.Context(), req)
	if err != nil {
		if service.IsValidation(err) {
			writeError(c, err)
			return
		}
		// 持久化失败也返回结果，status 为 error
		c.JSON(http.StatusInternalServerError, gin.H{"outcome": out, "message": out.Message()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": out, "message": out.Message()})
}
