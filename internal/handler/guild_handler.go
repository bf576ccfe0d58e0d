package handler

import (
	"net/http"

	"NWord_Counter/internal/service"

	"github.com/gin-gonic/gin"
)

// GuildHandler guild 内的查询命令
type GuildHandler struct {
	svc *service.CommandService
}

func NewGuildHandler(svc *service.CommandService) *GuildHandler {
	return &GuildHandler{svc: svc}
}

func (h *GuildHandler) Count(c *gin.Context) {
	inv, ok := bindInvocation(c)
	if !ok {
		return
	}
	n, err := h.svc.GetCount(c.Request.Context(), inv)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guild_id": inv.CommunityID, "user_id": subjectID(inv), "count": n})
}

func (h *GuildHandler) Total(c *gin.Context) {
	cid, ok := guildID(c)
	if !ok {
		return
	}
	total, err := h.svc.GetCommunityTotal(c.Request.Context(), cid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guild_id": cid, "total": total})
}

func (h *GuildHandler) Rankings(c *gin.Context) {
	cid, ok := guildID(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	r, err := h.svc.GetCommunityRankings(c.Request.Context(), cid, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *GuildHandler) Verified(c *gin.Context) {
	cid, ok := guildID(c)
	if !ok {
		return
	}
	names, err := h.svc.ListVerifiedMembers(c.Request.Context(), cid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": nonNil(names)})
}

func (h *GuildHandler) PassHolders(c *gin.Context) {
	cid, ok := guildID(c)
	if !ok {
		return
	}
	names, err := h.svc.ListPassHolders(c.Request.Context(), cid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": nonNil(names)})
}

// Passes 查询 pass 数，成员不存在时会创建
func (h *GuildHandler) Passes(c *gin.Context) {
	inv, ok := bindInvocation(c)
	if !ok {
		return
	}
	n, err := h.svc.GetPasses(c.Request.Context(), inv)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guild_id": inv.CommunityID, "user_id": subjectID(inv), "passes": n})
}

type grantReq struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// GrantPasses 给 target（缺省为调用者）增加 pass
func (h *GuildHandler) GrantPasses(c *gin.Context) {
	inv, ok := bindInvocation(c)
	if !ok {
		return
	}
	var req grantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	n, err := h.svc.GrantPasses(c.Request.Context(), inv, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guild_id": inv.CommunityID, "user_id": subjectID(inv), "passes": n})
}

func subjectID(inv service.Invocation) uint64 {
	if inv.Target != nil {
		return inv.Target.ID
	}
	return inv.InvokerID
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
