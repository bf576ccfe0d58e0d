package handler

import (
	"net/http"

	"NWord_Counter/internal/ranking"
	"NWord_Counter/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionHandler guild 排行的翻页会话
type SessionHandler struct {
	svc      *service.CommandService
	sessions *ranking.SessionManager
}

func NewSessionHandler(svc *service.CommandService, sessions *ranking.SessionManager) *SessionHandler {
	return &SessionHandler{svc: svc, sessions: sessions}
}

type openSessionReq struct {
	GuildID uint64 `json:"guild_id" binding:"required"`
	UserID  uint64 `json:"user_id" binding:"required"`
	Limit   int    `json:"limit"`
}

// Open 查询排行并打开会话，停在第一页
func (h *SessionHandler) Open(c *gin.Context) {
	var req openSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if req.Limit == 0 {
		req.Limit = service.MinLimit
	}
	r, err := h.svc.GetCommunityRankings(c.Request.Context(), req.GuildID, req.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	view, err := h.sessions.Open(req.UserID, r.Pages)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": view, "total": r.Total})
}

type navigateReq struct {
	UserID uint64      `json:"user_id" binding:"required"`
	Action ranking.Nav `json:"action" binding:"required,oneof=first prev next last"`
}

// Navigate 只有会话创建者可以翻页
func (h *SessionHandler) Navigate(c *gin.Context) {
	var req navigateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	view, err := h.sessions.Navigate(c.Param("id"), req.UserID, req.Action)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": view})
}

func (h *SessionHandler) Get(c *gin.Context) {
	view, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": view})
}
