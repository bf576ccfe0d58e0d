package handler

import (
	"net/http"

	"NWord_Counter/internal/service"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	svc *service.SettingsService
}

func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

func (h *SettingsHandler) List(c *gin.Context) {
	cid, ok := guildID(c)
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), cid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

type updateSettingReq struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
}

func (h *SettingsHandler) Update(c *gin.Context) {
	cid, ok := guildID(c)
	if !ok {
		return
	}
	var req updateSettingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	old, updated, err := h.svc.Update(c.Request.Context(), cid, req.Name, req.Value)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"old": old, "new": updated})
}
