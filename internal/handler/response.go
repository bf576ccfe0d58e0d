package handler

import (
	"errors"
	"net/http"
	"strconv"

	"NWord_Counter/internal/ranking"
	"NWord_Counter/internal/service"

	"github.com/gin-gonic/gin"
)

var errInvalidGuild = errors.New("invalid guild id")

// writeError 把 service 层错误映射成 HTTP 状态码；持久化错误已在出错处记录过日志
func writeError(c *gin.Context, err error) {
	var perr *service.PersistenceError
	switch {
	case service.IsValidation(err), errors.Is(err, ranking.ErrUnknownNav), errors.Is(err, ranking.ErrNoPages):
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, ranking.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": err.Error()})
	case errors.Is(err, ranking.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"msg": err.Error()})
	case errors.Is(err, service.ErrPoolClosed), errors.Is(err, ranking.ErrManagerClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"msg": err.Error()})
	case errors.As(err, &perr):
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "storage unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
	}
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
}

// guildID 解析路径里的 guild_id，失败时已经写好响应
func guildID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("guild_id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": errInvalidGuild.Error()})
		return 0, false
	}
	return id, true
}

// queryLimit 缺省为 10，范围由 service 校验
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("limit", strconv.Itoa(service.MinLimit))
	limit, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": service.ErrInvalidLimit.Error()})
		return 0, false
	}
	return limit, true
}

// invocationQuery 命令调用方和可选的 @ 目标
type invocationQuery struct {
	UserID         uint64 `form:"user_id" binding:"required"`
	UserName       string `form:"user_name"`
	GuildName      string `form:"guild_name"`
	TargetID       uint64 `form:"target_id"`
	TargetName     string `form:"target_name"`
	TargetIsMember *bool  `form:"target_is_member"`
}

func bindInvocation(c *gin.Context) (service.Invocation, bool) {
	cid, ok := guildID(c)
	if !ok {
		return service.Invocation{}, false
	}
	var q invocationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return service.Invocation{}, false
	}
	inv := service.Invocation{
		CommunityID:   cid,
		CommunityName: q.GuildName,
		InvokerID:     q.UserID,
		InvokerName:   q.UserName,
	}
	if q.TargetID != 0 {
		inv.Target = &service.Target{
			ID:       q.TargetID,
			Name:     q.TargetName,
			IsMember: q.TargetIsMember == nil || *q.TargetIsMember,
		}
	}
	return inv, true
}
