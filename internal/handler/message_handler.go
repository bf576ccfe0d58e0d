package handler

import (
	"context"
	"errors"
	"net/http"

	"NWord_Counter/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	counter *service.CounterService
	pool    *service.WorkerPool
}

func NewMessageHandler(counter *service.CounterService, pool *service.WorkerPool) *MessageHandler {
	return &MessageHandler{counter: counter, pool: pool}
}

// Handle 同步处理一条消息，返回计数和回复
func (h *MessageHandler) Handle(c *gin.Context) {
	var ev service.MessageEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		badRequest(c)
		return
	}
	det, err := h.counter.HandleMessage(c.Request.Context(), ev)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, det)
}

type batchReq struct {
	Messages []service.MessageEvent `json:"messages" binding:"required,min=1,dive"`
}

// Batch 回填历史消息：入队后异步计数，不返回回复
func (h *MessageHandler) Batch(c *gin.Context) {
	var req batchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	accepted := 0
	for _, ev := range req.Messages {
		ev := ev
		err := h.pool.Submit(c.Request.Context(), func(ctx context.Context) error {
			_, err := h.counter.HandleMessage(ctx, ev)
			return err
		})
		if err != nil {
			if errors.Is(err, service.ErrPoolClosed) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"msg": err.Error(), "accepted": accepted})
				return
			}
			writeError(c, err)
			return
		}
		accepted++
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": accepted})
}
