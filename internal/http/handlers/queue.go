package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/EndaleK/Synaptic-sub012/internal/http/response"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/services"
)

type QueueHandler struct {
	queueService services.QueueService
}

func NewQueueHandler(queueService services.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

// GET /api/reviews/queue?max_size=
func (qh *QueueHandler) GetQueue(c *gin.Context) {
	maxSize := parseIntQuery(c, "max_size", 0)
	queue, err := qh.queueService.Build(dbctx.Context{Ctx: c.Request.Context()}, maxSize)
	if err != nil {
		response.RespondDomainError(c, "build_queue_failed", err)
		return
	}
	response.RespondOK(c, queue)
}
