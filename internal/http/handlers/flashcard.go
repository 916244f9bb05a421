package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/EndaleK/Synaptic-sub012/internal/http/response"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/services"
)

type FlashcardHandler struct {
	flashcardService services.FlashcardService
}

func NewFlashcardHandler(flashcardService services.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{flashcardService: flashcardService}
}

// POST /api/flashcards
func (fh *FlashcardHandler) Create(c *gin.Context) {
	var req services.CreateFlashcardInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	card, err := fh.flashcardService.Create(dbctx.Context{Ctx: c.Request.Context()}, req)
	if err != nil {
		response.RespondDomainError(c, "create_flashcard_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"flashcard": card})
}

// GET /api/flashcards?deck=&limit=
func (fh *FlashcardHandler) List(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 0)
	cards, err := fh.flashcardService.List(dbctx.Context{Ctx: c.Request.Context()}, c.Query("deck"), limit)
	if err != nil {
		response.RespondDomainError(c, "list_flashcards_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"flashcards": cards})
}

// GET /api/flashcards/:id
func (fh *FlashcardHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_flashcard_id", err)
		return
	}
	card, err := fh.flashcardService.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondDomainError(c, "get_flashcard_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"flashcard": card})
}

// GET /api/flashcards/:id/schedule
func (fh *FlashcardHandler) GetSchedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_flashcard_id", err)
		return
	}
	sched, err := fh.flashcardService.GetSchedule(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondDomainError(c, "get_schedule_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"schedule": sched})
}

// DELETE /api/flashcards/:id
func (fh *FlashcardHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_flashcard_id", err)
		return
	}
	if err := fh.flashcardService.Delete(dbctx.Context{Ctx: c.Request.Context()}, id); err != nil {
		response.RespondDomainError(c, "delete_flashcard_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
