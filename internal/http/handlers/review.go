package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/EndaleK/Synaptic-sub012/internal/http/response"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/services"
	"github.com/EndaleK/Synaptic-sub012/internal/srs"
)

type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// POST /api/reviews
// body: { "flashcard_id": "...", "rating": "again" | "hard" | "good" | "easy" }
func (rh *ReviewHandler) Submit(c *gin.Context) {
	var req struct {
		FlashcardID string `json:"flashcard_id"`
		Rating      string `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	flashcardID, err := uuid.Parse(req.FlashcardID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_flashcard_id", err)
		return
	}
	rating, err := srs.ParseRating(req.Rating)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_rating", err)
		return
	}

	result, err := rh.reviewService.Submit(c.Request.Context(), flashcardID, rating)
	if err != nil {
		response.RespondDomainError(c, "submit_review_failed", err)
		return
	}
	response.RespondOK(c, result)
}

// GET /api/reviews/preview?flashcard_id=&rating=&rating=...
// With no rating params every rating is previewed.
func (rh *ReviewHandler) Preview(c *gin.Context) {
	flashcardID, err := uuid.Parse(c.Query("flashcard_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_flashcard_id", err)
		return
	}
	var ratings []srs.Rating
	for _, raw := range c.QueryArray("rating") {
		rating, err := srs.ParseRating(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_rating", err)
			return
		}
		ratings = append(ratings, rating)
	}

	preview, err := rh.reviewService.Preview(dbctx.Context{Ctx: c.Request.Context()}, flashcardID, ratings)
	if err != nil {
		response.RespondDomainError(c, "preview_review_failed", err)
		return
	}
	response.RespondOK(c, preview)
}

// GET /api/reviews/history?flashcard_id=&limit=
// flashcard_id is optional; without it the whole account history is listed.
func (rh *ReviewHandler) History(c *gin.Context) {
	flashcardID := uuid.Nil
	if raw := c.Query("flashcard_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_flashcard_id", err)
			return
		}
		flashcardID = id
	}
	limit := parseIntQuery(c, "limit", 0)

	rows, err := rh.reviewService.History(dbctx.Context{Ctx: c.Request.Context()}, flashcardID, limit)
	if err != nil {
		response.RespondDomainError(c, "review_history_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"reviews": rows})
}
