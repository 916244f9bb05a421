package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/EndaleK/Synaptic-sub012/internal/domain/aggregates"
	"github.com/EndaleK/Synaptic-sub012/internal/domain/learning"
	"github.com/EndaleK/Synaptic-sub012/internal/http/response"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/dbctx"
	"github.com/EndaleK/Synaptic-sub012/internal/services"
	"github.com/EndaleK/Synaptic-sub012/internal/srs"
)

func newReviewTestRouter(svc services.ReviewService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewReviewHandler(svc)
	r.POST("/api/reviews", h.Submit)
	r.GET("/api/reviews/preview", h.Preview)
	r.GET("/api/reviews/history", h.History)
	return r
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return env.Error.Code
}

func TestReviewSubmitRespondsWithResult(t *testing.T) {
	cardID := uuid.New()
	due := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	svc := &fakeReviewService{
		result: &services.ReviewResult{
			NewIntervalDays: 6,
			NewDueDate:      due,
			NewEaseFactor:   2.5,
			NewMaturity:     srs.MaturityLearning,
			TimesReviewed:   2,
			SuccessRate:     1,
		},
	}
	r := newReviewTestRouter(svc)

	body := `{"flashcard_id":"` + cardID.String() + `","rating":"good"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if svc.lastFlashcardID != cardID {
		t.Fatalf("service saw wrong card: got=%s want=%s", svc.lastFlashcardID, cardID)
	}
	if svc.lastRating != srs.RatingGood {
		t.Fatalf("service saw wrong rating: got=%v want=%v", svc.lastRating, srs.RatingGood)
	}

	var got services.ReviewResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.NewIntervalDays != 6 {
		t.Fatalf("new_interval_days: got=%d want=6", got.NewIntervalDays)
	}
	if !got.NewDueDate.Equal(due) {
		t.Fatalf("new_due_date: got=%v want=%v", got.NewDueDate, due)
	}
	if got.NewMaturity != srs.MaturityLearning {
		t.Fatalf("new_maturity: got=%q want=%q", got.NewMaturity, srs.MaturityLearning)
	}
}

func TestReviewSubmitRejectsBadInput(t *testing.T) {
	svc := &fakeReviewService{}
	r := newReviewTestRouter(svc)

	cases := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed json", `{`, "invalid_request"},
		{"bad uuid", `{"flashcard_id":"nope","rating":"good"}`, "invalid_flashcard_id"},
		{"bad rating", `{"flashcard_id":"` + uuid.New().String() + `","rating":"perfect"}`, "invalid_rating"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusBadRequest)
			}
			if got := decodeErrorCode(t, rec); got != tc.wantCode {
				t.Fatalf("unexpected error code: got=%q want=%q", got, tc.wantCode)
			}
		})
	}
	if svc.submitCalls != 0 {
		t.Fatalf("service should not be called on bad input: calls=%d", svc.submitCalls)
	}
}

func TestReviewSubmitMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			"missing card",
			domainagg.NewError(domainagg.CodeNotFound, "Learning.Review.Submit", "flashcard not found", nil),
			http.StatusNotFound,
			"not_found",
		},
		{
			"contention exhausted",
			domainagg.NewError(domainagg.CodeRetryable, "Learning.Review.Submit", "too much contention", nil),
			http.StatusServiceUnavailable,
			"retryable",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newReviewTestRouter(&fakeReviewService{err: tc.err})

			body := `{"flashcard_id":"` + uuid.New().String() + `","rating":"again"}`
			req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tc.wantStatus)
			}
			if got := decodeErrorCode(t, rec); got != tc.wantCode {
				t.Fatalf("unexpected error code: got=%q want=%q", got, tc.wantCode)
			}
		})
	}
}

func TestReviewPreviewParsesRatings(t *testing.T) {
	cardID := uuid.New()
	svc := &fakeReviewService{
		preview: &services.ReviewPreview{FlashcardID: cardID},
	}
	r := newReviewTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/reviews/preview?flashcard_id="+cardID.String()+"&rating=good&rating=easy", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	want := []srs.Rating{srs.RatingGood, srs.RatingEasy}
	if len(svc.lastRatings) != len(want) {
		t.Fatalf("unexpected ratings: got=%v want=%v", svc.lastRatings, want)
	}
	for i := range want {
		if svc.lastRatings[i] != want[i] {
			t.Fatalf("ratings[%d]: got=%v want=%v", i, svc.lastRatings[i], want[i])
		}
	}

	// No rating params: the service decides the full spread.
	req = httptest.NewRequest(http.MethodGet, "/api/reviews/preview?flashcard_id="+cardID.String(), nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}
	if svc.lastRatings != nil {
		t.Fatalf("expected nil ratings passthrough, got=%v", svc.lastRatings)
	}
}

func TestReviewPreviewRequiresFlashcardID(t *testing.T) {
	r := newReviewTestRouter(&fakeReviewService{})

	req := httptest.NewRequest(http.MethodGet, "/api/reviews/preview", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
	if got := decodeErrorCode(t, rec); got != "invalid_flashcard_id" {
		t.Fatalf("unexpected error code: got=%q", got)
	}
}

func TestReviewHistoryQueryHandling(t *testing.T) {
	cardID := uuid.New()
	svc := &fakeReviewService{rows: []*learning.ReviewLog{}}
	r := newReviewTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/reviews/history", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	if svc.lastFlashcardID != uuid.Nil {
		t.Fatalf("expected nil card filter, got=%s", svc.lastFlashcardID)
	}
	if svc.lastLimit != 0 {
		t.Fatalf("expected default limit 0, got=%d", svc.lastLimit)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/reviews/history?flashcard_id="+cardID.String()+"&limit=5", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}
	if svc.lastFlashcardID != cardID {
		t.Fatalf("card filter: got=%s want=%s", svc.lastFlashcardID, cardID)
	}
	if svc.lastLimit != 5 {
		t.Fatalf("limit: got=%d want=5", svc.lastLimit)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/reviews/history?flashcard_id=garbage", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for bad id: got=%d", rec.Code)
	}
}

type fakeReviewService struct {
	result  *services.ReviewResult
	preview *services.ReviewPreview
	rows    []*learning.ReviewLog
	err     error

	submitCalls     int
	lastFlashcardID uuid.UUID
	lastRating      srs.Rating
	lastRatings     []srs.Rating
	lastLimit       int
}

func (f *fakeReviewService) Submit(_ context.Context, flashcardID uuid.UUID, rating srs.Rating) (*services.ReviewResult, error) {
	f.submitCalls++
	f.lastFlashcardID = flashcardID
	f.lastRating = rating
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeReviewService) Preview(_ dbctx.Context, flashcardID uuid.UUID, ratings []srs.Rating) (*services.ReviewPreview, error) {
	f.lastFlashcardID = flashcardID
	f.lastRatings = ratings
	if f.err != nil {
		return nil, f.err
	}
	return f.preview, nil
}

func (f *fakeReviewService) History(_ dbctx.Context, flashcardID uuid.UUID, limit int) ([]*learning.ReviewLog, error) {
	f.lastFlashcardID = flashcardID
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}
