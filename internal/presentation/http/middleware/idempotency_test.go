package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmapos-api/internal/infrastructure/memory"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pharmapos-api/pkg/logger"
)

// idempotentServer answers POST /sales with the next status in statuses and
// counts how many requests reached the handler.
type idempotentServer struct {
	router   *gin.Engine
	now      time.Time
	statuses []int
	calls    int
}

func newIdempotentServer(t *testing.T, statuses ...int) *idempotentServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &idempotentServer{
		now:      time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC),
		statuses: statuses,
	}
	repo := memory.NewIdempotencyRepository(memory.NewStore())

	s.router = gin.New()
	s.router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "cashier-1")
		c.Next()
	})
	s.router.POST("/sales", middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: repo,
		Log:  logger.Discard(),
		Now:  func() time.Time { return s.now },
	}), func(c *gin.Context) {
		status := s.statuses[s.calls]
		s.calls++
		c.JSON(status, gin.H{"attempt": strconv.Itoa(s.calls)})
	})
	return s
}

func (s *idempotentServer) post(key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sales", nil)
	req.Header.Set(middleware.IdempotencyKeyHeader, key)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency_RejectionsAreNotReplayed(t *testing.T) {
	cases := []struct {
		name     string
		rejected int
	}{
		{"stock conflict", http.StatusConflict},
		{"insufficient stock", http.StatusUnprocessableEntity},
		{"bad request", http.StatusBadRequest},
		{"server error", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newIdempotentServer(t, tc.rejected, http.StatusCreated, http.StatusCreated)

			if rec := s.post("till-1"); rec.Code != tc.rejected {
				t.Fatalf("first attempt = %d", rec.Code)
			}
			retry := s.post("till-1")
			if retry.Code != http.StatusCreated || retry.Header().Get("X-Idempotency-Replayed") != "" {
				t.Fatalf("retry = %d replayed=%q", retry.Code, retry.Header().Get("X-Idempotency-Replayed"))
			}

			replay := s.post("till-1")
			if replay.Code != http.StatusCreated || replay.Header().Get("X-Idempotency-Replayed") != "true" {
				t.Fatalf("replay = %d replayed=%q", replay.Code, replay.Header().Get("X-Idempotency-Replayed"))
			}
			if replay.Body.String() != retry.Body.String() || s.calls != 2 {
				t.Fatalf("handler ran %d times, replay body %s", s.calls, replay.Body.String())
			}
		})
	}
}

func TestIdempotency_ExpiredKeyIsReplaced(t *testing.T) {
	s := newIdempotentServer(t, http.StatusCreated, http.StatusCreated, http.StatusCreated)

	first := s.post("till-1")
	if first.Code != http.StatusCreated {
		t.Fatalf("first = %d", first.Code)
	}

	// Past the TTL, with no purge in between.
	s.now = s.now.Add(middleware.IdempotencyKeyTTL + time.Minute)
	second := s.post("till-1")
	if second.Header().Get("X-Idempotency-Replayed") != "" || s.calls != 2 {
		t.Fatalf("expired key was replayed")
	}

	third := s.post("till-1")
	if third.Header().Get("X-Idempotency-Replayed") != "true" || s.calls != 2 {
		t.Fatalf("fresh response was not stored: calls=%d", s.calls)
	}
	if third.Body.String() != second.Body.String() {
		t.Fatalf("replayed %s, want %s", third.Body.String(), second.Body.String())
	}
}
