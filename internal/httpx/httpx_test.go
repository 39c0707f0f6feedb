package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/pos-restaurante/internal/apperr"
	"github.com/MikeMC777/pos-restaurante/internal/authz"
	"github.com/MikeMC777/pos-restaurante/internal/logging"
	"github.com/MikeMC777/pos-restaurante/internal/staff"
)

func init() { gin.SetMode(gin.TestMode) }

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("order %w", apperr.ErrNotFound), http.StatusNotFound},
		{errors.Join(apperr.ErrConflict, errors.New("dup")), http.StatusConflict},
		{fmt.Errorf("closed: %w", apperr.ErrInvalidState), http.StatusConflict},
		{fmt.Errorf("%w: bad", apperr.ErrValidation), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Fatalf("Status(%v)=%d want %d", tc.err, got, tc.want)
		}
	}
}

func TestAbortHidesInternalErrors(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) { Abort(c, errors.New("pq: connection refused")) })
	r.GET("/missing", func(c *gin.Context) { Abort(c, fmt.Errorf("order %w", apperr.ErrNotFound)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError || w.Body.String() != `{"error":"internal error"}` {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if w.Code != http.StatusNotFound || w.Body.String() != `{"error":"order not found"}` {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(logging.Discard()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ridKey)) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" || w.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("rid not propagated: body=%s header=%s", w.Body.String(), w.Header().Get("X-Request-ID"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Fatalf("expected generated uuid, got %q", w.Header().Get("X-Request-ID"))
	}
}

// asStaff pone un miembro del personal en el contexto, como RequireStaff.
func asStaff(role staff.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(staffKey, &staff.Staff{ID: "s-" + string(role), Username: string(role), Role: role, IsActive: true})
		c.Next()
	}
}

func TestRequire(t *testing.T) {
	p := authz.Default()
	cases := []struct {
		role staff.Role
		want int
	}{
		{staff.RoleCashier, http.StatusOK},
		{staff.RoleAdmin, http.StatusOK},
		{staff.RoleWaiter, http.StatusForbidden},
		{staff.RoleKitchen, http.StatusForbidden},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/cashier", asStaff(tc.role), Require(p, authz.OrderCashier), func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cashier", nil))
		if w.Code != tc.want {
			t.Fatalf("role=%s status=%d want %d body=%s", tc.role, w.Code, tc.want, w.Body.String())
		}
	}

	r := gin.New()
	r.GET("/cashier", Require(p, authz.OrderCashier), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cashier", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status=%d", w.Code)
	}
}

func TestIdempotency(t *testing.T) {
	store := NewMemoryIdempotency(time.Minute)
	fail := true
	r := gin.New()
	r.POST("/orders", asStaff(staff.RoleWaiter), Idempotency(store, logging.Discard()), func(c *gin.Context) {
		if fail {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusCreated)
	})
	do := func(key string) int {
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	// un fallo libera la llave
	if got := do("k1"); got != http.StatusBadRequest {
		t.Fatalf("first status=%d", got)
	}
	fail = false
	if got := do("k1"); got != http.StatusCreated {
		t.Fatalf("retry status=%d", got)
	}
	if got := do("k1"); got != http.StatusConflict {
		t.Fatalf("duplicate status=%d", got)
	}
	if got := do(""); got != http.StatusCreated {
		t.Fatalf("no key status=%d", got)
	}
}

func TestMemoryIdempotencyExpires(t *testing.T) {
	s := NewMemoryIdempotency(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ctx := context.Background()
	if seen, _ := s.Seen(ctx, "k"); seen {
		t.Fatal("fresh key reported as seen")
	}
	if seen, _ := s.Seen(ctx, "k"); !seen {
		t.Fatal("claimed key not seen")
	}
	now = now.Add(2 * time.Minute)
	if seen, _ := s.Seen(ctx, "k"); seen {
		t.Fatal("expired key still seen")
	}
}
