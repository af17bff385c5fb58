package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dental-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoleMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		name  string
		guard func(http.Handler) http.Handler
		role  int
		code  int
	}{
		{"admin passes admin", RequireAdmin, entity.RoleIDAdmin, http.StatusOK},
		{"staff blocked from admin", RequireAdmin, entity.RoleIDStaff, http.StatusForbidden},
		{"staff passes front desk", RequireStaff, entity.RoleIDStaff, http.StatusOK},
		{"admin passes front desk", RequireStaff, entity.RoleIDAdmin, http.StatusOK},
		{"patient blocked from front desk", RequireStaff, entity.RoleIDPatient, http.StatusForbidden},
		{"patient passes patient", RequirePatient, entity.RoleIDPatient, http.StatusOK},
		{"staff blocked from patient", RequirePatient, entity.RoleIDStaff, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithUser(req.Context(), uuid.New(), tc.role))
			rr := httptest.NewRecorder()
			tc.guard(ok).ServeHTTP(rr, req)
			assert.Equal(t, tc.code, rr.Code)
		})
	}

	t.Run("no role in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background())
		rr := httptest.NewRecorder()
		RequireStaff(ok).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := NewCORSMiddleware("https://clinic.example").Handle(next)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://clinic.example", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)

	rr = httptest.NewRecorder()
	NewCORSMiddleware("").Handle(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
