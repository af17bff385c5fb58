package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dental-booking/config"
	"dental-booking/internal/domain/entity"
	"dental-booking/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: 15 * time.Minute, RefreshExpiry: time.Hour})
}

// echoIdentity writes back what Authenticate put in the context
func echoIdentity(t *testing.T, want uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, want, userID)
		_, ok = GetTokenExpiryFromContext(r.Context())
		assert.True(t, ok)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	svc := testJWT()
	userID := uuid.New()
	access, tokenID, err := svc.GenerateAccessToken(userID, "ayesha@example.com", entity.RoleIDPatient)
	require.NoError(t, err)
	refresh, _, err := svc.GenerateRefreshToken(userID, "ayesha@example.com", entity.RoleIDPatient)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mw := NewAuthMiddleware(svc, client, quietLogger())
	h := mw.Authenticate(echoIdentity(t, userID))

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"valid access token", "Bearer " + access, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + access, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tc.code, rr.Code)
		})
	}

	t.Run("revoked token", func(t *testing.T) {
		require.NoError(t, mr.Set(jwt.RevokedTokenKey(tokenID), "1"))
		defer mr.Del(jwt.RevokedTokenKey(tokenID))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr.SetError("ERR redis unavailable")
		defer mr.SetError("")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestAuthenticate_WithoutRedis(t *testing.T) {
	svc := testJWT()
	userID := uuid.New()
	access, _, err := svc.GenerateAccessToken(userID, "desk@clinic.pk", entity.RoleIDStaff)
	require.NoError(t, err)

	h := NewAuthMiddleware(svc, nil, quietLogger()).Authenticate(echoIdentity(t, userID))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestActorFromContext(t *testing.T) {
	assert.Nil(t, ActorFromContext(context.Background()))

	id := uuid.New()
	actor := ActorFromContext(WithUser(context.Background(), id, entity.RoleIDAdmin))
	require.NotNil(t, actor)
	assert.Equal(t, id, *actor)
}
