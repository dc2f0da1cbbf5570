package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/davidblanco1407/pma-frequency-backend/config"
	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/jwt"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/metrics"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func newJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "middleware-test-secret-2026",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
}

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func authedRouter(mgr *jwt.Manager, revoked RevocationChecker, extra ...gin.HandlerFunc) *gin.Engine {
	return accountRouter(mgr, revoked, nil, extra...)
}

func accountRouter(mgr *jwt.Manager, revoked RevocationChecker, accounts AccountLookup, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuth(mgr, revoked, accounts, zap.NewNop())}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"account_id": c.GetUint(KeyAccountID),
			"username":   c.GetString(KeyUsername),
		})
	})
	r.GET("/p", handlers...)
	return r
}

func bearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestJWTAuth(t *testing.T) {
	mgr := newJWT()
	sub := jwt.Subject{AccountID: 7, Username: "ana"}
	access, err := mgr.GenerateAccessToken(sub)
	require.NoError(t, err)
	refresh, err := mgr.GenerateRefreshToken(sub)
	require.NoError(t, err)

	r := authedRouter(mgr, nil)

	t.Run("missing header", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/p", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"code":40100`)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"code":40100`)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := serve(r, bearer("not-a-jwt"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"code":40102`)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		w := serve(r, bearer(refresh))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"code":40102`)
	})

	t.Run("valid access token", func(t *testing.T) {
		w := serve(r, bearer(access))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"account_id":7,"username":"ana"}`, w.Body.String())
	})

	t.Run("lowercase scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "bearer "+access)
		assert.Equal(t, http.StatusOK, serve(r, req).Code)
	})
}

func TestJWTAuth_Revocation(t *testing.T) {
	mgr := newJWT()
	access, err := mgr.GenerateAccessToken(jwt.Subject{AccountID: 7, Username: "ana"})
	require.NoError(t, err)
	claims, err := mgr.ParseToken(access)
	require.NoError(t, err)

	t.Run("revoked", func(t *testing.T) {
		r := authedRouter(mgr, &fakeRevocations{revoked: map[string]bool{claims.ID: true}})
		w := serve(r, bearer(access))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "revoked")
	})

	t.Run("store failure lets the request through", func(t *testing.T) {
		r := authedRouter(mgr, &fakeRevocations{err: errors.New("redis down")})
		assert.Equal(t, http.StatusOK, serve(r, bearer(access)).Code)
	})
}

func TestRequirePrivileges(t *testing.T) {
	mgr := newJWT()
	token := func(staff, super bool) string {
		s, err := mgr.GenerateAccessToken(jwt.Subject{AccountID: 1, Username: "u", IsStaff: staff, IsSuperuser: super})
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name      string
		staff     bool
		super     bool
		wantStaff int
		wantSuper int
	}{
		{"member", false, false, http.StatusForbidden, http.StatusForbidden},
		{"staff", true, false, http.StatusOK, http.StatusForbidden},
		{"superuser", false, true, http.StatusOK, http.StatusOK},
	}

	staffRouter := authedRouter(mgr, nil, RequireStaff())
	superRouter := authedRouter(mgr, nil, RequireSuperuser())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := token(tt.staff, tt.super)
			assert.Equal(t, tt.wantStaff, serve(staffRouter, bearer(tok)).Code)
			assert.Equal(t, tt.wantSuper, serve(superRouter, bearer(tok)).Code)
		})
	}
}

type fakeAccounts struct {
	accounts map[uint]*model.Account
	err      error
}

func (f *fakeAccounts) GetByID(_ context.Context, id uint) (*model.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func TestJWTAuth_StoredPrivilegesWin(t *testing.T) {
	mgr := newJWT()
	token := func(id uint, staff, super bool) string {
		s, err := mgr.GenerateAccessToken(jwt.Subject{AccountID: id, Username: "u", IsStaff: staff, IsSuperuser: super})
		require.NoError(t, err)
		return s
	}
	// 1 was demoted and 2 promoted after their tokens were issued; 3 is disabled
	accounts := &fakeAccounts{accounts: map[uint]*model.Account{
		1: {IsActive: true},
		2: {IsActive: true, IsStaff: true},
		3: {IsActive: false, IsSuperuser: true},
	}}

	staffRouter := accountRouter(mgr, nil, accounts, RequireStaff())
	superRouter := accountRouter(mgr, nil, accounts, RequireSuperuser())

	assert.Equal(t, http.StatusForbidden, serve(staffRouter, bearer(token(1, true, true))).Code)
	assert.Equal(t, http.StatusForbidden, serve(superRouter, bearer(token(1, true, true))).Code)
	assert.Equal(t, http.StatusOK, serve(staffRouter, bearer(token(2, false, false))).Code)

	w := serve(staffRouter, bearer(token(3, true, true)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40103`)

	w = serve(staffRouter, bearer(token(9, true, false)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "no longer exists")

	failing := accountRouter(mgr, nil, &fakeAccounts{err: errors.New("db down")}, RequireStaff())
	assert.Equal(t, http.StatusInternalServerError, serve(failing, bearer(token(2, true, false))).Code)
}

type fakeLimiter struct {
	hits  map[string]int
	limit int
	err   error
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.hits[key]++
	return f.hits[key] <= limit, nil
}

func TestRateLimit(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	limiter := &fakeLimiter{hits: map[string]int{}}

	r := gin.New()
	r.POST("/login", RateLimit(limiter, 2, time.Minute, m, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"code":42900`)
	assert.Equal(t, 2.0, counterValue(t, reg, "pma_rate_limited_total"))

	for key := range limiter.hits {
		assert.True(t, strings.HasSuffix(key, ":/login"), key)
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			var sum float64
			for _, metric := range f.GetMetric() {
				sum += metric.GetCounter().GetValue()
			}
			return sum
		}
	}
	return 0
}

func TestRateLimit_Disabled(t *testing.T) {
	for name, limiter := range map[string]RateLimiter{
		"nil limiter":     nil,
		"failing limiter": &fakeLimiter{err: errors.New("redis down")},
	} {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.POST("/login", RateLimit(limiter, 1, time.Minute, nil, zap.NewNop()), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			for i := 0; i < 3; i++ {
				assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)).Code)
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/b", func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/b", strings.NewReader(`{"a":"b"}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/b", strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), `"code":41300`)

	// unknown length gets cut off by the reader instead
	req := httptest.NewRequest(http.MethodPost, "/b", strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`))
	req.ContentLength = -1
	assert.Equal(t, http.StatusBadRequest, serve(r, req).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/r", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/r", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/r", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
	w = serve(r, req)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com/"}))
	r.GET("/c", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/c", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/c", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
