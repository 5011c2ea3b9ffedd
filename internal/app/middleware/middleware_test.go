package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/domain/services"
	"immofox-http-service/internal/infrastructure/config"
	"immofox-http-service/internal/test/testdb"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT(t *testing.T) (*services.JWTService, *models.User) {
	t.Helper()
	db := testdb.New(t)
	user := testdb.CreateUser(t, db, models.RoleMieter, "mieter@example.de")
	cfg := &config.Config{JWTSecretKey: "test-secret", JWTTokenLifetime: time.Hour}
	return services.NewJWTService(cfg, db, services.NewMemoryStore()), user
}

func do(r http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	jwtService, user := newJWT(t)
	token, _, err := jwtService.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	r := gin.New()
	r.GET("/me", Authenticate(jwtService), RequireRole(models.RoleMieter), func(c *gin.Context) {
		if CurrentUserID(c) != user.ID || CurrentRole(c) != models.RoleMieter || CurrentClaims(c) == nil {
			c.Status(http.StatusTeapot)
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/vermieter", Authenticate(jwtService), RequireRole(models.RoleVermieter), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name   string
		target string
		header map[string]string
		want   int
	}{
		{"no token", "/me", nil, http.StatusUnauthorized},
		{"garbage", "/me", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
		{"wrong scheme", "/me", map[string]string{"Authorization": "Basic " + token}, http.StatusUnauthorized},
		{"header", "/me", map[string]string{"Authorization": "Bearer " + token}, http.StatusOK},
		{"query without upgrade", "/me?token=" + token, nil, http.StatusUnauthorized},
		{"query on upgrade", "/me?token=" + token, map[string]string{"Connection": "Upgrade", "Upgrade": "websocket"}, http.StatusOK},
		{"wrong role", "/vermieter", map[string]string{"Authorization": "Bearer " + token}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(r, http.MethodGet, tc.target, tc.header); w.Code != tc.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestAuthenticateRejectsRevokedToken(t *testing.T) {
	jwtService, user := newJWT(t)
	token, _, _ := jwtService.GenerateToken(user)
	claims, err := jwtService.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if err := jwtService.Logout(claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	r := gin.New()
	r.GET("/me", Authenticate(jwtService), func(c *gin.Context) { c.Status(http.StatusOK) })
	if w := do(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + token}); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(1, 2)
	now := tb.lastRefill
	if !tb.allowAt(now) || !tb.allowAt(now) {
		t.Fatal("burst of 2 should pass")
	}
	if tb.allowAt(now) {
		t.Fatal("third request should be limited")
	}
	if !tb.allowAt(now.Add(time.Second)) {
		t.Fatal("bucket should refill after one second")
	}
}

func TestIPRateLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/ping", IPRateLimiter(0.001, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := do(r, http.MethodGet, "/ping", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
	if w := do(r, http.MethodGet, "/ping", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}

func TestPathRateLimiterSharesBucketAcrossClients(t *testing.T) {
	r := gin.New()
	r.GET("/checkout", PathRateLimiter(0.001, 2), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/other", PathRateLimiter(0.001, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		if w := do(r, http.MethodGet, "/checkout", map[string]string{"X-Forwarded-For": ip}); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
	if w := do(r, http.MethodGet, "/checkout", map[string]string{"X-Forwarded-For": "10.0.0.3"}); w.Code != http.StatusTooManyRequests {
		t.Fatalf("third client: status = %d, want 429", w.Code)
	}
	if w := do(r, http.MethodGet, "/other", nil); w.Code != http.StatusOK {
		t.Fatalf("other route: status = %d", w.Code)
	}
}

func TestLimiterStoreDropsIdleBuckets(t *testing.T) {
	s := newLimiterStore(time.Millisecond)
	s.get("a", 1, 1)
	time.Sleep(5 * time.Millisecond)
	s.get("b", 1, 1)
	if n := s.size(); n != 1 {
		t.Fatalf("size = %d, want 1", n)
	}
}

func TestCachePerUser(t *testing.T) {
	PurgeCache()
	calls := 0
	r := gin.New()
	r.GET("/plans", func(c *gin.Context) {
		if c.GetHeader("X-User") == "2" {
			c.Set(ContextUserID, uint(2))
		} else {
			c.Set(ContextUserID, uint(1))
		}
	}, Cache(CacheConfig{Expiration: time.Minute}), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	first := do(r, http.MethodGet, "/plans", nil)
	second := do(r, http.MethodGet, "/plans", nil)
	if calls != 1 {
		t.Fatalf("handler called %d times, want 1", calls)
	}
	if second.Header().Get("X-Cache") != "HIT" || second.Body.String() != first.Body.String() {
		t.Fatalf("second response not served from cache: %s", second.Body.String())
	}

	do(r, http.MethodGet, "/plans", map[string]string{"X-User": "2"})
	if calls != 2 {
		t.Fatalf("other user must not get a cached response, calls = %d", calls)
	}
	if stats := CacheStats(); stats["total_items"].(int) < 2 {
		t.Fatalf("stats = %v", stats)
	}
}
