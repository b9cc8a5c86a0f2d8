package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"bukka/internal/auth"
	"bukka/internal/checkout"
	"bukka/internal/session"
)

func setup(t *testing.T) (*auth.Tokens, *session.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := auth.NewTokens("test-secret-key-for-testing-only", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tokens, session.NewRegistry(session.Config{}, checkout.Deps{}, nil, nil)
}

func protectedRouter(tokens *auth.Tokens, sessions *session.Registry) *gin.Engine {
	router := gin.New()
	router.Use(AuthMiddleware(tokens, sessions))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessionID": CurrentSession(c).ID})
	})
	return router
}

// TestAuthMiddleware_MissingAuthHeader tests the middleware with missing Authorization header
func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	router := protectedRouter(setup(t))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_InvalidAuthFormat tests the middleware with invalid Bearer format
func TestAuthMiddleware_InvalidAuthFormat(t *testing.T) {
	router := protectedRouter(setup(t))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "InvalidFormat")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_InvalidToken tests the middleware with an invalid token
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := protectedRouter(setup(t))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid_token_xyz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_UnknownSession covers a valid token for a swept session.
func TestAuthMiddleware_UnknownSession(t *testing.T) {
	tokens, sessions := setup(t)
	router := protectedRouter(tokens, sessions)

	token, _ := tokens.GenerateToken("no-such-session")
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_ValidToken tests the middleware with a valid token
func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens, sessions := setup(t)
	router := protectedRouter(tokens, sessions)

	s, _ := sessions.Create(context.Background(), session.Options{})
	token, err := tokens.GenerateToken(s.ID)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestRequireMode(t *testing.T) {
	tokens, sessions := setup(t)
	router := gin.New()
	router.Use(AuthMiddleware(tokens, sessions))
	router.GET("/chat-only", RequireMode(session.ModeChat), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for _, tc := range []struct {
		mode session.Mode
		want int
	}{
		{session.ModeChat, http.StatusNoContent},
		{session.ModeShop, http.StatusForbidden},
	} {
		s, _ := sessions.Create(context.Background(), session.Options{Mode: tc.mode})
		token, _ := tokens.GenerateToken(s.ID)

		req := httptest.NewRequest("GET", "/chat-only", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != tc.want {
			t.Errorf("%s: expected status %d, got %d", tc.mode, tc.want, w.Code)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, path := range []string{"/ping", "/boom"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(entries))
	}
	if entries[0].Level != zap.InfoLevel || entries[1].Level != zap.ErrorLevel {
		t.Fatalf("unexpected levels %v, %v", entries[0].Level, entries[1].Level)
	}
	if entries[1].ContextMap()["status"] != int64(http.StatusBadGateway) {
		t.Fatalf("status not logged: %v", entries[1].ContextMap())
	}
}
