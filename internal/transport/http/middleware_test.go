package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pixelforge-server-go/internal/domain/auth"
	"pixelforge-server-go/internal/platform/errors"
)

type fakePrincipals struct {
	byID map[uint]*auth.Principal
}

func (f *fakePrincipals) PrincipalByID(ctx context.Context, id uint) (*auth.Principal, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, errors.New(errors.KindNotFound, "test.principals", "user not found")
	}
	return p, nil
}

func setupAuthRouter(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	principals := &fakePrincipals{byID: map[uint]*auth.Principal{
		1: {ID: 1, Email: "admin@example.com", Role: auth.RoleAdmin},
		2: {ID: 2, Email: "user@example.com", Role: auth.RoleUser},
		3: {ID: 3, Email: "locked@example.com", Role: auth.RoleAdmin, Disabled: true},
	}}
	gate := auth.NewGate(tokens, principals)

	r := gin.New()
	admin := r.Group("/admin")
	admin.Use(AuthMiddleware(gate, nil), AdminMiddleware())
	admin.GET("/ping", func(c *gin.Context) {
		principal, _ := PrincipalFrom(c)
		RespondSuccess(c, http.StatusOK, gin.H{"email": principal.Email}, "")
	})

	return r, tokens
}

func doRequest(t *testing.T, r *gin.Engine, token string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest("GET", "/admin/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminRouteRejectsMissingToken(t *testing.T) {
	r, _ := setupAuthRouter(t)

	w := doRequest(t, r, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestAdminRouteRejectsGarbageToken(t *testing.T) {
	r, _ := setupAuthRouter(t)

	w := doRequest(t, r, "not-a-jwt")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestAdminRouteRejectsNonAdminRole(t *testing.T) {
	r, tokens := setupAuthRouter(t)

	token, err := tokens.Generate(2, "user@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	w := doRequest(t, r, token)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}

func TestAdminRouteRejectsDisabledAccount(t *testing.T) {
	r, tokens := setupAuthRouter(t)

	token, err := tokens.Generate(3, "locked@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	w := doRequest(t, r, token)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}

func TestAdminRouteRejectsDeletedAccount(t *testing.T) {
	r, tokens := setupAuthRouter(t)

	token, err := tokens.Generate(99, "ghost@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	w := doRequest(t, r, token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestAdminRouteAllowsAdmin(t *testing.T) {
	r, tokens := setupAuthRouter(t)

	token, err := tokens.Generate(1, "admin@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	w := doRequest(t, r, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Errorf("Expected success response, got %+v", resp)
	}
	data, ok := resp.Data.(map[string]any)
	if !ok || data["email"] != "admin@example.com" {
		t.Errorf("Unexpected data: %v", resp.Data)
	}
}
