package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lifeshield/lifeshield-api/internal/config"
	"github.com/lifeshield/lifeshield-api/internal/identity"
	"github.com/lifeshield/lifeshield-api/internal/resource"
	"github.com/lifeshield/lifeshield-api/internal/tokens"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeVerifier accepts exactly one token value.
type fakeVerifier struct {
	accept string
	id     *identity.Identity
}

func (f *fakeVerifier) Verify(_ context.Context, raw string) (*identity.Identity, error) {
	if raw != f.accept {
		return nil, errors.New("token rejected")
	}
	return f.id, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT:   config.JWTConfig{Secret: "test-secret", TokenTTL: time.Hour},
		Admin: config.AdminConfig{Email: "admin@lifeshield.io"},
	}
}

func mountAuth(cfg *config.Config, v identity.Verifier, customers resource.Store) *gin.Engine {
	r := gin.New()
	NewAuthHandler(cfg, v, customers).Register(r.Group("/"), nil)
	return r
}

func postLogin(t *testing.T, r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/customer/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_MissingIDToken(t *testing.T) {
	r := mountAuth(testConfig(), &fakeVerifier{}, resource.NewMemoryStore())

	w := postLogin(t, r, gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "idToken missing", body["error"])
}

func TestLogin_InvalidToken(t *testing.T) {
	v := &fakeVerifier{accept: "good", id: &identity.Identity{UID: "u1"}}
	store := resource.NewMemoryStore()
	r := mountAuth(testConfig(), v, store)

	w := postLogin(t, r, gin.H{"idToken": "forged"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Invalid ID token", body["error"])

	// no customer record and no token on failure
	docs, total, err := store.List(context.Background(), resource.Query{})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, docs)
}

func TestLogin_IssuesLocalToken(t *testing.T) {
	cfg := testConfig()
	v := &fakeVerifier{accept: "firebase-id-token", id: &identity.Identity{
		UID: "uid-42", Email: "jo@example.com", Name: "Jo",
	}}
	store := resource.NewMemoryStore()
	r := mountAuth(cfg, v, store)

	w := postLogin(t, r, gin.H{"idToken": "firebase-id-token"})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool              `json:"success"`
		Token   string            `json:"token"`
		User    identity.Identity `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "jo@example.com", body.User.Email)

	claims, err := tokens.Parse(cfg.JWT.Secret, body.Token)
	require.NoError(t, err)
	require.Equal(t, "uid-42", claims["uid"])
	require.Equal(t, "jo@example.com", claims["email"])

	// login recorded the customer
	docs, total, err := store.List(context.Background(), resource.Query{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "uid-42", docs[0]["uid"])
}

func TestLogin_UpsertKeepsOneRecordPerUID(t *testing.T) {
	cfg := testConfig()
	v := &fakeVerifier{accept: "tok", id: &identity.Identity{UID: "uid-7", Email: "a@b.c", Name: "A"}}
	store := resource.NewMemoryStore()
	r := mountAuth(cfg, v, store)

	for i := 0; i < 3; i++ {
		w := postLogin(t, r, gin.H{"idToken": "tok"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	_, total, err := store.List(context.Background(), resource.Query{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestProtected_RequiresToken(t *testing.T) {
	r := mountAuth(testConfig(), &fakeVerifier{}, resource.NewMemoryStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/customer/protected", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtected_EchoesClaims(t *testing.T) {
	cfg := testConfig()
	r := mountAuth(cfg, &fakeVerifier{}, resource.NewMemoryStore())

	tok, err := tokens.Generate(cfg.JWT.Secret, &identity.Identity{UID: "u1", Email: "x@y.z", Name: "X"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/customer/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		User    map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "Protected content", body.Message)
	require.Equal(t, "x@y.z", body.User["email"])
}

func TestAdminDelete_ForbiddenForNonAdmin(t *testing.T) {
	cfg := testConfig()
	r := mountAuth(cfg, &fakeVerifier{}, resource.NewMemoryStore())

	tok, err := tokens.Generate(cfg.JWT.Secret, &identity.Identity{UID: "u1", Email: "user@example.com"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("DELETE", "/admin/delete", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminDelete_GrantedForAdmin(t *testing.T) {
	cfg := testConfig()
	r := mountAuth(cfg, &fakeVerifier{}, resource.NewMemoryStore())

	tok, err := tokens.Generate(cfg.JWT.Secret, &identity.Identity{UID: "admin", Email: cfg.Admin.Email}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("DELETE", "/admin/delete", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Admin deletion access granted", body["message"])
}
