package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"persol/internal/domain"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/middleware"
	"persol/internal/pkg/token"
)

// MockTokenVerifier é uma implementação mock da interface TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(tokenString string) (domain.Claims, error) {
	args := m.Called(tokenString)
	return args.Get(0).(domain.Claims), args.Error(1)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) domain.APIResponse {
	t.Helper()
	var body domain.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func okHandler(called *bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*called = true
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if ok {
			w.Header().Set("X-User", claims.Email)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestRequireAuthenticated_NoToken(t *testing.T) {
	verifier := new(MockTokenVerifier)
	gate := middleware.NewGate(verifier, logger.NewNop())

	for _, header := range []string{"", "Basic abc", "bearer abc", "Bearer ", "Bearer a b"} {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		gate.RequireAuthenticated(okHandler(&called))(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.False(t, called)
		body := decodeBody(t, rec)
		assert.False(t, body.Success)
		assert.Equal(t, "Acesso negado. Nenhum token fornecido.", body.Message)
	}
	verifier.AssertNotCalled(t, "Verify", mock.Anything)
}

func TestRequireAuthenticated_InvalidTokenCarriesReason(t *testing.T) {
	verifier := new(MockTokenVerifier)
	verifier.On("Verify", "expirado").Return(domain.Claims{}, token.ErrExpired)
	gate := middleware.NewGate(verifier, logger.NewNop())

	called := false
	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer expirado")
	rec := httptest.NewRecorder()

	gate.RequireAuthenticated(okHandler(&called))(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
	body := decodeBody(t, rec)
	assert.Contains(t, body.Message, "Token inválido")
	assert.Contains(t, body.Message, token.ErrExpired.Error())
	assert.Equal(t, "UNAUTHORIZED", body.Category)
}

func TestRequireAuthenticated_AttachesClaims(t *testing.T) {
	verifier := new(MockTokenVerifier)
	verifier.On("Verify", "valido").Return(domain.Claims{ID: 3, Email: "ana@example.com", Role: domain.RoleCustomer}, nil)
	gate := middleware.NewGate(verifier, logger.NewNop())

	called := false
	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer valido")
	rec := httptest.NewRecorder()

	gate.RequireAuthenticated(okHandler(&called))(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ana@example.com", rec.Header().Get("X-User"))
}

func TestRequireAdmin_FailsClosedForNonAdminRoles(t *testing.T) {
	for _, role := range []domain.UserRole{domain.RoleCustomer, domain.RoleStaff, "Admin", "root", ""} {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", "tok").Return(domain.Claims{ID: 1, Email: "x@y.z", Role: role}, nil)
		gate := middleware.NewGate(verifier, logger.NewNop())

		called := false
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()

		gate.RequireAdmin(okHandler(&called))(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code, string(role))
		assert.False(t, called)
		assert.Equal(t, "FORBIDDEN", decodeBody(t, rec).Category)
	}
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	verifier := new(MockTokenVerifier)
	verifier.On("Verify", "tok").Return(domain.Claims{ID: 1, Email: "admin@persol.com", Role: domain.RoleAdmin}, nil)
	gate := middleware.NewGate(verifier, logger.NewNop())

	called := false
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	gate.RequireAdmin(okHandler(&called))(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAdmin_InvalidTokenIsUnauthorizedNotForbidden(t *testing.T) {
	verifier := new(MockTokenVerifier)
	verifier.On("Verify", "tok").Return(domain.Claims{}, token.ErrBadSignature)
	gate := middleware.NewGate(verifier, logger.NewNop())

	called := false
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	gate.RequireAdmin(okHandler(&called))(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireRoles_StaffOrAdmin(t *testing.T) {
	verifier := new(MockTokenVerifier)
	verifier.On("Verify", "staff").Return(domain.Claims{ID: 5, Role: domain.RoleStaff}, nil)
	verifier.On("Verify", "cliente").Return(domain.Claims{ID: 6, Role: domain.RoleCustomer}, nil)
	gate := middleware.NewGate(verifier, logger.NewNop())
	guard := gate.RequireRoles(domain.RoleStaff, domain.RoleAdmin)

	called := false
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/products/1/stock", nil)
	req.Header.Set("Authorization", "Bearer staff")
	rec := httptest.NewRecorder()
	guard(okHandler(&called))(rec, req)
	assert.True(t, called)

	called = false
	req = httptest.NewRequest(http.MethodPost, "/v1/admin/products/1/stock", nil)
	req.Header.Set("Authorization", "Bearer cliente")
	rec = httptest.NewRecorder()
	guard(okHandler(&called))(rec, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
