package middleware

import (
	"context"
	"net/http"
	"strings"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/respond"
)

// ContextKey é um tipo não exportável de chave de contexto, para não colidir com outras chaves.
type ContextKey int

const (
	UserClaimsKey ContextKey = iota
)

const bearerPrefix = "Bearer "

// TokenVerifier define o contrato de verificação necessário para o gate.
type TokenVerifier interface {
	Verify(tokenString string) (domain.Claims, error)
}

// Gate liga o header Authorization ao serviço de tokens e aplica a autorização por papel.
type Gate struct {
	tokens TokenVerifier
	logger logger.Logger
}

// NewGate cria o gate de acesso.
func NewGate(tokens TokenVerifier, log logger.Logger) *Gate {
	return &Gate{tokens: tokens, logger: log}
}

// Authenticate extrai e verifica o bearer token da requisição.
// Header ausente ou fora do formato "Bearer <token>" -> 401 sem token;
// qualquer falha do serviço de tokens -> 401 com o motivo.
func (g *Gate) Authenticate(r *http.Request) (domain.Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return domain.Claims{}, apperror.NewUnauthorizedError("Acesso negado. Nenhum token fornecido.")
	}

	tokenString := strings.TrimSpace(authHeader[len(bearerPrefix):])
	if tokenString == "" || strings.ContainsAny(tokenString, " \t") {
		return domain.Claims{}, apperror.NewUnauthorizedError("Acesso negado. Nenhum token fornecido.")
	}

	claims, err := g.tokens.Verify(tokenString)
	if err != nil {
		return domain.Claims{}, apperror.NewInvalidTokenError(err)
	}
	return claims, nil
}

// AuthorizeAdmin exige um token válido com papel admin. Qualquer outro papel,
// inclusive desconhecido, é recusado com 403.
func (g *Gate) AuthorizeAdmin(r *http.Request) (domain.Claims, error) {
	return g.authorize(r, domain.RoleAdmin)
}

func (g *Gate) authorize(r *http.Request, allowed ...domain.UserRole) (domain.Claims, error) {
	claims, err := g.Authenticate(r)
	if err != nil {
		return domain.Claims{}, err
	}
	for _, role := range allowed {
		if claims.Role == role {
			return claims, nil
		}
	}
	if len(allowed) == 1 && allowed[0] == domain.RoleAdmin {
		return domain.Claims{}, apperror.NewForbiddenError("Proibido. Acesso de administrador necessário.")
	}
	return domain.Claims{}, apperror.NewForbiddenError("Acesso negado. Você não tem a permissão necessária.")
}

// RequireAuthenticated encerra a requisição em caso de falha; em caso de sucesso anexa as claims ao contexto.
func (g *Gate) RequireAuthenticated(next http.HandlerFunc) http.HandlerFunc {
	return g.guard(next, g.Authenticate)
}

// RequireAdmin é RequireAuthenticated + papel admin.
func (g *Gate) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return g.guard(next, g.AuthorizeAdmin)
}

// RequireRoles aceita qualquer um dos papéis informados.
func (g *Gate) RequireRoles(roles ...domain.UserRole) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return g.guard(next, func(r *http.Request) (domain.Claims, error) {
			return g.authorize(r, roles...)
		})
	}
}

func (g *Gate) guard(next http.HandlerFunc, check func(*http.Request) (domain.Claims, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := check(r)
		if err != nil {
			g.logger.Debug("Acesso recusado pelo gate.", map[string]interface{}{
				"path":   r.URL.Path,
				"reason": err.Error(),
			})
			respond.Error(w, r, nil, err)
			return
		}

		ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// ClaimsFromContext é uma função utilitária para extrair as claims no handler.
func ClaimsFromContext(ctx context.Context) (domain.Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(domain.Claims)
	return claims, ok
}

// WithClaims anexa claims a um contexto (usado pelos testes dos handlers).
func WithClaims(ctx context.Context, claims domain.Claims) context.Context {
	return context.WithValue(ctx, UserClaimsKey, claims)
}
