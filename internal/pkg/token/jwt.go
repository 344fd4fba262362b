package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"persol/internal/domain"
)

// Motivos de falha de verificação. O middleware os repassa na mensagem de 401.
var (
	ErrMalformedToken = errors.New("token malformado")
	ErrBadSignature   = errors.New("assinatura inválida")
	ErrExpired        = errors.New("token expirado")
	ErrInvalidClaims  = errors.New("emissor ou audiência inválidos")
	ErrUnknownRole    = errors.New("papel de usuário desconhecido")
)

// TokenService define o contrato para emissão e verificação de tokens de sessão.
type TokenService interface {
	Issue(claims domain.Claims, ttl time.Duration) (string, error)
	IssueDefault(claims domain.Claims) (string, error)
	Verify(tokenString string) (domain.Claims, error)
}

// Config é injetada na construção do serviço. Now é opcional (relógio para testes).
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration
	Now      func() time.Time
}

// sessionClaims é o payload do token: {iss, aud, iat, exp, data}.
type sessionClaims struct {
	Issuer    string           `json:"iss"`
	Audience  string           `json:"aud"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
	Data      domain.Claims    `json:"data"`
}

func (c sessionClaims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c sessionClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c sessionClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c sessionClaims) GetIssuer() (string, error)                   { return c.Issuer, nil }
func (c sessionClaims) GetSubject() (string, error)                  { return "", nil }
func (c sessionClaims) GetAudience() (jwt.ClaimStrings, error) {
	return jwt.ClaimStrings{c.Audience}, nil
}

// Service implementa TokenService com HS256 fixo.
type Service struct {
	secret   []byte
	issuer   string
	audience string
	expiry   time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// NewService cria uma nova instância do serviço de tokens.
func NewService(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, errors.New("segredo do token não pode ser vazio")
	}
	if cfg.Expiry <= 0 {
		return nil, errors.New("expiração do token deve ser positiva")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	// O algoritmo é fixado aqui; o campo "alg" do header nunca o seleciona.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
		jwt.WithStrictDecoding(),
	)

	return &Service{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		expiry:   cfg.Expiry,
		now:      now,
		parser:   parser,
	}, nil
}

// Expiry devolve a validade padrão dos tokens emitidos no login.
func (s *Service) Expiry() time.Duration {
	return s.expiry
}

// IssueDefault emite um token com a validade configurada.
func (s *Service) IssueDefault(claims domain.Claims) (string, error) {
	return s.Issue(claims, s.expiry)
}

// Issue cria um novo token assinado contendo id, email e papel do usuário.
func (s *Service) Issue(claims domain.Claims, ttl time.Duration) (string, error) {
	if !claims.Role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, claims.Role)
	}
	if ttl <= 0 {
		return "", errors.New("validade do token deve ser positiva")
	}

	now := s.now()
	payload := sessionClaims{
		Issuer:    s.issuer,
		Audience:  s.audience,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Data:      claims,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("falha ao assinar o token: %w", err)
	}
	return tokenString, nil
}

// Verify valida o token e devolve as claims embutidas.
// Ordem: formato (3 segmentos), assinatura (comparação em tempo constante), depois o payload.
func (s *Service) Verify(tokenString string) (domain.Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return domain.Claims{}, ErrMalformedToken
	}

	// Decodificação estrita: a assinatura tem uma única forma textual aceita.
	// Bits de preenchimento diferentes de zero e quebras de linha são rejeitados.
	if strings.ContainsAny(parts[2], "\r\n") {
		return domain.Claims{}, ErrBadSignature
	}
	sig, err := base64.RawURLEncoding.Strict().DecodeString(parts[2])
	if err != nil {
		return domain.Claims{}, ErrBadSignature
	}

	// 1. Assinatura antes de qualquer interpretação do payload.
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, s.secret); err != nil {
		return domain.Claims{}, ErrBadSignature
	}

	// 2. Header, payload e validações registradas (exp, iss, aud).
	var claims sessionClaims
	_, err = s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return domain.Claims{}, mapParseError(err)
	}

	return claims.Data, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrBadSignature
	default:
		return ErrInvalidClaims
	}
}
