package authservice

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/metrics"
)

// UserRepository define o contrato que o serviço espera da camada de Persistência.
type UserRepository interface {
	CreateCustomerAccount(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id int64) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	SoftDelete(ctx context.Context, id int64) error
}

// TokenIssuer é o contrato da camada de token (internal/pkg/token).
type TokenIssuer interface {
	IssueDefault(claims domain.Claims) (string, error)
}

// Service implementa cadastro, login e a administração de usuários.
type Service struct {
	users    UserRepository
	tokens   TokenIssuer
	logger   logger.Logger
	hashCost int
}

// NewService cria uma nova instância do Service, injetando o Repositório e o emissor de tokens.
func NewService(users UserRepository, tokens TokenIssuer, logger logger.Logger) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}

// WithHashCost altera o custo do bcrypt (testes usam bcrypt.MinCost).
func (s *Service) WithHashCost(cost int) *Service {
	s.hashCost = cost
	return s
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// equalizeTiming executa uma comparação bcrypt descartável para que "email inexistente"
// leve o mesmo tempo que "senha errada".
func equalizeTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("persol-timing-equalizer"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register registra um novo cliente: usuário e perfil de cliente na mesma transação.
func (s *Service) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	email := normalizeEmail(reg.Email)
	password := strings.TrimSpace(reg.Password)
	fullName := strings.TrimSpace(reg.FullName)

	// 1. Validação
	if email == "" || password == "" || fullName == "" {
		return domain.User{}, apperror.NewValidationError("Email, senha e nome completo são obrigatórios.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, apperror.NewValidationError("Email inválido.")
	}

	// 2. Hashing da Senha
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	// 3. Persistência (usuário + cliente)
	user, err := s.users.CreateCustomerAccount(ctx, domain.User{
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     fullName,
		Phone:        strings.TrimSpace(reg.Phone),
		Role:         domain.RoleCustomer,
	})
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Novo cliente registrado.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// Login autentica o usuário e emite o token de sessão. Email desconhecido, usuário
// removido e senha errada produzem o mesmo erro.
func (s *Service) Login(ctx context.Context, email, password string) (domain.LoginResult, error) {
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)

	if email == "" || password == "" {
		return domain.LoginResult{}, apperror.NewValidationError("Email e senha são obrigatórios.")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			equalizeTiming(password)
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			return domain.LoginResult{}, invalidCredentials()
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return domain.LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		s.logger.Debug("Senha incorreta no login.", map[string]interface{}{"user_id": user.ID})
		return domain.LoginResult{}, invalidCredentials()
	}

	token, err := s.tokens.IssueDefault(domain.Claims{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return domain.LoginResult{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.logger.Info("Login realizado.", map[string]interface{}{"user_id": user.ID, "role": string(user.Role)})
	return domain.LoginResult{Token: token, User: user}, nil
}

func invalidCredentials() error {
	return &apperror.UnauthorizedError{Msg: domain.ErrInvalidCredentials.Error(), Reason: domain.ErrInvalidCredentials}
}

// Me devolve o registro público do usuário autenticado.
func (s *Service) Me(ctx context.Context, claims domain.Claims) (domain.User, error) {
	user, err := s.users.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Token válido de uma conta removida depois da emissão.
			return domain.User{}, apperror.NewUnauthorizedError("Acesso negado. Conta inexistente ou removida.")
		}
		return domain.User{}, err
	}
	return user, nil
}

// ListUsers lista os usuários ativos (administração).
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

// SoftDeleteUser remove logicamente um usuário. O administrador não pode remover a si mesmo.
func (s *Service) SoftDeleteUser(ctx context.Context, actor domain.Claims, userID int64) error {
	if userID <= 0 {
		return apperror.NewValidationError("O ID do usuário deve ser um inteiro positivo.")
	}
	if actor.ID == userID {
		return apperror.WrapValidation(domain.ErrSelfDelete)
	}

	if err := s.users.SoftDelete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("Usuário removido por administrador.", map[string]interface{}{"user_id": userID, "admin_id": actor.ID})
	return nil
}
