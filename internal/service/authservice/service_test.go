package authservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
	"persol/internal/service/authservice"
)

// MockUserRepository é uma implementação mock de authservice.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateCustomerAccount(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssueDefault(claims domain.Claims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func newService() (*authservice.Service, *MockUserRepository, *MockTokenIssuer) {
	repo := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	svc := authservice.NewService(repo, tokens, logger.NewNop()).WithHashCost(bcrypt.MinCost)
	return svc, repo, tokens
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegister_CreatesCustomerWithHashedPassword(t *testing.T) {
	svc, repo, _ := newService()

	repo.On("CreateCustomerAccount", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "ana@example.com" &&
			u.Role == domain.RoleCustomer &&
			u.FullName == "Ana Souza" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("segredo123")) == nil
	})).Return(domain.User{ID: 42, Email: "ana@example.com", Role: domain.RoleCustomer}, nil)

	user, err := svc.Register(context.Background(), domain.Registration{
		Email:    "  Ana@Example.com ",
		Password: "segredo123",
		FullName: "Ana Souza",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	repo.AssertExpectations(t)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		reg  domain.Registration
	}{
		{name: "sem email", reg: domain.Registration{Password: "x", FullName: "Ana"}},
		{name: "sem senha", reg: domain.Registration{Email: "ana@example.com", FullName: "Ana"}},
		{name: "sem nome", reg: domain.Registration{Email: "ana@example.com", Password: "x"}},
		{name: "email inválido", reg: domain.Registration{Email: "ana", Password: "x", FullName: "Ana"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService()

			_, err := svc.Register(context.Background(), tt.reg)

			var validation *apperror.ValidationError
			assert.ErrorAs(t, err, &validation)
			repo.AssertNotCalled(t, "CreateCustomerAccount", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_DuplicateEmailPropagatesConflict(t *testing.T) {
	svc, repo, _ := newService()
	repo.On("CreateCustomerAccount", mock.Anything, mock.Anything).
		Return(domain.User{}, apperror.WrapConflict(domain.ErrEmailTaken))

	_, err := svc.Register(context.Background(), domain.Registration{Email: "ana@example.com", Password: "x", FullName: "Ana"})

	status, _, _ := apperror.MapToHTTPStatus(err)
	assert.Equal(t, 409, status)
}

func TestLogin_TokenCarriesStoredRole(t *testing.T) {
	svc, repo, tokens := newService()
	stored := domain.User{ID: 1, Email: "admin@example.com", PasswordHash: hashOf(t, "segredo123"), Role: domain.RoleAdmin}

	repo.On("FindByEmail", mock.Anything, "admin@example.com").Return(stored, nil)
	tokens.On("IssueDefault", domain.Claims{ID: 1, Email: "admin@example.com", Role: domain.RoleAdmin}).Return("jwt-token", nil)

	// a senha é comparada sem espaços nas pontas
	result, err := svc.Login(context.Background(), "ADMIN@example.com", " segredo123 ")

	require.NoError(t, err)
	assert.Equal(t, "jwt-token", result.Token)
	assert.Equal(t, domain.RoleAdmin, result.User.Role)
	tokens.AssertExpectations(t)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, repo, tokens := newService()
	stored := domain.User{ID: 1, Email: "ana@example.com", PasswordHash: hashOf(t, "segredo123"), Role: domain.RoleCustomer}

	repo.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)
	repo.On("FindByEmail", mock.Anything, "ghost@example.com").
		Return(domain.User{}, apperror.WrapNotFound(domain.ErrUserNotFound))

	_, wrongPassword := svc.Login(context.Background(), "ana@example.com", "errada")
	_, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "segredo123")

	for _, err := range []error{wrongPassword, unknownEmail} {
		status, category, message := apperror.MapToHTTPStatus(err)
		assert.Equal(t, 401, status)
		assert.Equal(t, "UNAUTHORIZED", category)
		assert.Equal(t, "Credenciais inválidas.", message)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
	tokens.AssertNotCalled(t, "IssueDefault", mock.Anything)
}

func TestLogin_RepositoryFailureIsNotMaskedAsCredentials(t *testing.T) {
	svc, repo, _ := newService()
	repo.On("FindByEmail", mock.Anything, "ana@example.com").
		Return(domain.User{}, apperror.NewDBError("Falha ao buscar usuário por email", errors.New("timeout")))

	_, err := svc.Login(context.Background(), "ana@example.com", "x")

	status, _, _ := apperror.MapToHTTPStatus(err)
	assert.Equal(t, 500, status)
}

func TestLogin_MissingFields(t *testing.T) {
	svc, repo, _ := newService()

	_, err := svc.Login(context.Background(), "", "x")

	status, _, _ := apperror.MapToHTTPStatus(err)
	assert.Equal(t, 400, status)
	repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestSoftDeleteUser(t *testing.T) {
	svc, repo, _ := newService()
	admin := domain.Claims{ID: 1, Role: domain.RoleAdmin}

	err := svc.SoftDeleteUser(context.Background(), admin, 1)
	assert.ErrorIs(t, err, domain.ErrSelfDelete)

	repo.On("SoftDelete", mock.Anything, int64(9)).Return(apperror.WrapNotFound(domain.ErrUserNotFound))
	err = svc.SoftDeleteUser(context.Background(), admin, 9)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	repo.On("SoftDelete", mock.Anything, int64(2)).Return(nil)
	assert.NoError(t, svc.SoftDeleteUser(context.Background(), admin, 2))
}

func TestMe_DeletedAccountIsUnauthorized(t *testing.T) {
	svc, repo, _ := newService()
	repo.On("FindByID", mock.Anything, int64(3)).Return(domain.User{}, apperror.WrapNotFound(domain.ErrUserNotFound))

	_, err := svc.Me(context.Background(), domain.Claims{ID: 3})

	status, _, _ := apperror.MapToHTTPStatus(err)
	assert.Equal(t, 401, status)
}
