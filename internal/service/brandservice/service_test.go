package brandservice_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
	"persol/internal/service/brandservice"
)

// MockBrandRepository é uma implementação mock da interface BrandRepository
type MockBrandRepository struct {
	mock.Mock
}

func (m *MockBrandRepository) CreateBrand(ctx context.Context, name string) (domain.Brand, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Brand), args.Error(1)
}

func (m *MockBrandRepository) GetBrandByID(ctx context.Context, id int64) (domain.Brand, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Brand), args.Error(1)
}

func (m *MockBrandRepository) GetAllBrands(ctx context.Context) ([]domain.Brand, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Brand), args.Error(1)
}

func (m *MockBrandRepository) RenameBrand(ctx context.Context, id int64, name string) (domain.Brand, error) {
	args := m.Called(ctx, id, name)
	return args.Get(0).(domain.Brand), args.Error(1)
}

func (m *MockBrandRepository) DeleteBrand(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func TestCreateBrand_TrimsName(t *testing.T) {
	mockRepo := new(MockBrandRepository)
	svc := brandservice.NewService(mockRepo, logger.NewNop())

	mockRepo.On("CreateBrand", mock.Anything, "Persol").
		Return(domain.Brand{ID: 1, Name: "Persol", CreatedAt: time.Now()}, nil)

	brand, err := svc.CreateBrand(context.Background(), "  Persol ")

	require.NoError(t, err)
	assert.Equal(t, int64(1), brand.ID)
	mockRepo.AssertExpectations(t)
}

func TestCreateBrand_Fail_InvalidName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "vazio", input: "   ", wantErr: domain.ErrBrandNameRequired},
		{name: "longo demais", input: strings.Repeat("a", 101), wantErr: domain.ErrBrandNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockBrandRepository)
			svc := brandservice.NewService(mockRepo, logger.NewNop())

			_, err := svc.CreateBrand(context.Background(), tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			var validation *apperror.ValidationError
			assert.ErrorAs(t, err, &validation)
			mockRepo.AssertNotCalled(t, "CreateBrand", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateBrand_NameAtLimitIsAccepted(t *testing.T) {
	mockRepo := new(MockBrandRepository)
	svc := brandservice.NewService(mockRepo, logger.NewNop())
	name := strings.Repeat("é", 100)

	mockRepo.On("CreateBrand", mock.Anything, name).Return(domain.Brand{ID: 2, Name: name}, nil)

	_, err := svc.CreateBrand(context.Background(), name)

	assert.NoError(t, err)
}

func TestRenameBrand_Fail_InvalidID(t *testing.T) {
	mockRepo := new(MockBrandRepository)
	svc := brandservice.NewService(mockRepo, logger.NewNop())

	_, err := svc.RenameBrand(context.Background(), 0, "Ray-Ban")

	status, _, _ := apperror.MapToHTTPStatus(err)
	assert.Equal(t, 400, status)
	mockRepo.AssertNotCalled(t, "RenameBrand", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteBrand_Fail_InUse(t *testing.T) {
	mockRepo := new(MockBrandRepository)
	svc := brandservice.NewService(mockRepo, logger.NewNop())

	mockRepo.On("DeleteBrand", mock.Anything, int64(3)).Return(apperror.WrapConflict(domain.ErrBrandInUse))

	err := svc.DeleteBrand(context.Background(), 3)

	assert.ErrorIs(t, err, domain.ErrBrandInUse)
	status, _, _ := apperror.MapToHTTPStatus(err)
	assert.Equal(t, 409, status)
}

func TestListBrands_Success(t *testing.T) {
	mockRepo := new(MockBrandRepository)
	svc := brandservice.NewService(mockRepo, logger.NewNop())

	mockRepo.On("GetAllBrands", mock.Anything).Return([]domain.Brand{{ID: 1, Name: "Oakley"}, {ID: 2, Name: "Persol"}}, nil)

	brands, err := svc.ListBrands(context.Background())

	require.NoError(t, err)
	assert.Len(t, brands, 2)
}
