package stockrepo_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persol/internal/domain"
	"persol/internal/pkg/logger"
	"persol/internal/repository/stockrepo"
)

var stockColumns = []string{"id", "stock_quantity", "stock_status", "version", "updated_at"}

func newRepo(t *testing.T) (*stockrepo.StockRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return stockrepo.NewStockRepository(sqlx.NewDb(db, "postgres"), time.Second, logger.NewNop()), mock
}

func TestUpdateStockLevel_Success(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(stockColumns).AddRow(int64(1), 10, "in_stock", 3, now))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE products")).
		WithArgs(4, domain.StockLow, int64(1), 3).
		WillReturnRows(sqlmock.NewRows(stockColumns).AddRow(int64(1), 4, "low_stock", 4, now))
	mock.ExpectCommit()

	level, err := repo.UpdateStockLevel(context.Background(), domain.StockAdjustment{ProductID: 1, Delta: -6})

	require.NoError(t, err)
	assert.Equal(t, 4, level.Quantity)
	assert.Equal(t, domain.StockLow, level.Status)
	assert.Equal(t, 4, level.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStockLevel_NegativeResultRollsBack(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(stockColumns).AddRow(int64(1), 2, "low_stock", 1, time.Now()))
	mock.ExpectRollback()

	_, err := repo.UpdateStockLevel(context.Background(), domain.StockAdjustment{ProductID: 1, Delta: -3})

	assert.ErrorIs(t, err, domain.ErrNegativeStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStockLevel_VersionMismatchIsConflict(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows(stockColumns).AddRow(int64(1), 10, "in_stock", 7, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE products")).
		WillReturnRows(sqlmock.NewRows(stockColumns))
	mock.ExpectRollback()

	_, err := repo.UpdateStockLevel(context.Background(), domain.StockAdjustment{ProductID: 1, Delta: 1})

	assert.ErrorIs(t, err, domain.ErrStockConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStockLevel_MissingProduct(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(stockColumns))

	_, err := repo.GetStockLevel(context.Background(), 99)

	assert.ErrorIs(t, err, domain.ErrProductMissing)
}
