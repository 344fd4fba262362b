package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/cache"
	"persol/internal/pkg/database"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/metrics"
)

// Define a chave de cache para produtos.
const productCacheKey = "product:%d"

const productSelect = `
        SELECT p.id, p.brand_id, b.name AS brand_name, p.category_id, c.name AS category_name,
               p.name, p.description, p.price,
               p.stock_quantity, p.stock_status, p.is_active, p.created_at, p.updated_at
        FROM products p
        LEFT JOIN brands b ON b.id = p.brand_id
        LEFT JOIN categories c ON c.id = p.category_id`

// ProductRepository lê e mantém o catálogo. Contém as conexões com o banco (PostgreSQL) e o cache (Redis).
type ProductRepository struct {
	DB        *sqlx.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewProductRepository(db *sqlx.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// FindByID busca um produto ativo pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	// 1. Tentar obter do cache
	cached, err := r.Cache.Get(ctxTimeout, key)
	switch {
	case err == nil:
		if json.Unmarshal([]byte(cached), &product) == nil {
			metrics.ProductCacheLookupsTotal.WithLabelValues("hit").Inc()
			return product, nil
		}
		r.logger.Warn("Entrada de cache inválida, consultando o DB.", map[string]interface{}{"key": key})
		metrics.ProductCacheLookupsTotal.WithLabelValues("error").Inc()
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.ProductCacheLookupsTotal.WithLabelValues("miss").Inc()
	default:
		// Falha real de cache (ex: conexão perdida): seguimos para o DB.
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
		metrics.ProductCacheLookupsTotal.WithLabelValues("error").Inc()
	}

	// 2. Busca no banco de dados
	err = r.DB.GetContext(ctxTimeout, &product, productSelect+` WHERE p.id = $1 AND p.is_active`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperror.WrapNotFound(domain.ErrProductMissing)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao buscar produto no DB", err)
	}

	// 3. Popular o cache para as próximas leituras
	if payload, marshalErr := json.Marshal(product); marshalErr == nil {
		if setErr := r.Cache.Set(ctxTimeout, key, payload, r.CacheTTL); setErr != nil {
			r.logger.Warn("Falha ao gravar produto no cache.", map[string]interface{}{"key": key, "error": setErr.Error()})
		}
	}

	return product, nil
}

// FindByIDs busca vários produtos ativos de uma vez. IDs desconhecidos são ignorados.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	products := []domain.Product{}
	if len(ids) == 0 {
		return products, nil
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query, args, err := sqlx.In(productSelect+` WHERE p.id IN (?) AND p.is_active ORDER BY p.id`, ids)
	if err != nil {
		return nil, apperror.NewInternalError("Falha ao montar consulta de produtos", err)
	}

	if err := r.DB.SelectContext(ctxTimeout, &products, r.DB.Rebind(query), args...); err != nil {
		r.logger.Error("Falha ao buscar produtos por IDs no DB.", err)
		return nil, apperror.NewDBError("Falha ao buscar produtos", err)
	}
	return products, nil
}

// FindAll lista produtos ativos com filtros opcionais e paginação.
func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter = filter.Normalize()

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	conditions := []string{"p.is_active"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.BrandID > 0 {
		conditions = append(conditions, "p.brand_id = "+arg(filter.BrandID))
	}
	if filter.CategoryID > 0 {
		conditions = append(conditions, "p.category_id = "+arg(filter.CategoryID))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		conditions = append(conditions, "p.name ILIKE "+arg("%"+s+"%"))
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "p.price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "p.price <= "+arg(*filter.MaxPrice))
	}

	query := productSelect +
		" WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY p.created_at DESC, p.id DESC" +
		" LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset())

	r.logger.Debug("Executando listagem de produtos.", map[string]interface{}{"page": filter.Page, "limit": filter.Limit})

	products := []domain.Product{}
	if err := r.DB.SelectContext(ctxTimeout, &products, query, args...); err != nil {
		r.logger.Error("Falha ao listar produtos no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar produtos", err)
	}
	return products, nil
}

// InvalidateCache remove a entrada de cache do produto (após ajuste de estoque, por exemplo).
func (r *ProductRepository) InvalidateCache(ctx context.Context, id int64) error {
	return r.Cache.Delete(ctx, fmt.Sprintf(productCacheKey, id))
}

// FindAnyByID busca um produto pelo ID independentemente de is_active, sem cache (administração).
func (r *ProductRepository) FindAnyByID(ctx context.Context, id int64) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var product domain.Product
	err := r.DB.GetContext(ctxTimeout, &product, productSelect+` WHERE p.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperror.WrapNotFound(domain.ErrProductMissing)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao buscar produto no DB", err)
	}
	return product, nil
}

// ListForAdmin lista todos os produtos, ativos ou não. Search casa com o nome do produto ou da marca.
func (r *ProductRepository) ListForAdmin(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter = filter.Normalize()

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := productSelect
	args := []interface{}{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query += ` WHERE (p.name ILIKE $1 OR b.name ILIKE $1)`
		args = append(args, "%"+s+"%")
	}
	query += fmt.Sprintf(" ORDER BY p.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	products := []domain.Product{}
	if err := r.DB.SelectContext(ctxTimeout, &products, query, args...); err != nil {
		r.logger.Error("Falha ao listar produtos (admin) no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar produtos", err)
	}
	return products, nil
}

// Create insere um produto ativo. O status de estoque é derivado da quantidade inicial.
func (r *ProductRepository) Create(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	r.logger.Debug("Iniciando Create de produto no repositório.", map[string]interface{}{"name": in.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO products (brand_id, category_id, name, description, price, stock_quantity, stock_status, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
        RETURNING id`

	var id int64
	err := r.DB.GetContext(ctxTimeout, &id, query,
		in.BrandID, in.CategoryID, in.Name, in.Description, in.Price,
		in.StockQuantity, domain.StatusForQuantity(in.StockQuantity))
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return domain.Product{}, apperror.WrapValidation(domain.ErrUnknownReference)
		}
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao criar produto", err)
	}

	r.logger.Info("Produto criado com sucesso.", map[string]interface{}{"id": id, "name": in.Name})
	return r.FindAnyByID(ctx, id)
}

// Update altera os dados cadastrais do produto. Estoque e is_active têm operações próprias.
func (r *ProductRepository) Update(ctx context.Context, id int64, in domain.ProductInput) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE products
        SET brand_id = $1, category_id = $2, name = $3, description = $4, price = $5, updated_at = now()
        WHERE id = $6`

	result, err := r.DB.ExecContext(ctxTimeout, query, in.BrandID, in.CategoryID, in.Name, in.Description, in.Price, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return domain.Product{}, apperror.WrapValidation(domain.ErrUnknownReference)
		}
		r.logger.Error("Falha ao atualizar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao atualizar produto", err)
	}
	if err := r.requireAffected(result, "Update"); err != nil {
		return domain.Product{}, err
	}

	r.logger.Info("Produto atualizado com sucesso.", map[string]interface{}{"id": id})
	return r.FindAnyByID(ctx, id)
}

// SetActive ativa ou desativa o produto. Produto inativo some do catálogo e não pode ser pedido.
func (r *ProductRepository) SetActive(ctx context.Context, id int64, active bool) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE products SET is_active = $1, updated_at = now() WHERE id = $2`, active, id)
	if err != nil {
		r.logger.Error("Falha ao alterar is_active do produto.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao alterar status do produto", err)
	}
	if err := r.requireAffected(result, "SetActive"); err != nil {
		return domain.Product{}, err
	}

	r.logger.Info("Status do produto alterado.", map[string]interface{}{"id": id, "is_active": active})
	return r.FindAnyByID(ctx, id)
}

func (r *ProductRepository) requireAffected(result sql.Result, op string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após "+op+".", err)
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.WrapNotFound(domain.ErrProductMissing)
	}
	return nil
}

// ListCategories lista as categorias em ordem alfabética.
func (r *ProductRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	categories := []domain.Category{}
	if err := r.DB.SelectContext(ctxTimeout, &categories, `SELECT id, name FROM categories ORDER BY name`); err != nil {
		r.logger.Error("Falha ao listar categorias no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar categorias", err)
	}
	return categories, nil
}
