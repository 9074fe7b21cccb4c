package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this name already exists")
	ErrPhotoNotFound        = errors.New("product has no photo")
)

// PriceRange is an inclusive price interval for filtering
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// ProductFilter is a conjunction of optional predicates
type ProductFilter struct {
	CategoryIDs []uuid.UUID
	Price       *PriceRange
}

// ProductRepository defines the interface for product data access.
// Listing queries never load the photo column.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Product, error)
	ListAll(ctx context.Context, limit int) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error)
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, keyword string, page, pageSize int) ([]*domain.Product, error)
	Filter(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	Related(ctx context.Context, productID, categoryID uuid.UUID, limit int) ([]*domain.Product, error)
	Photo(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, slug, description, price, category_id, quantity, shipping, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Slug,
		&product.Description,
		&product.Price,
		&product.CategoryID,
		&product.Quantity,
		&product.Shipping,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, slug, description, price, category_id, quantity, shipping, photo, photo_content_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Slug,
		product.Description,
		product.Price,
		product.CategoryID,
		product.Quantity,
		product.Shipping,
		product.Photo,
		product.PhotoContentType,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product. A nil photo leaves the stored photo
// untouched.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, slug = $3, description = $4, price = $5, category_id = $6,
		    quantity = $7, shipping = $8,
		    photo = COALESCE($9, photo),
		    photo_content_type = COALESCE(NULLIF($10, ''), photo_content_type),
		    updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Slug,
		product.Description,
		product.Price,
		product.CategoryID,
		product.Quantity,
		product.Shipping,
		product.Photo,
		product.PhotoContentType,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.findOne(ctx, `id = $1`, id)
}

// FindBySlug retrieves a product by slug
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, `slug = $1`, slug)
}

// FindByName retrieves a product by name, matching case-insensitively
func (r *productRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	return r.findOne(ctx, `lower(name) = lower($1)`, name)
}

func (r *productRepository) findOne(ctx context.Context, where string, arg any) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s`, productColumns, where)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

// List retrieves one page of products, newest first
func (r *productRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Product, error) {
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, productColumns)

	return r.queryProducts(ctx, query, pageSize, offset)
}

// ListAll retrieves up to limit products, newest first
func (r *productRepository) ListAll(ctx context.Context, limit int) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		ORDER BY created_at DESC
		LIMIT $1
	`, productColumns)

	return r.queryProducts(ctx, query, limit)
}

// ListByCategory retrieves all products in a category, newest first
func (r *productRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE category_id = $1
		ORDER BY created_at DESC
	`, productColumns)

	return r.queryProducts(ctx, query, categoryID)
}

// Count returns the total number of products
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// escapeLikePattern escapes LIKE wildcards so user input matches literally
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// Search finds products whose name or description contains the keyword,
// case-insensitively, newest first
func (r *productRepository) Search(ctx context.Context, keyword string, page, pageSize int) ([]*domain.Product, error) {
	pattern := "%" + escapeLikePattern(keyword) + "%"
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, productColumns)

	return r.queryProducts(ctx, query, pattern, pageSize, offset)
}

// Filter retrieves products matching the conjunction of the optional
// category-set and price-range predicates
func (r *productRepository) Filter(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	conditions := []string{}
	args := []any{}
	argIndex := 1

	if len(filter.CategoryIDs) > 0 {
		placeholders := make([]string, len(filter.CategoryIDs))
		for i, id := range filter.CategoryIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, id)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf("category_id IN (%s)", strings.Join(placeholders, ", ")))
	}

	if filter.Price != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d AND price <= $%d", argIndex, argIndex+1))
		args = append(args, filter.Price.Min, filter.Price.Max)
		argIndex += 2
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY created_at DESC
	`, productColumns, whereClause)

	return r.queryProducts(ctx, query, args...)
}

// Related retrieves up to limit other products from the same category
func (r *productRepository) Related(ctx context.Context, productID, categoryID uuid.UUID, limit int) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE category_id = $1 AND id <> $2
		ORDER BY created_at DESC
		LIMIT $3
	`, productColumns)

	return r.queryProducts(ctx, query, categoryID, productID, limit)
}

// Photo retrieves the stored photo bytes and content type for a product
func (r *productRepository) Photo(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	query := `SELECT photo, photo_content_type FROM products WHERE id = $1`

	var photo []byte
	var contentType sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&photo, &contentType)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", ErrProductNotFound
		}
		return nil, "", fmt.Errorf("failed to load product photo: %w", err)
	}

	if len(photo) == 0 {
		return nil, "", ErrPhotoNotFound
	}

	return photo, contentType.String, nil
}
