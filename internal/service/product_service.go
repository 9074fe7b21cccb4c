package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInput carries the already-validated fields of a create or update.
// A nil Photo on update leaves the stored photo untouched.
type ProductInput struct {
	Name             string
	Description      string
	Price            decimal.Decimal
	CategoryID       uuid.UUID
	Quantity         int
	Shipping         bool
	Photo            []byte
	PhotoContentType string
}

// ProductService defines the interface for product business logic
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, page int) ([]*domain.Product, error)
	ListAll(ctx context.Context) ([]*domain.Product, error)
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, keyword string, page int) ([]*domain.Product, error)
	Filter(ctx context.Context, categoryIDs []uuid.UUID, priceRange *repository.PriceRange) ([]*domain.Product, error)
	Related(ctx context.Context, productID, categoryID uuid.UUID) ([]*domain.Product, error)
	ByCategorySlug(ctx context.Context, slug string) (*domain.Category, []*domain.Product, error)
	Photo(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	pageSize     int
	listLimit    int
	relatedLimit int
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	pageSize, listLimit, relatedLimit int,
) ProductService {
	if pageSize <= 0 {
		pageSize = 6
	}
	if listLimit <= 0 {
		listLimit = 12
	}
	if relatedLimit <= 0 {
		relatedLimit = 3
	}
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		pageSize:     pageSize,
		listLimit:    listLimit,
		relatedLimit: relatedLimit,
	}
}

// Create adds a product after confirming the category exists and the name
// is not taken, ignoring case
func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	existing, err := s.productRepo.FindByName(ctx, name)
	if err != nil && err != repository.ErrProductNotFound {
		return nil, fmt.Errorf("failed to check existing product: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrProductAlreadyExists
	}

	product := &domain.Product{
		ID:               uuid.New(),
		Name:             name,
		Slug:             domain.Slugify(name),
		Description:      input.Description,
		Price:            domain.NormalizePrice(input.Price),
		CategoryID:       input.CategoryID,
		Quantity:         input.Quantity,
		Shipping:         input.Shipping,
		Photo:            input.Photo,
		PhotoContentType: input.PhotoContentType,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Update rewrites a product's fields after re-running the create checks
// plus a slug-collision check against other products
func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	existing, err := s.productRepo.FindByName(ctx, name)
	if err != nil && err != repository.ErrProductNotFound {
		return nil, fmt.Errorf("failed to check existing product: %w", err)
	}
	if existing != nil && existing.ID != id {
		return nil, repository.ErrProductAlreadyExists
	}

	// A renamed product may collide with another product's slug even when
	// the names differ in punctuation.
	newSlug := domain.Slugify(name)
	bySlug, err := s.productRepo.FindBySlug(ctx, newSlug)
	if err != nil && err != repository.ErrProductNotFound {
		return nil, fmt.Errorf("failed to check slug collision: %w", err)
	}
	if bySlug != nil && bySlug.ID != id {
		return nil, repository.ErrProductAlreadyExists
	}

	product.Name = name
	product.Slug = newSlug
	product.Description = input.Description
	product.Price = domain.NormalizePrice(input.Price)
	product.CategoryID = input.CategoryID
	product.Quantity = input.Quantity
	product.Shipping = input.Shipping
	product.Photo = input.Photo
	product.PhotoContentType = input.PhotoContentType
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// GetBySlug retrieves a single product by slug
func (s *productService) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.productRepo.FindBySlug(ctx, slug)
}

// List retrieves one fixed-size page of products, newest first
func (s *productService) List(ctx context.Context, page int) ([]*domain.Product, error) {
	return s.productRepo.List(ctx, page, s.pageSize)
}

// ListAll retrieves the newest products up to the configured cap
func (s *productService) ListAll(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.ListAll(ctx, s.listLimit)
}

// Count returns the total number of products
func (s *productService) Count(ctx context.Context) (int, error) {
	return s.productRepo.Count(ctx)
}

// Search finds products matching the keyword, paginated like List
func (s *productService) Search(ctx context.Context, keyword string, page int) ([]*domain.Product, error) {
	return s.productRepo.Search(ctx, keyword, page, s.pageSize)
}

// Filter applies the category-set and price-range predicates. Every
// category id must reference an existing category.
func (s *productService) Filter(ctx context.Context, categoryIDs []uuid.UUID, priceRange *repository.PriceRange) ([]*domain.Product, error) {
	if len(categoryIDs) > 0 {
		count, err := s.categoryRepo.CountByIDs(ctx, categoryIDs)
		if err != nil {
			return nil, err
		}
		if count != len(dedupe(categoryIDs)) {
			return nil, repository.ErrCategoryNotFound
		}
	}

	return s.productRepo.Filter(ctx, repository.ProductFilter{
		CategoryIDs: categoryIDs,
		Price:       priceRange,
	})
}

// Related retrieves other products from the same category
func (s *productService) Related(ctx context.Context, productID, categoryID uuid.UUID) ([]*domain.Product, error) {
	return s.productRepo.Related(ctx, productID, categoryID, s.relatedLimit)
}

// ByCategorySlug retrieves a category and its products
func (s *productService) ByCategorySlug(ctx context.Context, slug string) (*domain.Category, []*domain.Product, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	products, err := s.productRepo.ListByCategory(ctx, category.ID)
	if err != nil {
		return nil, nil, err
	}

	return category, products, nil
}

// Photo retrieves the stored photo for a product
func (s *productService) Photo(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	return s.productRepo.Photo(ctx, id)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
