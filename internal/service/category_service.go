package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// CategoryService defines the interface for category business logic
type CategoryService interface {
	Create(ctx context.Context, name string) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

// Create adds a category, rejecting case-insensitive duplicate names
func (s *categoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)

	existing, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil && err != repository.ErrCategoryNotFound {
		return nil, fmt.Errorf("failed to check existing category: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrCategoryAlreadyExists
	}

	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		Slug:      domain.Slugify(name),
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// Update renames a category, rejecting a name held by a different category
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil && err != repository.ErrCategoryNotFound {
		return nil, fmt.Errorf("failed to check existing category: %w", err)
	}
	if existing != nil && existing.ID != id {
		return nil, repository.ErrCategoryAlreadyExists
	}

	category.Name = name
	category.Slug = domain.Slugify(name)

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// Delete removes a category after confirming it exists
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, id)
}

// List retrieves all categories
func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// GetBySlug retrieves a single category by slug
func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return s.categoryRepo.FindBySlug(ctx, slug)
}
