package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertCategory(t *testing.T, name string) *domain.Category {
	t.Helper()

	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name + " " + uuid.NewString(),
		Slug:      domain.Slugify(name + " " + uuid.NewString()),
		CreatedAt: time.Now(),
	}
	require.NoError(t, NewCategoryRepository(testDB).Create(context.Background(), category))
	return category
}

func insertProduct(t *testing.T, categoryID uuid.UUID, name, description, price string) *domain.Product {
	t.Helper()

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Slug:        domain.Slugify(name),
		Description: description,
		Price:       decimal.RequireFromString(price),
		CategoryID:  categoryID,
		Quantity:    5,
		Shipping:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, NewProductRepository(testDB).Create(context.Background(), product))
	return product
}

// Property: creating and retrieving a product preserves all attributes
func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("create and retrieve round-trips every column", prop.ForAll(
		func(baseName string, description string, cents int64, quantity int, shipping bool) bool {
			category := insertCategory(t, "Props")

			name := baseName + " " + uuid.NewString()
			product := &domain.Product{
				ID:          uuid.New(),
				Name:        name,
				Slug:        domain.Slugify(name),
				Description: description,
				Price:       decimal.New(cents, -2),
				CategoryID:  category.ID,
				Quantity:    quantity,
				Shipping:    shipping,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}

			if err := productRepo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			retrieved, err := productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.Name != product.Name || retrieved.Slug != product.Slug {
				t.Logf("FAIL: Name or slug mismatch")
				return false
			}
			if retrieved.Description != product.Description {
				t.Logf("FAIL: Description mismatch")
				return false
			}
			if !retrieved.Price.Equal(product.Price) {
				t.Logf("FAIL: Price mismatch: stored %s, got %s", product.Price, retrieved.Price)
				return false
			}
			if retrieved.CategoryID != category.ID {
				t.Logf("FAIL: Category mismatch")
				return false
			}
			if retrieved.Quantity != quantity || retrieved.Shipping != shipping {
				t.Logf("FAIL: Quantity or shipping mismatch")
				return false
			}

			return true
		},
		gen.RegexMatch(`[A-Z][a-z]{3,12}`),
		gen.RegexMatch(`[A-Za-z ]{5,60}`),
		gen.Int64Range(1, 1_000_000),
		gen.IntRange(1, 500),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductRepository_DuplicateNameIsRejected(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	category := insertCategory(t, "Dup")

	name := "Unique Widget " + uuid.NewString()
	insertProduct(t, category.ID, name, "first", "10.00")

	// The unique index on lower(name) rejects a re-cased duplicate even
	// though the slug differs
	duplicate := &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Slug:        "different-" + uuid.NewString(),
		Description: "second",
		Price:       decimal.NewFromInt(20),
		CategoryID:  category.ID,
		Quantity:    1,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	err := repo.Create(ctx, duplicate)
	assert.ErrorIs(t, err, ErrProductAlreadyExists)
}

func TestProductRepository_SearchMatchesLiteralWildcards(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	category := insertCategory(t, "Search")

	marker := uuid.NewString()[:8]
	literal := insertProduct(t, category.ID, "100% Cotton "+marker, "shirt", "25.00")
	insertProduct(t, category.ID, "1000 Cotton "+marker, "shirt", "25.00")

	// "%" in the keyword matches only the literal percent sign
	results, err := repo.Search(ctx, "100% Cotton "+marker, 1, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, literal.ID, results[0].ID)
}

func TestProductRepository_SearchMatchesDescription(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	category := insertCategory(t, "Search")

	marker := uuid.NewString()[:8]
	insertProduct(t, category.ID, "Thing A "+marker, "contains "+marker+" marker", "10.00")

	results, err := repo.Search(ctx, marker, 1, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestProductRepository_UpdateKeepsPhotoWhenNil(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	category := insertCategory(t, "Photo")

	product := insertProduct(t, category.ID, "Photo Widget "+uuid.NewString(), "desc", "10.00")
	product.Photo = []byte{0xFF, 0xD8, 0xFF}
	product.PhotoContentType = "image/jpeg"
	require.NoError(t, repo.Update(ctx, product))

	// An update without a photo leaves the stored one untouched
	product.Photo = nil
	product.PhotoContentType = ""
	product.Description = "updated"
	require.NoError(t, repo.Update(ctx, product))

	photo, contentType, err := repo.Photo(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, photo)
	assert.Equal(t, "image/jpeg", contentType)

	updated, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Description)
}

func TestProductRepository_PhotoMissing(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	category := insertCategory(t, "Photo")

	product := insertProduct(t, category.ID, "Bare Widget "+uuid.NewString(), "desc", "10.00")

	_, _, err := repo.Photo(ctx, product.ID)
	assert.ErrorIs(t, err, ErrPhotoNotFound)

	_, _, err = repo.Photo(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductRepository_FilterConjunction(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	category := insertCategory(t, "Filter")
	other := insertCategory(t, "FilterOther")

	cheap := insertProduct(t, category.ID, "Cheap Widget "+uuid.NewString(), "d", "10.00")
	insertProduct(t, category.ID, "Dear Widget "+uuid.NewString(), "d", "500.00")
	insertProduct(t, other.ID, "Other Widget "+uuid.NewString(), "d", "10.00")

	results, err := repo.Filter(ctx, ProductFilter{
		CategoryIDs: []uuid.UUID{category.ID},
		Price: &PriceRange{
			Min: decimal.NewFromInt(1),
			Max: decimal.NewFromInt(100),
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, cheap.ID, results[0].ID)
}

func TestProductRepository_RelatedExcludesSelf(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	category := insertCategory(t, "Related")

	first := insertProduct(t, category.ID, "Rel A "+uuid.NewString(), "d", "10.00")
	insertProduct(t, category.ID, "Rel B "+uuid.NewString(), "d", "10.00")
	insertProduct(t, category.ID, "Rel C "+uuid.NewString(), "d", "10.00")

	results, err := repo.Related(ctx, first.ID, category.ID, 3)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	for _, product := range results {
		assert.NotEqual(t, first.ID, product.ID)
	}
}
