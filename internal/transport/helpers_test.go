package transport

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testJWTSecret = "test-secret"

// Mock repositories for testing

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	key := strings.ToLower(user.Email)
	if _, exists := m.users[key]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[key] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[strings.ToLower(email)]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmailAndAnswer(ctx context.Context, email, answer string) (*domain.User, error) {
	user, exists := m.users[strings.ToLower(email)]
	if !exists || user.Answer != answer {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	m.users[strings.ToLower(user.Email)] = user
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	for _, user := range m.users {
		if user.ID == id {
			user.PasswordHash = passwordHash
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, exists := m.categories[category.ID]; !exists {
		return repository.ErrCategoryNotFound
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.categories[id]; !exists {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0, len(m.categories))
	for _, category := range m.categories {
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, exists := m.categories[id]
	if !exists {
		return nil, repository.ErrCategoryNotFound
	}
	return category, nil
}

func (m *mockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, category := range m.categories {
		if category.Slug == slug {
			return category, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	for _, category := range m.categories {
		if strings.EqualFold(category.Name, name) {
			return category, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) CountByIDs(ctx context.Context, ids []uuid.UUID) (int, error) {
	seen := make(map[uuid.UUID]struct{})
	for _, id := range ids {
		if _, exists := m.categories[id]; exists {
			seen[id] = struct{}{}
		}
	}
	return len(seen), nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	for _, product := range m.products {
		if product.Slug == slug {
			return product, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	for _, product := range m.products {
		if strings.EqualFold(product.Name, name) {
			return product, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) all() []*domain.Product {
	out := make([]*domain.Product, 0, len(m.products))
	for _, product := range m.products {
		out = append(out, product)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockProductRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Product, error) {
	all := m.all()
	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockProductRepository) ListAll(ctx context.Context, limit int) ([]*domain.Product, error) {
	all := m.all()
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, product := range m.all() {
		if product.CategoryID == categoryID {
			out = append(out, product)
		}
	}
	return out, nil
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	return len(m.products), nil
}

func (m *mockProductRepository) Search(ctx context.Context, keyword string, page, pageSize int) ([]*domain.Product, error) {
	needle := strings.ToLower(keyword)
	var matched []*domain.Product
	for _, product := range m.all() {
		if strings.Contains(strings.ToLower(product.Name), needle) ||
			strings.Contains(strings.ToLower(product.Description), needle) {
			matched = append(matched, product)
		}
	}
	offset := (page - 1) * pageSize
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (m *mockProductRepository) Filter(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, product := range m.all() {
		if len(filter.CategoryIDs) > 0 {
			found := false
			for _, id := range filter.CategoryIDs {
				if product.CategoryID == id {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if filter.Price != nil {
			if product.Price.LessThan(filter.Price.Min) || product.Price.GreaterThan(filter.Price.Max) {
				continue
			}
		}
		out = append(out, product)
	}
	return out, nil
}

func (m *mockProductRepository) Related(ctx context.Context, productID, categoryID uuid.UUID, limit int) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, product := range m.all() {
		if product.CategoryID == categoryID && product.ID != productID {
			out = append(out, product)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockProductRepository) Photo(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, "", repository.ErrProductNotFound
	}
	if len(product.Photo) == 0 {
		return nil, "", repository.ErrPhotoNotFound
	}
	return product.Photo, product.PhotoContentType, nil
}

type mockOrderRepository struct {
	orders map[uuid.UUID]*domain.Order
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, exists := m.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range m.orders {
		if order.BuyerID == buyerID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	out := make([]*domain.Order, 0, len(m.orders))
	for _, order := range m.orders {
		out = append(out, order)
	}
	return out, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	order, exists := m.orders[id]
	if !exists {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

// mockGateway approves every sale
type mockGateway struct{}

func (m *mockGateway) ClientToken(ctx context.Context) (string, error) {
	return "client-token", nil
}

func (m *mockGateway) Sale(ctx context.Context, amount decimal.Decimal, nonce string) (*payment.Result, error) {
	return &payment.Result{TransactionID: "txn-1", Success: true}, nil
}

// testEnv wires real services over mock repositories behind a full router
type testEnv struct {
	router       chi.Router
	userRepo     *mockUserRepository
	categoryRepo *mockCategoryRepository
	productRepo  *mockProductRepository
	orderRepo    *mockOrderRepository
	authService  service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		userRepo:     newMockUserRepository(),
		categoryRepo: newMockCategoryRepository(),
		productRepo:  newMockProductRepository(),
		orderRepo:    newMockOrderRepository(),
	}

	logger := zap.NewNop()
	env.authService = service.NewAuthService(env.userRepo, testJWTSecret, 7)
	categoryService := service.NewCategoryService(env.categoryRepo)
	productService := service.NewProductService(env.productRepo, env.categoryRepo, 6, 12, 3)
	orderService := service.NewOrderService(env.orderRepo, env.productRepo, &mockGateway{})

	authHandler := NewAuthHandler(env.authService, logger)
	categoryHandler := NewCategoryHandler(categoryService, logger)
	orderHandler := NewOrderHandler(orderService, logger)
	productHandler := NewProductHandler(productService, orderService, logger)

	authMiddleware := middleware.AuthMiddleware(testJWTSecret, logger)
	adminMiddleware := middleware.RequireAdmin(logger)

	router := chi.NewRouter()
	authHandler.RegisterRoutes(router, orderHandler, authMiddleware, adminMiddleware, nil)
	categoryHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	productHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	env.router = router

	return env
}

// seedUser registers a user directly and returns it with a login token
func (env *testEnv) seedUser(t *testing.T, email string, role int) (*domain.User, string) {
	t.Helper()

	user, err := env.authService.Register(context.Background(), "Test User", email, "password123", "81234567", "1 Orchard Rd", "blue")
	require.NoError(t, err)
	user.Role = role
	env.userRepo.users[strings.ToLower(email)] = user

	token, _, err := env.authService.Login(context.Background(), email, "password123")
	require.NoError(t, err)
	return user, token
}

func (env *testEnv) seedCategory(t *testing.T, name string) *domain.Category {
	t.Helper()
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		Slug:      domain.Slugify(name),
		CreatedAt: time.Now(),
	}
	require.NoError(t, env.categoryRepo.Create(context.Background(), category))
	return category
}

func (env *testEnv) seedProduct(t *testing.T, name string, price string, categoryID uuid.UUID) *domain.Product {
	t.Helper()
	product := &domain.Product{
		ID:         uuid.New(),
		Name:       name,
		Slug:       domain.Slugify(name),
		Price:      decimal.RequireFromString(price),
		CategoryID: categoryID,
		Quantity:   10,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	require.NoError(t, env.productRepo.Create(context.Background(), product))
	return product
}
