package transport

import (
	"context"
	"net/http"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, env *testEnv, buyerID uuid.UUID) *domain.Order {
	t.Helper()
	order := &domain.Order{
		ID:        uuid.New(),
		BuyerID:   buyerID,
		Status:    domain.StatusNotProcessed,
		PaymentOK: true,
		Amount:    decimal.RequireFromString("49.90"),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, env.orderRepo.Create(context.Background(), order))
	return order
}

func TestOrders_ListMineScopesToBuyer(t *testing.T) {
	env := newTestEnv(t)
	buyer, buyerToken := env.seedUser(t, "buyer@example.com", domain.RoleCustomer)
	other, _ := env.seedUser(t, "other@example.com", domain.RoleCustomer)

	seedOrder(t, env, buyer.ID)
	seedOrder(t, env, buyer.ID)
	seedOrder(t, env, other.ID)

	w := doJSON(t, env, "GET", "/api/v1/auth/orders", buyerToken, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	orders := decodeBody(t, w)["orders"].([]any)
	require.Len(t, orders, 2)
	for _, raw := range orders {
		assert.Equal(t, buyer.ID.String(), raw.(map[string]any)["buyer_id"])
	}
}

func TestOrders_ListMineRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(t, env, "GET", "/api/v1/auth/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrders_ListAllIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	buyer, buyerToken := env.seedUser(t, "buyer@example.com", domain.RoleCustomer)
	_, adminToken := env.seedUser(t, "admin@example.com", domain.RoleAdmin)
	seedOrder(t, env, buyer.ID)

	w := doJSON(t, env, "GET", "/api/v1/auth/all-orders", buyerToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, env, "GET", "/api/v1/auth/all-orders", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["orders"].([]any), 1)
}

func TestOrders_UpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	buyer, _ := env.seedUser(t, "buyer@example.com", domain.RoleCustomer)
	_, adminToken := env.seedUser(t, "admin@example.com", domain.RoleAdmin)
	order := seedOrder(t, env, buyer.ID)

	w := doJSON(t, env, "PUT", "/api/v1/auth/order-status/"+order.ID.String(), adminToken, OrderStatusRequest{
		Status: domain.StatusShipped,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "Order status updated successfully", body["message"])
	assert.Equal(t, domain.StatusShipped, body["order"].(map[string]any)["status"])
}

func TestOrders_UpdateStatusRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	buyer, _ := env.seedUser(t, "buyer@example.com", domain.RoleCustomer)
	_, adminToken := env.seedUser(t, "admin@example.com", domain.RoleAdmin)
	order := seedOrder(t, env, buyer.ID)

	w := doJSON(t, env, "PUT", "/api/v1/auth/order-status/"+order.ID.String(), adminToken, OrderStatusRequest{
		Status: "Teleported",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid order status is provided", decodeBody(t, w)["message"])

	// Case matters: the lowercase form is not a legal status
	w = doJSON(t, env, "PUT", "/api/v1/auth/order-status/"+order.ID.String(), adminToken, OrderStatusRequest{
		Status: "shipped",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid order status is provided", decodeBody(t, w)["message"])
}

func TestOrders_UpdateStatusUnknownOrder(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser(t, "admin@example.com", domain.RoleAdmin)

	w := doJSON(t, env, "PUT", "/api/v1/auth/order-status/"+uuid.NewString(), adminToken, OrderStatusRequest{
		Status: domain.StatusShipped,
	})

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", decodeBody(t, w)["message"])
}

func TestOrders_UpdateStatusIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	buyer, buyerToken := env.seedUser(t, "buyer@example.com", domain.RoleCustomer)
	order := seedOrder(t, env, buyer.ID)

	w := doJSON(t, env, "PUT", "/api/v1/auth/order-status/"+order.ID.String(), buyerToken, OrderStatusRequest{
		Status: domain.StatusShipped,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
