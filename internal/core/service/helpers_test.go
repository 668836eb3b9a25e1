package service_test

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/niksmo/naran-storefront/internal/core/domain"
	"github.com/niksmo/naran-storefront/internal/core/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testSettings = service.Settings{
	Currency:     "RUB",
	SupportURL:   "https://t.me/optania",
	SupportLabel: "@optania",
	Map: domain.MapWidget{
		Lat:     55.7558,
		Lng:     37.6173,
		Zoom:    10,
		TileURL: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
	},
}

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func tee() domain.Product {
	return domain.Product{
		ID:       "1",
		Name:     "Tee",
		Price:    decimal.NewFromInt(500),
		Category: "Tops",
		Sizes:    []string{"S", "M"},
	}
}

type MockCatalogFetcher struct {
	mock.Mock
}

func (m *MockCatalogFetcher) FetchProducts(
	ctx context.Context,
) ([]domain.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

type MockEventsProducer struct {
	mock.Mock
}

func (m *MockEventsProducer) ProduceEvent(
	ctx context.Context, evt domain.ClientEvent,
) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

type stubActivity map[string]int64

func (a stubActivity) AddedToCartCount(productID string) int64 {
	return a[productID]
}

// memoryCarts keeps carts by key the way the storage adapter does.
type memoryCarts struct {
	mu      sync.Mutex
	carts   map[string][]domain.CartItem
	writes  int
	loadErr error
}

func newMemoryCarts() *memoryCarts {
	return &memoryCarts{carts: make(map[string][]domain.CartItem)}
}

func (m *memoryCarts) LoadCart(
	_ context.Context, key string,
) ([]domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	items, ok := m.carts[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return slices.Clone(items), nil
}

func (m *memoryCarts) StoreCart(
	_ context.Context, key string, items []domain.CartItem,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[key] = slices.Clone(items)
	m.writes++
	return nil
}

func (m *memoryCarts) stored(sessionID string) []domain.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.carts["naranCart:"+sessionID]
}

func newStorefront(
	t *testing.T, products []domain.Product,
) (*service.Storefront, *memoryCarts) {
	t.Helper()

	fetcher := new(MockCatalogFetcher)
	fetcher.On("FetchProducts", mock.Anything).Return(products, nil)

	carts := newMemoryCarts()
	sf := service.New(fetcher, carts, nil, nil, testSettings)
	require.NoError(t, sf.LoadCatalog(t.Context()))
	return sf, carts
}

func openSession(t *testing.T, sf *service.Storefront) string {
	t.Helper()
	id, err := sf.OpenSession(t.Context(), "")
	require.NoError(t, err)
	return id
}

func dispatch(t *testing.T, sf *service.Storefront, id string, a domain.Action) {
	t.Helper()
	require.NoError(t, sf.Dispatch(t.Context(), id, a))
}

func render(t *testing.T, sf *service.Storefront, id string) domain.StorefrontView {
	t.Helper()
	v, err := sf.Render(t.Context(), id)
	require.NoError(t, err)
	return v
}

func addToCart(productID, size string) domain.Action {
	return domain.Action{
		Type: domain.ActionAddToCart, ProductID: productID, Size: size,
	}
}
