package catalogapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/niksmo/naran-storefront/internal/adapter/catalogapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsJSON = `[
  {"id": 1, "name": "Tee", "description": "Soft", "price": 500,
   "category": "Tops", "photo_url": "/tee.png", "sizes": ["S", "M", "L"]},
  {"id": "2", "name": "Jeans", "price": "2499.90", "category": "Bottoms"},
  {"id": 3, "name": "Socks", "price": 99.5, "category": "Misc", "sizes": []}
]`

func newBackend(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			calls++
			if r.Method != http.MethodGet || r.URL.Path != "/api/products" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		},
	))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestFetchProducts(t *testing.T) {
	srv, calls := newBackend(t, http.StatusOK, productsJSON)
	c := catalogapi.New(srv.URL+"/api/", srv.Client())

	ps, err := c.FetchProducts(t.Context())
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Equal(t, 1, *calls)

	assert.Equal(t, "1", ps[0].ID)
	assert.Equal(t, "Tee", ps[0].Name)
	assert.Equal(t, "/tee.png", ps[0].PhotoURL)
	assert.Equal(t, []string{"S", "M", "L"}, ps[0].Sizes)
	assert.True(t, decimal.NewFromInt(500).Equal(ps[0].Price))

	assert.Equal(t, "2", ps[1].ID)
	assert.Nil(t, ps[1].Sizes)
	assert.True(t, decimal.RequireFromString("2499.90").Equal(ps[1].Price))

	assert.NotNil(t, ps[2].Sizes)
	assert.Empty(t, ps[2].Sizes)
}

func TestFetchProductsFailure(t *testing.T) {
	t.Run("UnexpectedStatus", func(t *testing.T) {
		srv, calls := newBackend(t, http.StatusBadGateway, "upstream down")
		c := catalogapi.New(srv.URL+"/api", srv.Client())

		_, err := c.FetchProducts(t.Context())
		require.ErrorIs(t, err, catalogapi.ErrUnexpectedStatus)
		assert.Contains(t, err.Error(), "502")
		assert.Equal(t, 1, *calls, "single attempt")
	})

	t.Run("MalformedBody", func(t *testing.T) {
		srv, _ := newBackend(t, http.StatusOK, `{"products": []}`)
		c := catalogapi.New(srv.URL+"/api", srv.Client())

		_, err := c.FetchProducts(t.Context())
		assert.Error(t, err)
	})

	t.Run("Unreachable", func(t *testing.T) {
		srv, _ := newBackend(t, http.StatusOK, productsJSON)
		srv.Close()
		c := catalogapi.New(srv.URL+"/api", nil)

		_, err := c.FetchProducts(t.Context())
		assert.Error(t, err)
	})
}
