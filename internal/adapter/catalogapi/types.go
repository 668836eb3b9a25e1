package catalogapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/niksmo/naran-storefront/internal/core/domain"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          productID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	PhotoURL    string          `json:"photo_url"`
	Sizes       []string        `json:"sizes"`
}

// productID accepts both JSON numbers and strings. The backend emits
// numeric ids while carts and forms carry them as text.
type productID string

func (id *productID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = productID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = productID(n.String())
	return nil
}

func toDomain(ps []Product) []domain.Product {
	products := make([]domain.Product, len(ps))
	for i, p := range ps {
		products[i] = domain.Product{
			ID:          string(p.ID),
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Category:    p.Category,
			PhotoURL:    p.PhotoURL,
			Sizes:       p.Sizes,
		}
	}
	return products
}
