package domain

import "github.com/shopspring/decimal"

// AllCategory is the synthetic category that selects the whole catalog.
const AllCategory = "All products"

// DefaultSizes are offered for products that declare no sizes.
var DefaultSizes = []string{"S", "M"}

type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	PhotoURL    string

	// Sizes is nil when the backend did not declare any.
	Sizes []string
}

// SizeOptions returns the product sizes or [DefaultSizes] when none were
// declared. An explicitly empty list stays empty.
func (p Product) SizeOptions() []string {
	if p.Sizes == nil {
		return append([]string(nil), DefaultSizes...)
	}
	return p.Sizes
}

type CategoryControl struct {
	Name   string
	Active bool
}
