package domain_test

import (
	"testing"

	"github.com/niksmo/naran-storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestSizeOptions(t *testing.T) {
	tests := []struct {
		name  string
		sizes []string
		want  []string
	}{
		{name: "Undeclared", sizes: nil, want: []string{"S", "M"}},
		{name: "Empty", sizes: []string{}, want: []string{}},
		{name: "Declared", sizes: []string{"XS", "XL"}, want: []string{"XS", "XL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.Product{Sizes: tt.sizes}
			assert.Equal(t, tt.want, p.SizeOptions())
		})
	}

	t.Run("DefaultsNotShared", func(t *testing.T) {
		opts := domain.Product{}.SizeOptions()
		opts[0] = "XXL"
		assert.Equal(t, []string{"S", "M"}, domain.DefaultSizes)
	})
}
