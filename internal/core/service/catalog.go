package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/niksmo/naran-storefront/internal/core/domain"
)

const (
	MsgCatalogUnavailable = "Error: failed to load products from the server."
	MsgNoProducts         = "There are no products in this category yet."
)

type catalog struct {
	mu       sync.RWMutex
	products []domain.Product
	loadErr  error
}

func (c *catalog) snapshot() ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.products, c.loadErr
}

func (c *catalog) find(productID string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == productID {
			return p, true
		}
	}
	return domain.Product{}, false
}

// LoadCatalog fetches the product list once. On failure the catalog stays
// empty and every session shows [MsgCatalogUnavailable] in place of products.
func (s *Storefront) LoadCatalog(ctx context.Context) error {
	const op = "Storefront.LoadCatalog"
	log := slog.With("op", op)

	products, err := s.fetcher.FetchProducts(ctx)

	s.catalog.mu.Lock()
	defer s.catalog.mu.Unlock()

	if err != nil {
		s.catalog.products = nil
		s.catalog.loadErr = err
		log.Error("failed to load products", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.catalog.products = products
	s.catalog.loadErr = nil
	log.Info("catalog loaded", "nProducts", len(products))
	return nil
}

func (s *Storefront) handleFilter(
	_ context.Context, sess *Session, a domain.Action,
) error {
	s.filterByCategory(sess, a.Category)
	return nil
}

// renderCategories builds one control per distinct category in first-seen
// order after [domain.AllCategory]. The first control starts active
// regardless of the filter that is displayed.
func (s *Storefront) renderCategories(sess *Session) {
	products, err := s.catalog.snapshot()
	if err != nil {
		sess.categories = nil
		return
	}

	names := []string{domain.AllCategory}
	for _, p := range products {
		if !slices.Contains(names, p.Category) {
			names = append(names, p.Category)
		}
	}

	controls := make([]domain.CategoryControl, len(names))
	for i, name := range names {
		controls[i] = domain.CategoryControl{Name: name, Active: i == 0}
	}
	sess.categories = controls
}

func (s *Storefront) filterByCategory(sess *Session, category string) {
	products, _ := s.catalog.snapshot()

	if category == domain.AllCategory {
		sess.products = products
	} else {
		var filtered []domain.Product
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		sess.products = filtered
	}

	for i := range sess.categories {
		sess.categories[i].Active = sess.categories[i].Name == category
	}
}

func (s *Storefront) renderProducts(products []domain.Product) domain.ProductsView {
	if _, err := s.catalog.snapshot(); err != nil {
		return domain.ProductsView{Message: MsgCatalogUnavailable}
	}

	if len(products) == 0 {
		return domain.ProductsView{Message: MsgNoProducts}
	}

	cards := make([]domain.ProductCard, len(products))
	for i, p := range products {
		cards[i] = domain.ProductCard{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			PhotoURL:    p.PhotoURL,
			Category:    p.Category,
			Price:       p.Price,
			Sizes:       p.SizeOptions(),
			AddedToCart: s.addedToCart(p.ID),
		}
	}
	return domain.ProductsView{Cards: cards}
}

func (s *Storefront) addedToCart(productID string) int64 {
	if s.activity == nil {
		return 0
	}
	return s.activity.AddedToCartCount(productID)
}
