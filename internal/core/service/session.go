package service

import (
	"sync"
	"time"

	"github.com/niksmo/naran-storefront/internal/core/domain"
)

// A Session is the state of one visitor's storefront page.
type Session struct {
	mu sync.Mutex

	id         string
	cart       domain.Cart
	page       domain.Page
	categories []domain.CategoryControl
	products   []domain.Product
	contacts   *domain.ContactsView
	notice     string
	checkout   checkoutState

	// guarded by Storefront.mu
	lastSeen time.Time
}

type checkoutState struct {
	revealed  bool
	widget    *domain.MapWidget
	refreshes int
}
