package service

import (
	"context"

	"github.com/niksmo/naran-storefront/internal/core/domain"
)

const contactsTitle = "Contacts"

func (s *Storefront) handleNavigate(
	_ context.Context, sess *Session, a domain.Action,
) error {
	s.navigate(sess, a.Page)
	return nil
}

// navigate makes page the only visible section. A page that does not exist
// leaves every section hidden.
func (s *Storefront) navigate(sess *Session, page domain.Page) {
	sess.page = page

	switch page {
	case domain.PageCatalog:
		s.filterByCategory(sess, domain.AllCategory)
	case domain.PageCart:
		// the cart view is derived from sess.cart on every render
	case domain.PageContacts:
		sess.contacts = &domain.ContactsView{
			Title:        contactsTitle,
			SupportURL:   s.settings.SupportURL,
			SupportLabel: s.settings.SupportLabel,
		}
	}
}

// handleCheckout reveals the map and hides the checkout control. The map
// widget is created on the first checkout only; every checkout requests
// a layout refresh.
func (s *Storefront) handleCheckout(
	_ context.Context, sess *Session, _ domain.Action,
) error {
	c := &sess.checkout
	c.revealed = true
	if c.widget == nil {
		widget := s.settings.Map
		c.widget = &widget
	}
	c.refreshes++
	return nil
}

func (s *Storefront) renderCheckout(c checkoutState) domain.CheckoutView {
	v := domain.CheckoutView{
		ButtonHidden: c.revealed,
		MapHidden:    !c.revealed,
		Refreshes:    c.refreshes,
		RefreshDelay: mapRefreshDelay,
	}
	if c.widget != nil {
		widget := *c.widget
		v.Map = &widget
	}
	return v
}
