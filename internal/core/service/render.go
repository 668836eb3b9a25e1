package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/niksmo/naran-storefront/internal/core/domain"
)

// Render builds the page for the session from its current state.
// It does not change the state, so calling it twice yields the same view.
func (s *Storefront) Render(
	ctx context.Context, sessionID string,
) (domain.StorefrontView, error) {
	const op = "Storefront.Render"

	sess, err := s.lockedSession(ctx, sessionID)
	if err != nil {
		return domain.StorefrontView{}, fmt.Errorf("%s: %w", op, err)
	}
	defer sess.mu.Unlock()

	return s.view(sess), nil
}

// Present renders the page and consumes the pending notice in one step,
// so a notice is shown exactly once.
func (s *Storefront) Present(
	ctx context.Context, sessionID string,
) (domain.StorefrontView, error) {
	const op = "Storefront.Present"

	sess, err := s.lockedSession(ctx, sessionID)
	if err != nil {
		return domain.StorefrontView{}, fmt.Errorf("%s: %w", op, err)
	}
	defer sess.mu.Unlock()

	v := s.view(sess)
	sess.notice = ""
	return v, nil
}

// lockedSession returns the session with its lock held.
func (s *Storefront) lockedSession(
	ctx context.Context, sessionID string,
) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	return sess, nil
}

// view must be called with sess.mu held.
func (s *Storefront) view(sess *Session) domain.StorefrontView {
	v := domain.StorefrontView{
		Page:       sess.page,
		Categories: slices.Clone(sess.categories),
		Products:   s.renderProducts(sess.products),
		Cart:       s.renderCart(sess.cart),
		Checkout:   s.renderCheckout(sess.checkout),
		Notice:     sess.notice,
	}

	for _, page := range domain.Pages {
		v.Sections = append(v.Sections, domain.SectionView{
			ID:     page,
			Hidden: page != sess.page,
		})
	}

	if sess.contacts != nil {
		contacts := *sess.contacts
		v.Contacts = &contacts
	}

	return v
}
