package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/naran-storefront/internal/core/domain"
)

const MsgCartEmpty = "Cart is empty."

func (s *Storefront) handleAddToCart(
	ctx context.Context, sess *Session, a domain.Action,
) error {
	const op = "Storefront.addToCart"

	product, ok := s.catalog.find(a.ProductID)
	if !ok {
		return nil
	}

	size := a.Size
	if size == "" {
		size = domain.SizeUnknown
	}

	sess.cart.Add(product, size)

	if err := s.saveCart(ctx, sess); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sess.notice = fmt.Sprintf(
		"\"%s (Size: %s)\" added to the cart!", product.Name, size,
	)
	return nil
}

func (s *Storefront) handleRemoveFromCart(
	ctx context.Context, sess *Session, a domain.Action,
) error {
	const op = "Storefront.removeFromCart"

	sess.cart.Remove(a.ItemID)

	if err := s.saveCart(ctx, sess); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storefront) renderCart(cart domain.Cart) domain.CartView {
	if cart.Empty() {
		return domain.CartView{Message: MsgCartEmpty}
	}

	lines := make([]domain.CartLine, len(cart.Items))
	for i, item := range cart.Items {
		lines[i] = domain.CartLine{
			ItemID: item.ItemID,
			Text: fmt.Sprintf(
				"%s (%s) × %d — %s %s",
				item.Name, item.Size, item.Quantity,
				item.LineTotal(), s.settings.Currency,
			),
		}
	}

	return domain.CartView{
		Lines: lines,
		Total: fmt.Sprintf("Total: %s %s", cart.Total(), s.settings.Currency),
	}
}

func (s *Storefront) cartKey(sessionID string) string {
	return s.settings.CartKeyPrefix + ":" + sessionID
}

func (s *Storefront) saveCart(ctx context.Context, sess *Session) error {
	return s.carts.StoreCart(ctx, s.cartKey(sess.id), sess.cart.Items)
}

// loadCart treats a missing or malformed stored cart as empty.
func (s *Storefront) loadCart(
	ctx context.Context, sessionID string,
) ([]domain.CartItem, error) {
	const op = "Storefront.loadCart"

	items, err := s.carts.LoadCart(ctx, s.cartKey(sessionID))
	switch {
	case err == nil:
		return items, nil
	case errors.Is(err, domain.ErrNotFound):
		return nil, nil
	case errors.Is(err, domain.ErrMalformed):
		slog.Warn("stored cart is malformed, starting empty", "op", op, "err", err)
		return nil, nil
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
}
