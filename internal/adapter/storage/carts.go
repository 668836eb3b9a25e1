package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/naran-storefront/internal/core/domain"
	"github.com/niksmo/naran-storefront/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.CartStorage = (*CartsRepository)(nil)

// cartItem is the stored form of a cart line. Field names are shared with
// carts written by the browser storefront.
type cartItem struct {
	ItemID    string      `json:"itemId"`
	ProductID looseString `json:"productId"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Size      string      `json:"size"`
	Quantity  int         `json:"quantity"`
}

// looseString decodes from a JSON string or number. Browser carts hold
// product ids either way.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n)
	return nil
}

// CartsRepository keeps each cart as one JSON value in the kv_store table.
type CartsRepository struct {
	sqldb sqldb
}

func NewCartsRepository(sqldb sqldb) CartsRepository {
	return CartsRepository{sqldb}
}

func (r CartsRepository) LoadCart(
	ctx context.Context, key string,
) ([]domain.CartItem, error) {
	const op = "CartsRepository.LoadCart"

	query := `SELECT value FROM kv_store WHERE key = $1;`

	var value string
	err := r.sqldb.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := decodeCart([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func (r CartsRepository) StoreCart(
	ctx context.Context, key string, items []domain.CartItem,
) error {
	const op = "CartsRepository.StoreCart"
	log := slog.With("op", op)

	value, err := encodeCart(items)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at;
	`

	if _, err := r.sqldb.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("cart stored", "key", key, "nItems", len(items))
	return nil
}

func encodeCart(items []domain.CartItem) ([]byte, error) {
	vs := make([]cartItem, len(items))
	for i, item := range items {
		vs[i] = cartItem{
			ItemID:    item.ItemID,
			ProductID: looseString(item.ProductID),
			Name:      item.Name,
			Price:     json.Number(item.Price.String()),
			Size:      item.Size,
			Quantity:  item.Quantity,
		}
	}
	return json.Marshal(vs)
}

// decodeCart reports [domain.ErrMalformed] for anything that is not a list
// of well-formed cart lines.
func decodeCart(b []byte) ([]domain.CartItem, error) {
	var vs []cartItem
	if err := json.Unmarshal(b, &vs); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformed, err)
	}

	items := make([]domain.CartItem, len(vs))
	for i, v := range vs {
		price, err := decimal.NewFromString(v.Price.String())
		if err != nil {
			return nil, fmt.Errorf("%w: item %d price: %w", domain.ErrMalformed, i, err)
		}
		if v.ItemID == "" || v.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d", domain.ErrMalformed, i)
		}

		items[i] = domain.CartItem{
			ItemID:    v.ItemID,
			ProductID: string(v.ProductID),
			Name:      v.Name,
			Price:     price,
			Size:      v.Size,
			Quantity:  v.Quantity,
		}
	}
	return items, nil
}
