package domain

import "github.com/shopspring/decimal"

// SizeUnknown is used when an add-to-cart request carries no size.
const SizeUnknown = "N/A"

type (
	CartItem struct {
		ItemID    string
		ProductID string
		Name      string
		Price     decimal.Decimal
		Size      string
		Quantity  int
	}

	// A Cart keeps at most one item per (product, size) pair,
	// in the order the pairs were first added.
	Cart struct {
		Items []CartItem
	}
)

func NewItemID(productID, size string) string {
	return productID + "-" + size
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Add puts one unit of the product in the given size into the cart,
// merging with an existing line when the pair is already there.
func (c *Cart) Add(p Product, size string) CartItem {
	itemID := NewItemID(p.ID, size)
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			c.Items[i].Quantity++
			return c.Items[i]
		}
	}

	item := CartItem{
		ItemID:    itemID,
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Size:      size,
		Quantity:  1,
	}
	c.Items = append(c.Items, item)
	return item
}

// Remove drops every line with the item id and reports whether any was found.
func (c *Cart) Remove(itemID string) bool {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ItemID != itemID {
			kept = append(kept, item)
		}
	}
	removed := len(kept) != len(c.Items)
	clear(c.Items[len(kept):])
	c.Items = kept
	return removed
}
