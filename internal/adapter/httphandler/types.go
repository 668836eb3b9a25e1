package httphandler

import (
	"html/template"
	"net/http"

	"github.com/niksmo/naran-storefront/internal/core/domain"
)

// Form fields of POST /actions.
const (
	fieldAction    = "action"
	fieldPage      = "page"
	fieldCategory  = "category"
	fieldProductID = "product_id"
	fieldSize      = "size"
	fieldItemID    = "item_id"
)

func actionFromForm(r *http.Request) domain.Action {
	return domain.Action{
		Type:      domain.ActionType(r.PostFormValue(fieldAction)),
		Page:      domain.Page(r.PostFormValue(fieldPage)),
		Category:  r.PostFormValue(fieldCategory),
		ProductID: r.PostFormValue(fieldProductID),
		Size:      r.PostFormValue(fieldSize),
		ItemID:    r.PostFormValue(fieldItemID),
	}
}

type (
	pageData struct {
		Currency   string
		Sections   map[string]bool
		Categories []domain.CategoryControl
		Products   productsData
		Cart       domain.CartView
		Contacts   *domain.ContactsView
		Checkout   checkoutData
		Notice     string
	}

	productsData struct {
		Message string
		Cards   []cardData
	}

	cardData struct {
		ID          string
		Name        string
		Description template.HTML
		PhotoURL    string
		Category    string
		Price       string
		Sizes       []string
		AddedToCart int64
	}

	checkoutData struct {
		ButtonHidden   bool
		MapHidden      bool
		Map            *domain.MapWidget
		Refreshes      int
		RefreshDelayMs int64
	}
)

func (h StorefrontHandler) toPageData(v domain.StorefrontView) pageData {
	data := pageData{
		Currency:   h.currency,
		Sections:   make(map[string]bool, len(v.Sections)),
		Categories: v.Categories,
		Products:   productsData{Message: v.Products.Message},
		Cart:       v.Cart,
		Contacts:   v.Contacts,
		Checkout: checkoutData{
			ButtonHidden:   v.Checkout.ButtonHidden,
			MapHidden:      v.Checkout.MapHidden,
			Map:            v.Checkout.Map,
			Refreshes:      v.Checkout.Refreshes,
			RefreshDelayMs: v.Checkout.RefreshDelay.Milliseconds(),
		},
		Notice: v.Notice,
	}

	for _, s := range v.Sections {
		data.Sections[string(s.ID)] = !s.Hidden
	}

	for _, c := range v.Products.Cards {
		data.Products.Cards = append(data.Products.Cards, cardData{
			ID:          c.ID,
			Name:        c.Name,
			Description: h.rich.Render(c.Description),
			PhotoURL:    c.PhotoURL,
			Category:    c.Category,
			Price:       c.Price.String(),
			Sizes:       c.Sizes,
			AddedToCart: c.AddedToCart,
		})
	}
	return data
}
