package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	// A StorefrontView is everything needed to draw the page for one session.
	StorefrontView struct {
		Page       Page
		Sections   []SectionView
		Categories []CategoryControl
		Products   ProductsView
		Cart       CartView
		Contacts   *ContactsView
		Checkout   CheckoutView
		Notice     string
	}

	SectionView struct {
		ID     Page
		Hidden bool
	}

	// ProductsView holds either a message or product cards, never both.
	ProductsView struct {
		Message string
		Cards   []ProductCard
	}

	ProductCard struct {
		ID          string
		Name        string
		Description string
		PhotoURL    string
		Category    string
		Price       decimal.Decimal
		Sizes       []string
		AddedToCart int64
	}

	// CartView holds either a message or cart lines with a total.
	CartView struct {
		Message string
		Lines   []CartLine
		Total   string
	}

	CartLine struct {
		ItemID string
		Text   string
	}

	ContactsView struct {
		Title        string
		SupportURL   string
		SupportLabel string
	}

	CheckoutView struct {
		ButtonHidden bool
		MapHidden    bool
		Map          *MapWidget
		Refreshes    int
		RefreshDelay time.Duration
	}

	MapWidget struct {
		Lat     float64
		Lng     float64
		Zoom    int
		TileURL string
	}
)
