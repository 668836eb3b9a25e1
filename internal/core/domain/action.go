package domain

import "time"

type ActionType string

const (
	ActionNavigate       ActionType = "navigate"
	ActionFilter         ActionType = "filter"
	ActionAddToCart      ActionType = "add_to_cart"
	ActionRemoveFromCart ActionType = "remove_from_cart"
	ActionCheckout       ActionType = "checkout"
)

type Page string

const (
	PageCatalog  Page = "catalog"
	PageCart     Page = "cart-page"
	PageContacts Page = "contacts-page"
)

// Pages lists the page sections in navigation order.
var Pages = []Page{PageCatalog, PageCart, PageContacts}

// An Action is one user interaction. Only the fields relevant
// to the action type are set.
type Action struct {
	Type      ActionType
	Page      Page
	Category  string
	ProductID string
	Size      string
	ItemID    string
}

type ClientEvent struct {
	SessionID  string
	Action     Action
	OccurredAt time.Time
}
