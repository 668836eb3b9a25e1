package port

import (
	"context"
	"sync"

	"github.com/niksmo/naran-storefront/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

type CatalogFetcher interface {
	FetchProducts(context.Context) ([]domain.Product, error)
}

type CartStorage interface {
	LoadCart(ctx context.Context, key string) ([]domain.CartItem, error)
	StoreCart(ctx context.Context, key string, items []domain.CartItem) error
}

type ClientEventsProducer interface {
	ProduceEvent(context.Context, domain.ClientEvent) error
}

type CartActivityReader interface {
	AddedToCartCount(productID string) int64
}

type CartActivityProcessor interface {
	runnerContextWg
	closer
}

type CartActivityView interface {
	CartActivityReader
	runnerContextWg
}

// A Storefront is the inbound side of the core: sessions, actions and rendering.
type Storefront interface {
	OpenSession(ctx context.Context, sessionID string) (string, error)
	Dispatch(ctx context.Context, sessionID string, a domain.Action) error
	Render(ctx context.Context, sessionID string) (domain.StorefrontView, error)
	Present(ctx context.Context, sessionID string) (domain.StorefrontView, error)
}
