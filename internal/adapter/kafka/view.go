package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"
	"github.com/lovoo/goka/codec"
	"github.com/niksmo/naran-storefront/internal/core/port"
)

type tableGetter interface {
	Get(key string) (any, error)
}

var _ port.CartActivityView = (*CartActivityView)(nil)

// A CartActivityView reads the counters kept by [CartActivityProcessor].
type CartActivityView struct {
	opPrefix string
	gv       *goka.View
	table    tableGetter
}

func NewCartActivityView(
	seedBrokers []string, group string, opts ...goka.ViewOption,
) (*CartActivityView, error) {
	const op = "NewCartActivityView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(group)),
		new(codec.Int64),
		opts...,
	)
	if err != nil {
		return nil, opErr(err, op)
	}

	return &CartActivityView{
		opPrefix: "CartActivityView",
		gv:       gv,
		table:    gv,
	}, nil
}

// Run starts the view in the background. wg is released once the view
// has caught up with the table or ctx is done.
func (v *CartActivityView) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "Run"
	log := slog.With("op", makeOp(v.opPrefix, op))

	defer wg.Done()

	go func() {
		defer stopFn()
		if err := v.gv.Run(ctx); err != nil {
			log.Error("stopped", "err", err)
			return
		}
		log.Info("stopped")
	}()

	log.Info("recovering...")
	states := v.gv.ObserveStateChanges()
	defer states.Stop()

	if waitViewRunning(ctx, states.C()) {
		log.Info("running")
	}
}

// waitViewRunning reports whether the view reached the running state
// before ctx was done or the observer was closed.
func waitViewRunning(ctx context.Context, states <-chan goka.State) bool {
	running := goka.State(goka.ViewStateRunning)
	for {
		select {
		case <-ctx.Done():
			return false
		case s, ok := <-states:
			if !ok {
				return false
			}
			if s == running {
				return true
			}
		}
	}
}

// AddedToCartCount returns how many times the product was added to a cart.
// Lookup failures count as zero, the hint is optional.
func (v *CartActivityView) AddedToCartCount(productID string) int64 {
	const op = "AddedToCartCount"

	value, err := v.table.Get(productID)
	if err != nil {
		slog.Warn(
			"failed to get counter",
			"op", makeOp(v.opPrefix, op), "productID", productID, "err", err,
		)
		return 0
	}

	switch n := value.(type) {
	case nil:
		return 0
	case int64:
		return n
	default:
		slog.Error(
			"unexpected type of data",
			"op", makeOp(v.opPrefix, op), "type", fmt.Sprintf("%T", value),
		)
		return 0
	}
}
