package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"
	"github.com/lovoo/goka/codec"
	"github.com/niksmo/naran-storefront/internal/core/domain"
	"github.com/niksmo/naran-storefront/internal/core/port"
	"github.com/niksmo/naran-storefront/pkg/schema"
)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A clientEventCodec used for serde [schema.ClientEventV1]
type clientEventCodec struct {
	serde Serde
}

func newClientEventCodec(s Serde) clientEventCodec {
	return clientEventCodec{s}
}

func (c clientEventCodec) Encode(v any) ([]byte, error) {
	const op = "clientEventCodec.Encode"
	if _, ok := v.(schema.ClientEventV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c clientEventCodec) Decode(data []byte) (any, error) {
	const op = "clientEventCodec.Decode"
	if len(data) == 0 {
		return nil, opErr(ErrEmptyPayload, op)
	}
	var s schema.ClientEventV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

var _ port.CartActivityProcessor = (*CartActivityProcessor)(nil)

// A CartActivityProcessor counts add-to-cart events per product.
//
// Client events are keyed by session, so each add-to-cart event is looped
// back keyed by product id and counted in the group table.
type CartActivityProcessor struct {
	opPrefix string
	proc     processor
}

func NewCartActivityProc(
	seedBrokers []string,
	inputStream string,
	group string,
	clientEventSerde Serde,
	opts ...goka.ProcessorOption,
) (*CartActivityProcessor, error) {
	const op = "NewCartActivityProc"

	p := CartActivityProcessor{opPrefix: "CartActivityProcessor"}

	eventCodec := newClientEventCodec(clientEventSerde)
	gg := goka.DefineGroup(goka.Group(group),
		goka.Input(goka.Stream(inputStream), eventCodec, p.processFn),
		goka.Loop(eventCodec, p.countFn),
		goka.Persist(new(codec.Int64)),
	)

	opts = append([]goka.ProcessorOption{withNonlogProcOpt()}, opts...)
	gp, err := goka.NewProcessor(seedBrokers, gg, opts...)
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{opPrefix: p.opPrefix, gp: gp}
	return &p, nil
}

func (p *CartActivityProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *CartActivityProcessor) Close() {
	p.proc.close()
}

func (p *CartActivityProcessor) processFn(ctx goka.Context, msg any) {
	evt, _ := msg.(schema.ClientEventV1)
	if evt.Action != string(domain.ActionAddToCart) || evt.ProductID == "" {
		return
	}
	ctx.Loopback(evt.ProductID, evt)
}

func (p *CartActivityProcessor) countFn(ctx goka.Context, msg any) {
	const op = "countFn"

	n, _ := ctx.Value().(int64)
	n++
	ctx.SetValue(n)

	slog.Debug(
		"add to cart counted",
		"op", makeOp(p.opPrefix, op), "productID", ctx.Key(), "count", n,
	)
}
