package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/naran-storefront/internal/core/domain"
	"github.com/niksmo/naran-storefront/internal/core/port"
	"github.com/niksmo/naran-storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

var _ port.ClientEventsProducer = ClientEventsProducer{}

// A ClientEventsProducer used for produce [domain.ClientEvent].
// Records are keyed by session id, so events of one visitor stay ordered.
type ClientEventsProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewClientEventsProducer(
	opts ...ProducerOpt,
) (ClientEventsProducer, error) {
	const op = "NewClientEventsProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ClientEventsProducer{}, opErr(err, op)
		}
	}

	opPrefix := "ClientEventsProducer"
	return ClientEventsProducer{
		producer: producer{opPrefix: opPrefix, cl: options.cl},
		encoder:  options.encoder,
		opPrefix: opPrefix,
	}, nil
}

func (p ClientEventsProducer) Close() {
	p.producer.close()
}

func (p ClientEventsProducer) ProduceEvent(
	ctx context.Context, evt domain.ClientEvent,
) error {
	const op = "ProduceEvent"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(evt)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

func (p ClientEventsProducer) createRecord(
	evt domain.ClientEvent,
) (*kgo.Record, error) {
	const op = "createRecord"

	s := p.toSchema(evt)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{Key: []byte(s.SessionID), Value: b}, nil
}

func (ClientEventsProducer) toSchema(v domain.ClientEvent) schema.ClientEventV1 {
	return clientEventToSchemaV1(v)
}
