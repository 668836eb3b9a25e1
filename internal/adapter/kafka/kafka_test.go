package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/lovoo/goka"
	"github.com/lovoo/goka/tester"
	"github.com/niksmo/naran-storefront/internal/core/domain"
	"github.com/niksmo/naran-storefront/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

// avroSerde encodes bare Avro without registry framing.
type avroSerde struct {
	s avro.Schema
}

func newAvroSerde() avroSerde {
	return avroSerde{schema.ClientEventV1Avro()}
}

func (a avroSerde) Encode(v any) ([]byte, error) {
	return avro.Marshal(a.s, v)
}

func (a avroSerde) Decode(data []byte, v any) error {
	return avro.Unmarshal(a.s, data, v)
}

type MockProducerClient struct {
	mock.Mock
}

func (m *MockProducerClient) ProduceSync(
	ctx context.Context, rs ...*kgo.Record,
) kgo.ProduceResults {
	args := m.Called(ctx, rs)
	return args.Get(0).(kgo.ProduceResults)
}

func (m *MockProducerClient) Close() {
	m.Called()
}

func clientOpt(cl ProducerClient) ProducerOpt {
	return func(opts *producerOpts) error {
		opts.cl = cl
		return nil
	}
}

func addToCartEvent(sessionID, productID string) domain.ClientEvent {
	return domain.ClientEvent{
		SessionID: sessionID,
		Action: domain.Action{
			Type: domain.ActionAddToCart, ProductID: productID, Size: "M",
		},
		OccurredAt: time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC),
	}
}

func TestClientEventsProducer(t *testing.T) {
	t.Run("TooFewOpts", func(t *testing.T) {
		assert.Panics(t, func() {
			_, _ = NewClientEventsProducer(ProducerEncoderOpt(newAvroSerde()))
		})
	})

	t.Run("NilEncoder", func(t *testing.T) {
		_, err := NewClientEventsProducer(
			clientOpt(new(MockProducerClient)), ProducerEncoderOpt(nil),
		)
		assert.Error(t, err)
	})

	t.Run("KeyedBySession", func(t *testing.T) {
		cl := new(MockProducerClient)
		serde := newAvroSerde()
		p, err := NewClientEventsProducer(clientOpt(cl), ProducerEncoderOpt(serde))
		require.NoError(t, err)

		evt := addToCartEvent("session-1", "42")
		cl.On("ProduceSync", mock.Anything, mock.MatchedBy(
			func(rs []*kgo.Record) bool {
				if len(rs) != 1 || string(rs[0].Key) != "session-1" {
					return false
				}
				var got schema.ClientEventV1
				if err := serde.Decode(rs[0].Value, &got); err != nil {
					return false
				}
				return got.Action == "add_to_cart" && got.ProductID == "42" &&
					got.Size == "M" && got.OccurredAt.Equal(evt.OccurredAt)
			},
		)).Return(kgo.ProduceResults{{}}).Once()

		require.NoError(t, p.ProduceEvent(t.Context(), evt))
		cl.AssertExpectations(t)
	})

	t.Run("BrokerError", func(t *testing.T) {
		cl := new(MockProducerClient)
		p, err := NewClientEventsProducer(
			clientOpt(cl), ProducerEncoderOpt(newAvroSerde()),
		)
		require.NoError(t, err)

		brokerErr := errors.New("not enough replicas")
		cl.On("ProduceSync", mock.Anything, mock.Anything).
			Return(kgo.ProduceResults{{Err: brokerErr}})

		err = p.ProduceEvent(t.Context(), addToCartEvent("s", "1"))
		assert.ErrorIs(t, err, brokerErr)
	})

	t.Run("Close", func(t *testing.T) {
		cl := new(MockProducerClient)
		cl.On("Close").Once()
		p, err := NewClientEventsProducer(
			clientOpt(cl), ProducerEncoderOpt(newAvroSerde()),
		)
		require.NoError(t, err)

		p.Close()
		cl.AssertExpectations(t)
	})
}

// failingSerde rejects every payload the way a registry serde does
// for an unknown schema id.
type failingSerde struct {
	err error
}

func (f failingSerde) Encode(any) ([]byte, error) { return nil, f.err }

func (f failingSerde) Decode([]byte, any) error { return f.err }

func TestClientEventCodec(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		c := newClientEventCodec(newAvroSerde())
		in := clientEventToSchemaV1(addToCartEvent("alice", "1"))

		data, err := c.Encode(in)
		require.NoError(t, err)

		out, err := c.Decode(data)
		require.NoError(t, err)
		got, ok := out.(schema.ClientEventV1)
		require.True(t, ok)
		assert.Equal(t, in.SessionID, got.SessionID)
		assert.Equal(t, in.ProductID, got.ProductID)
		assert.Equal(t, in.Action, got.Action)
	})

	t.Run("InvalidValueType", func(t *testing.T) {
		c := newClientEventCodec(newAvroSerde())
		_, err := c.Encode("add_to_cart")
		assert.ErrorIs(t, err, ErrInvalidValueType)
	})

	t.Run("EmptyPayload", func(t *testing.T) {
		c := newClientEventCodec(newAvroSerde())
		_, err := c.Decode(nil)
		assert.ErrorIs(t, err, ErrEmptyPayload)
	})

	t.Run("DecoderError", func(t *testing.T) {
		decodeErr := errors.New("unknown schema id")
		c := newClientEventCodec(failingSerde{decodeErr})

		_, err := c.Decode([]byte{0, 0, 0, 0, 7})
		assert.ErrorIs(t, err, decodeErr)
	})
}

func TestWaitViewRunning(t *testing.T) {
	t.Run("Running", func(t *testing.T) {
		states := make(chan goka.State, 3)
		states <- goka.State(goka.ViewStateIdle)
		states <- goka.State(goka.ViewStateCatchUp)
		states <- goka.State(goka.ViewStateRunning)

		assert.True(t, waitViewRunning(t.Context(), states))
	})

	t.Run("ObserverClosed", func(t *testing.T) {
		states := make(chan goka.State, 1)
		states <- goka.State(goka.ViewStateIdle)
		close(states)

		assert.False(t, waitViewRunning(t.Context(), states))
	})

	t.Run("ContextDone", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()

		assert.False(t, waitViewRunning(ctx, make(chan goka.State)))
	})
}

func TestCartActivityProcessor(t *testing.T) {
	const (
		input = "client_events"
		group = "cart-activity"
	)

	tt := tester.New(t)
	proc, err := NewCartActivityProc(
		nil, input, group, newAvroSerde(), goka.WithTester(tt),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	proc.Run(ctx, cancel, &wg)
	wg.Wait()

	emit := func(evt domain.ClientEvent) {
		tt.Consume(input, evt.SessionID, clientEventToSchemaV1(evt))
	}

	emit(addToCartEvent("alice", "1"))
	emit(addToCartEvent("bob", "1"))
	emit(addToCartEvent("alice", "2"))
	emit(domain.ClientEvent{
		SessionID: "alice",
		Action:    domain.Action{Type: domain.ActionFilter, Category: "Tops"},
	})
	emit(domain.ClientEvent{
		SessionID: "bob",
		Action:    domain.Action{Type: domain.ActionRemoveFromCart, ItemID: "1-M"},
	})

	table := goka.GroupTable(goka.Group(group))
	assert.Equal(t, int64(2), tt.TableValue(table, "1"))
	assert.Equal(t, int64(1), tt.TableValue(table, "2"))
	assert.Nil(t, tt.TableValue(table, "alice"))

	proc.Close()
}

type stubTable map[string]any

func (s stubTable) Get(key string) (any, error) {
	if v, ok := s[key]; ok {
		if err, isErr := v.(error); isErr {
			return nil, err
		}
		return v, nil
	}
	return nil, nil
}

func TestCartActivityViewCount(t *testing.T) {
	v := CartActivityView{
		opPrefix: "CartActivityView",
		table: stubTable{
			"1":      int64(12),
			"broken": errors.New("partition not found"),
			"odd":    "twelve",
		},
	}

	assert.Equal(t, int64(12), v.AddedToCartCount("1"))
	assert.Zero(t, v.AddedToCartCount("2"))
	assert.Zero(t, v.AddedToCartCount("broken"))
	assert.Zero(t, v.AddedToCartCount("odd"))
}
