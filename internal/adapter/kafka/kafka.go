package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lovoo/goka"
	"github.com/niksmo/naran-storefront/internal/core/domain"
	"github.com/niksmo/naran-storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
	ErrEmptyPayload     = errors.New("empty payload")
)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

// ProducerClientOpt connects a [kgo.Client] producing to the topic.
// tlsConfig is optional.
func ProducerClientOpt(
	ctx context.Context, seedBrokers []string, topic string, tlsConfig *tls.Config,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kOpts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
		}
		if tlsConfig != nil {
			kOpts = append(kOpts, kgo.DialTLSConfig(tlsConfig))
		}

		cl, err := kgo.NewClient(kOpts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

// UseTLS makes goka processors and views dial brokers over TLS.
// It replaces the goka global config and must run before they are created.
func UseTLS(tlsConfig *tls.Config) {
	cfg := goka.DefaultConfig()
	cfg.Net.TLS.Enable = true
	cfg.Net.TLS.Config = tlsConfig
	goka.ReplaceGlobalConfig(cfg)
}

func withNonlogProcOpt() goka.ProcessorOption {
	return goka.WithLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func clientEventToSchemaV1(v domain.ClientEvent) (s schema.ClientEventV1) {
	s.SessionID = v.SessionID
	s.Action = string(v.Action.Type)
	s.Page = string(v.Action.Page)
	s.Category = v.Action.Category
	s.ProductID = v.Action.ProductID
	s.Size = v.Action.Size
	s.ItemID = v.Action.ItemID
	s.OccurredAt = v.OccurredAt.UTC()
	return
}
