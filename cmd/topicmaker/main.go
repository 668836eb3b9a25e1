package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lovoo/goka"
	"github.com/niksmo/naran-storefront/config"
	"github.com/niksmo/naran-storefront/internal/adapter"
	"github.com/niksmo/naran-storefront/pkg/sigctx"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	partitions        = 3
	replicationFactor = 3
	deletePolicy      = "delete"
	compactPolicy     = "compact"
	loopSuffix        = "-loop"
)

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()

	cl := createClient(cfg.Broker)
	defer cl.Close()

	group := cfg.Broker.Consumers.CartActivityGroup
	streams := []string{cfg.Broker.Topics.ClientEvents, group + loopSuffix}
	table := toGroupTable(group)

	printStart(append(streams, table))
	defer printComplete(time.Now())

	// client events and the goka loop stream
	if err := makeTopics(sigCtx, cl, deletePolicy, streams...); err != nil {
		printFail(err)
		return
	}

	// cart activity counters
	if err := makeTopics(sigCtx, cl, compactPolicy, table); err != nil {
		printFail(err)
		return
	}
}

func createClient(broker config.Broker) *kadm.Client {
	opts := []kgo.Opt{kgo.SeedBrokers(broker.SeedBrokers...)}

	if broker.TLS.Enabled() {
		tlsConfig, err := adapter.MakeTLSConfig(
			broker.TLS.CA, broker.TLS.Cert, broker.TLS.Key,
		)
		if err != nil {
			panic(err)
		}
		opts = append(opts, kgo.DialTLSConfig(tlsConfig))
	}

	cl, err := kadm.NewOptClient(opts...)
	if err != nil {
		panic(err) // develop mistake
	}
	return cl
}

func makeTopics(
	ctx context.Context, cl *kadm.Client, cleanupPolicy string, topics ...string,
) error {
	minISR := "1"

	config := map[string]*string{
		"cleanup.policy":      &cleanupPolicy,
		"min.insync.replicas": &minISR,
	}

	responses, err := cl.CreateTopics(
		ctx,
		partitions,
		replicationFactor,
		config,
		topics...,
	)
	if err != nil {
		return err
	}

	var errs []error
	for _, res := range responses.Sorted() {
		if res.Err != nil {
			if errors.Is(res.Err, kerr.TopicAlreadyExists) {
				fmt.Printf("topic: %q already exists\n", res.Topic)
			} else {
				errs = append(errs, fmt.Errorf("%s: %w", res.Topic, res.Err))
			}
			continue
		}
		fmt.Printf("topic: %q successfully created\n", res.Topic)
	}

	return errors.Join(errs...)
}

func printStart(topics []string) {
	fmt.Println("initializing topics...")
	for _, t := range topics {
		fmt.Printf("\t- %q\n", t)
	}
	fmt.Println()
}

func printComplete(start time.Time) {
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}

func printFail(err error) {
	fmt.Printf("failed to create topics: \n%s\n", err)
}

func toGroupTable(group string) string {
	return string(goka.GroupTable(goka.Group(group)))
}
