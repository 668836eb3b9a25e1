package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/niksmo/naran-storefront/config"
	"github.com/niksmo/naran-storefront/internal/adapter"
	"github.com/niksmo/naran-storefront/internal/adapter/catalogapi"
	"github.com/niksmo/naran-storefront/internal/adapter/httphandler"
	"github.com/niksmo/naran-storefront/internal/adapter/kafka"
	"github.com/niksmo/naran-storefront/internal/adapter/storage"
	"github.com/niksmo/naran-storefront/internal/core/domain"
	"github.com/niksmo/naran-storefront/internal/core/port"
	"github.com/niksmo/naran-storefront/internal/core/service"
	"github.com/niksmo/naran-storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type events struct {
	producer  *kafka.ClientEventsProducer
	processor port.CartActivityProcessor
	view      port.CartActivityView
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	sqldb      storage.SQLDB
	carts      storage.CartsRepository
	catalog    *catalogapi.Client
	events     events
	storefront *service.Storefront
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initCatalog()
	if cfg.Broker.Enabled {
		app.initEvents()
	}
	app.initCore()
	app.initInbound()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	sqldb, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqldb = sqldb
	app.carts = storage.NewCartsRepository(sqldb)
}

func (app *App) initCatalog() {
	httpClient := &http.Client{Timeout: app.cfg.APITimeout}
	app.catalog = catalogapi.New(app.cfg.APIURL, httpClient)
}

func (app *App) initEvents() {
	const op = "App.initEvents"

	brokerCfg := app.cfg.Broker
	tlsConfig := app.brokerTLS()

	srOpts := []sr.ClientOpt{sr.URLs(brokerCfg.SchemaRegistryURLs...)}
	if tlsConfig != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(tlsConfig))
		kafka.UseTLS(tlsConfig)
	}

	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	topic := brokerCfg.Topics.ClientEvents
	eventSerde, err := schema.NewClientEventV1Serde(
		app.ctx, schema.NewSchemaCreater(srClient), topic+"-value",
	)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewClientEventsProducer(
		kafka.ProducerClientOpt(app.ctx, brokerCfg.SeedBrokers, topic, tlsConfig),
		kafka.ProducerEncoderOpt(eventSerde),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	group := brokerCfg.Consumers.CartActivityGroup
	processor, err := kafka.NewCartActivityProc(
		brokerCfg.SeedBrokers, topic, group, eventSerde,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	view, err := kafka.NewCartActivityView(brokerCfg.SeedBrokers, group)
	if err != nil {
		app.fallDown(op, err)
	}

	app.events = events{
		producer:  &producer,
		processor: processor,
		view:      view,
	}
}

func (app *App) brokerTLS() *tls.Config {
	const op = "App.brokerTLS"

	files := app.cfg.Broker.TLS
	if !files.Enabled() {
		return nil
	}

	tlsConfig, err := adapter.MakeTLSConfig(files.CA, files.Cert, files.Key)
	if err != nil {
		app.fallDown(op, err)
	}
	return tlsConfig
}

func (app *App) initCore() {
	const op = "App.initCore"

	// Typed nils would pass the service's nil checks.
	var (
		producer port.ClientEventsProducer
		activity port.CartActivityReader
	)
	if app.events.producer != nil {
		producer = app.events.producer
	}
	if app.events.view != nil {
		activity = app.events.view
	}

	shop := app.cfg.Shop
	app.storefront = service.New(
		app.catalog,
		app.carts,
		producer,
		activity,
		service.Settings{
			CartKeyPrefix:  app.cfg.Storage.KeyPrefix,
			Currency:       shop.Currency,
			SupportURL:     shop.SupportURL,
			SupportLabel:   shop.SupportLabel,
			PublishTimeout: app.cfg.Broker.PublishTimeout,
			Map: domain.MapWidget{
				Lat:     app.cfg.Map.Lat,
				Lng:     app.cfg.Map.Lng,
				Zoom:    app.cfg.Map.Zoom,
				TileURL: app.cfg.Map.TileURL,
			},
		},
	)

	// The storefront still serves sessions and carts, the catalog section
	// shows the unavailable message.
	if err := app.storefront.LoadCatalog(app.ctx); err != nil {
		slog.Error("failed to load catalog", "op", op, "err", err)
	}
}

func (app *App) initInbound() {
	router := httphandler.NewRouter(httphandler.HandlerConfig{
		Storefront:   app.storefront,
		Currency:     app.cfg.Shop.Currency,
		SecureCookie: app.cfg.Shop.SecureCookie,
	})
	app.httpServer = httphandler.NewHTTPServer(app.cfg.HTTPServerAddr, router)
}

// Run starts the background components and the http server.
// stopFn is called when any of them stops on its own.
//
// Blocks current goroutine while the cart activity components are preparing.
func (app *App) Run(stopFn context.CancelFunc) {
	if app.events.processor != nil {
		var wg sync.WaitGroup
		wg.Add(2)
		go app.events.processor.Run(app.ctx, stopFn, &wg)
		go app.events.view.Run(app.ctx, stopFn, &wg)
		wg.Wait()
	}

	go app.storefront.RunEvictor(
		app.ctx, app.cfg.Session.EvictInterval, app.cfg.Session.IdleTTL,
	)

	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)

	if app.events.producer != nil {
		app.events.producer.Close()
		app.events.processor.Close()
	}

	app.sqldb.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
