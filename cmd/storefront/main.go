package main

import (
	"context"
	"time"

	"github.com/niksmo/naran-storefront/config"
	"github.com/niksmo/naran-storefront/internal/app"
	"github.com/niksmo/naran-storefront/pkg/sigctx"
)

const closeTimeout = 10 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	storefront := app.New(sigCtx, cfg)

	storefront.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	storefront.Close(ctx)
}
