// Command fakestore serves a deterministic WooCommerce REST API for local
// development and demos.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmcdole/wooterm/internal/fakestore"
)

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1:8099", "listen address")
		key      = flag.String("key", "ck_test", "accepted consumer key")
		secret   = flag.String("secret", "cs_test", "accepted consumer secret")
		latency  = flag.Duration("latency", 300*time.Millisecond, "delay added to every response")
		products = flag.Int("products", fakestore.DefaultSizes.Products, "number of products")
		orders   = flag.Int("orders", fakestore.DefaultSizes.Orders, "number of orders")
		reviews  = flag.Int("reviews", fakestore.DefaultSizes.Reviews, "number of reviews")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(*addr, logger, fakestore.Sizes{Products: *products, Orders: *orders, Reviews: *reviews},
		fakestore.WithCredentials(*key, *secret),
		fakestore.WithLatency(*latency),
		fakestore.WithLogger(logger),
	); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(addr string, logger *slog.Logger, sizes fakestore.Sizes, opts ...fakestore.Option) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           fakestore.New(fakestore.NewCatalog(sizes), opts...).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fake store listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
