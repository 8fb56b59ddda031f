package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"lrucache/internal/cache"
	"lrucache/internal/config"
	"lrucache/internal/loader"
	"lrucache/internal/metrics"
	"lrucache/internal/store"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := start(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

// start parses args and runs until done or interrupted. All deferred cleanup
// has run by the time it returns.
func start(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Parse(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	// Signal-aware context is the root of ownership for long-lived background work.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, stdout)
}

func run(ctx context.Context, cfg config.Config, out io.Writer) error {
	runID := uuid.NewString()
	log.Printf("run=%s lrucache starting: capacity=%d", runID, cfg.Capacity)

	c, err := cache.New(cache.Config{
		Capacity: cfg.Capacity,
		OnEvict: func(key string, value int) {
			log.Printf("run=%s evicted %s=%d", runID, key, value)
		},
	})
	if err != nil {
		return err
	}

	walkthrough(out, c)

	s, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := readThrough(ctx, out, loader.New(c, s)); err != nil {
		return err
	}

	if cfg.MetricsAddr == "" {
		return nil
	}
	return serve(ctx, cfg, c)
}

// walkthrough replays the classic access-order LRU demo against c.
func walkthrough(out io.Writer, c *cache.Cache) {
	fmt.Fprintln(out, "=== LRU Cache Demo ===")

	fmt.Fprintln(out, "\n1. Adding initial items:")
	c.Put("A", 1)
	c.Put("B", 2)
	c.Put("C", 3)
	printCache(out, "After adding A, B, C", c)

	// Touch A then B; whatever was not touched drifts toward the LRU end.
	fmt.Fprintln(out, "\n2. Accessing items (updates LRU order):")
	fmt.Fprintf(out, "Get A: %d\n", c.Get("A"))
	fmt.Fprintf(out, "Get B: %d\n", c.Get("B"))
	printCache(out, "After accessing A, B", c)

	fmt.Fprintln(out, "\n3. Adding new item (triggers eviction):")
	c.Put("D", 4)
	printCache(out, "After adding D", c)

	fmt.Fprintln(out, "\n4. Verify eviction:")
	fmt.Fprintf(out, "Get C: %d\n", c.Get("C"))
	fmt.Fprintf(out, "Get A: %d\n", c.Get("A"))

	fmt.Fprintln(out, "\n5. Update existing key:")
	c.Put("A", 10)
	printCache(out, "After updating A to 10", c)
}

func printCache(out io.Writer, msg string, c *cache.Cache) {
	fmt.Fprintf(out, "%s:\n", msg)
	for _, e := range c.Entries() {
		fmt.Fprintf(out, "  %s -> %d\n", e.Key, e.Value)
	}
	fmt.Fprintln(out, "  (Order: Least Recent -> Most Recent)")
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	if cfg.Redis.Addr == "" {
		return store.NewMemory(), func() {}, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	r, err := store.NewRedis(pingCtx, cfg.RedisOptions())
	if err != nil {
		return nil, nil, err
	}
	log.Printf("using redis store at %s", cfg.Redis.Addr)
	return r, func() {
		if err := r.Close(); err != nil {
			log.Printf("redis close: %v", err)
		}
	}, nil
}

// readThrough writes one key through the loader and reads back one hit and
// one miss.
func readThrough(ctx context.Context, out io.Writer, l *loader.Loader) error {
	fmt.Fprintln(out, "\n6. Read-through via backing store:")

	if err := l.Put(ctx, "E", 5); err != nil {
		return err
	}
	v, err := l.Get(ctx, "E")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Load E: %d\n", v)

	if _, err := l.Get(ctx, "missing"); errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(out, "Load missing: %d (not in store)\n", cache.NotFound)
	} else if err != nil {
		return err
	}
	return nil
}

func serve(ctx context.Context, cfg config.Config, c *cache.Cache) error {
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg, cfg.Namespace, c); err != nil {
		return err
	}

	reporter := metrics.NewReporter(c, cfg.ReportEvery, nil)
	defer func() {
		// Close is idempotent; safe to call in defer.
		if err := reporter.Close(); err != nil {
			log.Printf("reporter close: %v", err)
		}
	}()

	srv := metrics.NewServer(cfg.MetricsAddr, reg)
	errc := srv.StartAsync()
	log.Printf("serving metrics on %s", cfg.MetricsAddr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Println("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
