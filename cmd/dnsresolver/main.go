// Command dnsresolver runs a minimal recursive/forwarding DNS resolver: it
// accepts inbound UDP queries and answers them by walking the DNS
// delegation graph from the root name servers, one request at a time.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keskinalper/dnsresolver/internal/resolver"
	"github.com/keskinalper/dnsresolver/internal/serve"
)

func main() {
	if err := run(); err != nil {
		slog.Error("dnsresolver exited with error", "err", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		listenAddr  string
		metricsAddr string
		reusePort   bool
		timeout     time.Duration
		iterCap     int
		rootHints   string
	)
	flag.StringVar(&listenAddr, "listen", envOr("DNS_LISTEN_ADDR", ":2053"), "UDP address to listen on")
	flag.StringVar(&metricsAddr, "metrics", envOr("DNS_METRICS_ADDR", ""), "address to serve Prometheus metrics on (disabled if empty)")
	flag.BoolVar(&reusePort, "reuseport", envOrBool("DNS_REUSE_PORT", false), "set SO_REUSEPORT on the listening socket")
	flag.DurationVar(&timeout, "upstream-timeout", envOrDuration("DNS_UPSTREAM_TIMEOUT", resolver.DefaultUpstreamTimeout), "per-hop upstream send/receive timeout")
	flag.IntVar(&iterCap, "iteration-cap", envOrInt("DNS_ITERATION_CAP", resolver.DefaultIterationCap), "maximum delegation hops per resolve")
	flag.StringVar(&rootHints, "root-hints", envOr("DNS_ROOT_HINTS", ""), "comma-separated root server IPv4 addresses (defaults to the published root hint set)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport := resolver.NewTransport()
	transport.Timeout = timeout

	res := resolver.New(transport.Send, logger)
	res.IterationCap = iterCap
	if rootHints != "" {
		res.RootHints = splitHints(rootHints)
	}

	srv := serve.New(listenAddr, res, logger)
	srv.ReusePort = reusePort

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics listening", "addr", metricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "err", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return srv.Close()
	}
}

func splitHints(raw string) []string {
	parts := strings.Split(raw, ",")
	hints := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			hints = append(hints, p)
		}
	}
	return hints
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envOrBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
