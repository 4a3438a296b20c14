// cmd/chronoindexd/main.go
// chronoindexd serves a set of named skip-aggregation time series over HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/brightflow/chronoindex/internal/config"
	"github.com/brightflow/chronoindex/internal/index"
	"github.com/brightflow/chronoindex/internal/registry"
	"github.com/brightflow/chronoindex/internal/telemetry"
	"github.com/brightflow/chronoindex/pkg/combine"
)

// server wires the registry, metrics, and tracing into an HTTP mux.
type server struct {
	cfg        config.Config
	reg        *registry.Registry
	metrics    *telemetry.Metrics
	log        *zap.Logger
	httpServer *http.Server
	cancel     context.CancelFunc
}

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv("CHRONOINDEXD_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "chronoindexd: %v\n", err)
		os.Exit(1)
	}

	logger, err := telemetry.InitLogger(cfg.Production)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chronoindexd: failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := telemetry.InitTracing(cfg.JaegerEndpoint); err != nil {
		logger.Warn("failed to initialize tracing", zap.Error(err))
	}

	srv := newServer(cfg, logger)
	srv.start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	srv.shutdown()
}

func newServer(cfg config.Config, logger *zap.Logger) *server {
	reg := prometheus.NewRegistry()
	_, cancel := context.WithCancel(context.Background())

	s := &server{
		cfg:     cfg,
		reg:     registry.New(),
		metrics: telemetry.NewMetrics(reg),
		log:     logger,
		cancel:  cancel,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/push", s.handlePush)
	mux.HandleFunc("/query/greedy", s.handleGreedyQuery)
	mux.HandleFunc("/query/constrained", s.handleConstrainedQuery)
	mux.HandleFunc("/query/range", s.handleRangeQuery)
	mux.HandleFunc("/query/suffix", s.handleSuffixQuery)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *server) start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("http server error", zap.Error(err))
		}
	}()
	s.log.Info("chronoindexd started", zap.String("addr", s.cfg.ListenAddr))
}

func (s *server) shutdown() {
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := telemetry.Shutdown(ctx); err != nil {
		s.log.Warn("tracing shutdown error", zap.Error(err))
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Warn("http server shutdown error", zap.Error(err))
	}
}

func (s *server) series(name string) *registry.Series {
	return s.reg.CreateOrGet(name, 1, func(int) int { return s.cfg.RecentCacheSize }, combine.Sum[int64]())
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *server) handlePush(w http.ResponseWriter, r *http.Request) {
	tracer := telemetry.GetTracer("http")
	ctx, span := telemetry.StartSpan(r.Context(), tracer, "push",
		attribute.String("http.method", r.Method),
	)
	defer span.End()

	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("series")
	t, errT := strconv.ParseUint(r.URL.Query().Get("t"), 10, 64)
	v, errV := strconv.ParseInt(r.URL.Query().Get("v"), 10, 64)
	if name == "" || errT != nil || errV != nil {
		telemetry.RecordError(ctx, fmt.Errorf("missing or invalid series, t, or v"))
		s.metrics.ObserveError(name, "push")
		http.Error(w, "missing or invalid series, t, or v", http.StatusBadRequest)
		return
	}

	telemetry.AddSpanAttributes(ctx, attribute.String("series", name), attribute.Int64("t", int64(t)))

	start := time.Now()
	series := s.series(name)
	if s.cfg.EnableStats && series.Part.Stats() == nil {
		series.Part.EnableStats()
	}
	series.Part.Push(t, v)
	s.metrics.ObservePush(name, time.Since(start))
	s.metrics.SetSeriesCount(s.reg.Len())

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleGreedyQuery(w http.ResponseWriter, r *http.Request) {
	s.handleQuery(w, r, "greedy", func(series *registry.Series, q map[string][]string) (int64, uint64, bool, error) {
		t, err := parseUint(q, "t")
		if err != nil {
			return 0, 0, false, err
		}
		v, x, ok := series.Part.GreedyQuery(t)
		return v, x, ok, nil
	})
}

func (s *server) handleConstrainedQuery(w http.ResponseWriter, r *http.Request) {
	s.handleQuery(w, r, "constrained", func(series *registry.Series, q map[string][]string) (int64, uint64, bool, error) {
		t, err := parseUint(q, "t")
		if err != nil {
			return 0, 0, false, err
		}
		rr, err := parseUint(q, "r")
		if err != nil {
			return 0, 0, false, err
		}
		v, x, ok := series.Part.ConstrainedQuery(t, rr)
		return v, x, ok, nil
	})
}

func (s *server) handleRangeQuery(w http.ResponseWriter, r *http.Request) {
	s.handleQuery(w, r, "range", func(series *registry.Series, q map[string][]string) (int64, uint64, bool, error) {
		l, err := parseUint(q, "l")
		if err != nil {
			return 0, 0, false, err
		}
		rr, err := parseUint(q, "r")
		if err != nil {
			return 0, 0, false, err
		}
		v, ok := index.RangeQuery(series.Part, l, rr)
		return v, rr, ok, nil
	})
}

func (s *server) handleSuffixQuery(w http.ResponseWriter, r *http.Request) {
	s.handleQuery(w, r, "suffix", func(series *registry.Series, q map[string][]string) (int64, uint64, bool, error) {
		t, err := parseUint(q, "t")
		if err != nil {
			return 0, 0, false, err
		}
		v, x, ok := index.SuffixQuery(series.Part, t)
		return v, x, ok, nil
	})
}

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request, kind string, run func(*registry.Series, map[string][]string) (int64, uint64, bool, error)) {
	tracer := telemetry.GetTracer("http")
	ctx, span := telemetry.StartSpan(r.Context(), tracer, "query."+kind)
	defer span.End()

	name := r.URL.Query().Get("series")
	seriesVal, ok := s.reg.Get(name)
	if name == "" || !ok {
		telemetry.RecordError(ctx, fmt.Errorf("unknown series %q", name))
		s.metrics.ObserveError(name, kind)
		http.Error(w, "unknown series", http.StatusNotFound)
		return
	}

	start := time.Now()
	v, x, found, err := run(seriesVal, r.URL.Query())
	s.metrics.ObserveQuery(name, kind, time.Since(start))
	if err != nil {
		telemetry.RecordError(ctx, err)
		s.metrics.ObserveError(name, kind)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "%d %d\n", v, x)
}

func parseUint(q map[string][]string, key string) (uint64, error) {
	vals, ok := q[key]
	if !ok || len(vals) == 0 {
		return 0, fmt.Errorf("missing query parameter %q", key)
	}
	n, err := strconv.ParseUint(vals[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid query parameter %q: %w", key, err)
	}
	return n, nil
}
