package di

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-kvcache/cache"
	"github.com/goliatone/go-kvcache/instrument"
	"github.com/goliatone/go-kvcache/instrumentedcache"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Container wires a cache opened from configuration to its instrumented
// decorator. It owns the store and releases it on Close.
type Container struct {
	config       cache.Config
	cache        *cache.Cache
	instrumented *instrumentedcache.InstrumentedCache
	metrics      *instrument.Metrics
}

type containerOptions struct {
	registerer  prometheus.Registerer
	namespace   string
	tracer      trace.Tracer
	logger      *slog.Logger
	ids         cache.IdentifierGenerator
	historyOpts []instrument.HistoryOption
}

// Option configures a Container.
type Option func(*containerOptions)

// WithMetrics registers call metrics with reg under namespace.
func WithMetrics(reg prometheus.Registerer, namespace string) Option {
	return func(o *containerOptions) {
		o.registerer = reg
		o.namespace = namespace
	}
}

// WithTracer opens a span per instrumented call.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *containerOptions) {
		o.tracer = tracer
	}
}

// WithLogger logs cache activity and every instrumented call.
func WithLogger(logger *slog.Logger) Option {
	return func(o *containerOptions) {
		o.logger = logger
	}
}

// WithIDGenerator replaces the UUID key generator.
func WithIDGenerator(gen cache.IdentifierGenerator) Option {
	return func(o *containerOptions) {
		o.ids = gen
	}
}

// WithHistoryOptions configures the Store history recorder.
func WithHistoryOptions(opts ...instrument.HistoryOption) Option {
	return func(o *containerOptions) {
		o.historyOpts = append(o.historyOpts, opts...)
	}
}

// NewContainer validates config, opens the store and builds the
// instrumented cache. Store is counted and its history recorded, Get is
// counted. Tracing, metrics and logging wrap both when configured, outside
// the store backed behaviours.
func NewContainer(ctx context.Context, config cache.Config, opts ...Option) (*Container, error) {
	o := &containerOptions{namespace: "kvcache"}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	var cacheOpts []cache.Option
	if o.ids != nil {
		cacheOpts = append(cacheOpts, cache.WithIDGenerator(o.ids))
	}
	if o.logger != nil {
		cacheOpts = append(cacheOpts, cache.WithLogger(o.logger))
	}

	base, err := cache.Open(ctx, config, cacheOpts...)
	if err != nil {
		return nil, err
	}
	kv := base.KVStore()

	var metrics *instrument.Metrics
	if o.registerer != nil {
		metrics, err = instrument.NewMetrics(o.registerer, o.namespace)
		if err != nil {
			_ = base.Close()
			return nil, err
		}
	}

	storeStack := append(observers[any, string](o, metrics),
		instrument.CountCalls[any, string](kv),
		instrument.RecordHistory[any, string](kv, o.historyOpts...),
	)
	getStack := append(observers[string, instrumentedcache.Lookup](o, metrics),
		instrument.CountCalls[string, instrumentedcache.Lookup](kv),
	)

	return &Container{
		config:  config,
		cache:   base,
		metrics: metrics,
		instrumented: instrumentedcache.New(base,
			instrumentedcache.WithStoreWrappers(storeStack...),
			instrumentedcache.WithGetWrappers(getStack...),
		),
	}, nil
}

// NewContainerWithDefaults creates a container over the in-memory backend.
func NewContainerWithDefaults(ctx context.Context, opts ...Option) (*Container, error) {
	return NewContainer(ctx, cache.DefaultConfig(), opts...)
}

// observers builds the outer, in-process part of a stack.
func observers[A, R any](o *containerOptions, metrics *instrument.Metrics) []instrument.Wrapper[A, R] {
	var stack []instrument.Wrapper[A, R]
	if o.tracer != nil {
		stack = append(stack, instrument.TraceCalls[A, R](o.tracer))
	}
	if metrics != nil {
		stack = append(stack, instrument.ObserveCalls[A, R](metrics))
	}
	if o.logger != nil {
		stack = append(stack, instrument.LogCalls[A, R](o.logger))
	}
	return stack
}

// Cache returns the bare cache. Calls made on it are not instrumented.
func (c *Container) Cache() *cache.Cache {
	return c.cache
}

// Instrumented returns the instrumented cache.
func (c *Container) Instrumented() *instrumentedcache.InstrumentedCache {
	return c.instrumented
}

// Metrics returns the call metrics, nil unless WithMetrics was given.
func (c *Container) Metrics() *instrument.Metrics {
	return c.metrics
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// Close releases the store.
func (c *Container) Close() error {
	return c.instrumented.Close()
}
