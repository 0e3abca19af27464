package di

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-kvcache/cache"
	"github.com/goliatone/go-kvcache/instrument"
	"github.com/goliatone/go-kvcache/pkg/testsupport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func redisConfig(t *testing.T) cache.Config {
	t.Helper()
	mr, _ := testsupport.NewRedis(t)
	config := cache.DefaultConfig()
	config.Backend = cache.BackendRedis
	config.Redis.Addr = mr.Addr()
	return config
}

func TestIntegration_StoreAndGetThroughContainer(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainer(ctx, redisConfig(t))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer container.Close()

	c := container.Instrumented()
	keys := make(map[string]any)
	for _, v := range []any{"alpha", 12, 2.25} {
		key, err := c.Store(ctx, v)
		if err != nil {
			t.Fatalf("Store(%v): %v", v, err)
		}
		keys[key] = v
	}

	for key, want := range keys {
		raw, found, err := c.Get(ctx, key)
		if err != nil || !found {
			t.Fatalf("Get(%s) = found %v, err %v", key, found, err)
		}
		if string(raw) != fmt.Sprint(want) {
			t.Errorf("Get(%s) = %q, want %v", key, raw, want)
		}
	}

	if n, _ := c.Calls(ctx, "Store"); n != 3 {
		t.Errorf("expected 3 Store calls, got %d", n)
	}
	if n, _ := c.Calls(ctx, "Get"); n != 3 {
		t.Errorf("expected 3 Get calls, got %d", n)
	}

	h, err := c.History(ctx, "Store")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if h.Len() != 3 || len(h.Outputs) != 3 {
		t.Errorf("expected 3 recorded calls, got %d inputs / %d outputs", h.Len(), len(h.Outputs))
	}
}

func TestIntegration_BareCacheIsNotInstrumented(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainerWithDefaults(ctx)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer container.Close()

	if _, err := container.Cache().Store(ctx, "quiet"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if n, _ := container.Instrumented().Calls(ctx, "Store"); n != 0 {
		t.Errorf("bare cache calls should not be counted, got %d", n)
	}
}

func TestIntegration_ObservabilityStack(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(ctx)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	container, err := NewContainer(ctx, redisConfig(t),
		WithMetrics(reg, "kvcache"),
		WithTracer(tp.Tracer("kvcache")),
		WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer container.Close()

	c := container.Instrumented()
	key, err := c.Store(ctx, "traced")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, _, err := c.Get(ctx, key); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if n, err := testutil.GatherAndCount(reg, "kvcache_instrument_calls_total"); err != nil || n != 2 {
		t.Errorf("expected one call series per operation, got %d (%v)", n, err)
	}

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	if strings.Join(names, ",") != "cache.store,cache.get" {
		t.Errorf("unexpected spans: %v", names)
	}

	if !strings.Contains(logs.String(), "operation=cache.store") {
		t.Errorf("expected call logs, got:\n%s", logs.String())
	}
	if n, _ := c.Calls(ctx, "Store"); n != 1 {
		t.Errorf("expected store backed counter alongside metrics, got %d", n)
	}
}

func TestIntegration_Replay(t *testing.T) {
	ctx := context.Background()
	n := 0
	container, err := NewContainer(ctx, redisConfig(t),
		WithIDGenerator(cache.IdentifierFunc(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		})),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer container.Close()

	c := container.Instrumented()
	for _, v := range []any{"foo", "bar"} {
		if _, err := c.Store(ctx, v); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := c.Replay(ctx, &buf, "Store"); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	want := "cache.store was called 2 times:\ncache.store(foo) -> id-1\ncache.store(bar) -> id-2\n"
	if buf.String() != want {
		t.Errorf("Replay() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestIntegration_HistoryOptions(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainerWithDefaults(ctx,
		WithHistoryOptions(instrument.WithFailurePolicy(instrument.SkipFailures)),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer container.Close()

	c := container.Instrumented()
	_, _ = c.Store(ctx, []string{"unsupported"})

	h, err := c.History(ctx, "Store")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h.Inputs) != 1 || len(h.Outputs) != 0 {
		t.Errorf("expected skipped failure output, got %v / %v", h.Inputs, h.Outputs)
	}
}

func TestIntegration_ConcurrentCounting(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainer(ctx, redisConfig(t))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer container.Close()

	c := container.Instrumented()
	const goroutines, perGoroutine = 8, 25

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				if _, err := c.Store(ctx, fmt.Sprintf("%d-%d", g, i)); err != nil {
					t.Errorf("Store: %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	want := int64(goroutines * perGoroutine)
	if n, _ := c.Calls(ctx, "Store"); n != want {
		t.Errorf("expected %d Store calls, got %d", want, n)
	}
	h, err := c.History(ctx, "Store")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if int64(len(h.Inputs)) != want || int64(len(h.Outputs)) != want {
		t.Errorf("expected %d history entries, got %d / %d", want, len(h.Inputs), len(h.Outputs))
	}
}
