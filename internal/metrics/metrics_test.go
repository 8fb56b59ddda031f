package metrics

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"lrucache/internal/cache"
)

func populated(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.New(cache.Config{Capacity: 2})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")
	c.Get("zzz")
	c.Put("c", 3) // evicts b
	return c
}

func TestRegister_ExposesCacheStats(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	if err := Register(reg, "lru", populated(t)); err != nil {
		t.Fatalf("register: %v", err)
	}

	const want = `
# HELP lru_cache_capacity Maximum number of entries the cache holds
# TYPE lru_cache_capacity gauge
lru_cache_capacity 2
# HELP lru_cache_entries Current number of entries in the cache
# TYPE lru_cache_entries gauge
lru_cache_entries 2
# HELP lru_cache_evictions_total Total number of least-recently-used evictions
# TYPE lru_cache_evictions_total counter
lru_cache_evictions_total 1
# HELP lru_cache_hits_total Total number of lookups that found the key
# TYPE lru_cache_hits_total counter
lru_cache_hits_total 1
# HELP lru_cache_misses_total Total number of lookups that did not find the key
# TYPE lru_cache_misses_total counter
lru_cache_misses_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want)); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestRegister_DuplicateFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := populated(t)
	if err := Register(reg, "lru", c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := Register(reg, "lru", c); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestRegister_ConflictLeavesRegistryUnchanged(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "lru",
		Name:      "cache_entries",
		Help:      "Entries owned by someone else",
	}))

	if err := Register(reg, "lru", populated(t)); err == nil {
		t.Fatalf("expected conflicting registration to fail")
	}
	n, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the pre-existing series, got %d", n)
	}
}

func TestServer_ShutdownIsCleanExit(t *testing.T) {
	srv := NewServer("127.0.0.1:0", prometheus.NewRegistry())
	if srv.server.ReadHeaderTimeout <= 0 {
		t.Fatalf("expected a read header timeout")
	}

	errc := srv.StartAsync()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("expected nil after shutdown, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestServer_Endpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg, "lru", populated(t)); err != nil {
		t.Fatalf("register: %v", err)
	}
	ts := httptest.NewServer(NewServer(":0", reg).Handler())
	defer ts.Close()

	body := get(t, ts.URL+"/health")
	if body != "OK" {
		t.Fatalf("health: expected OK, got %q", body)
	}

	body = get(t, ts.URL+"/metrics")
	if !strings.Contains(body, "lru_cache_entries 2") {
		t.Fatalf("metrics body missing entries gauge:\n%s", body)
	}
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestReporter_LogsAndCloses(t *testing.T) {
	var out syncBuffer
	r := NewReporter(populated(t), 10*time.Millisecond, log.New(&out, "", 0))

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) && !strings.Contains(out.String(), "cache stats:") {
		time.Sleep(5 * time.Millisecond)
	}
	line := out.String()
	if !strings.Contains(line, "entries=2/2 hits=1 misses=1 evictions=1 hit_ratio=0.50") {
		t.Fatalf("unexpected report: %q", line)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close again: %v", err)
	}
}

func TestReporter_DisabledInterval(t *testing.T) {
	var out syncBuffer
	r := NewReporter(populated(t), 0, log.New(&out, "", 0))
	time.Sleep(20 * time.Millisecond)
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if out.String() != "" {
		t.Fatalf("expected no output, got %q", out.String())
	}
}
