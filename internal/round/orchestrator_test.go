package round

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitestatus/internal/domain"
	"github.com/hamed0406/sitestatus/internal/probe"
)

// --- fakes ---

// fakeProber answers from a fixed table; unknown hosts are Unreachable.
type fakeProber struct {
	outcomes map[string]domain.Outcome
	delay    func(host string) time.Duration
}

func (f *fakeProber) Probe(ctx context.Context, host string, timeout time.Duration) probe.Result {
	if f.delay != nil {
		time.Sleep(f.delay(host))
	}
	o, ok := f.outcomes[host]
	if !ok {
		return probe.Result{Outcome: domain.Unreachable, Err: errors.New("no such host")}
	}
	return probe.Result{Outcome: o, StatusCode: 200, Method: "HEAD"}
}

// countingProber records the high-water mark of concurrent calls.
type countingProber struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
	hold     time.Duration
}

func (c *countingProber) Probe(ctx context.Context, host string, timeout time.Duration) probe.Result {
	c.calls.Add(1)
	n := c.inFlight.Add(1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(c.hold)
	c.inFlight.Add(-1)
	return probe.Result{Outcome: domain.Healthy, StatusCode: 200}
}

// --- tests ---

func TestRun_ExampleOrdering(t *testing.T) {
	p := &fakeProber{outcomes: map[string]domain.Outcome{
		"beta.example":  domain.Healthy,
		"Alpha.example": domain.Healthy,
	}}
	o := NewOrchestrator(zap.NewNop(), p, 10, time.Second)

	got, err := o.Run(context.Background(), []string{"beta.example", "Alpha.example"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := domain.Round{
		{Domain: "Alpha.example", Outcome: domain.Healthy},
		{Domain: "beta.example", Outcome: domain.Healthy},
	}
	if len(got) != len(want) {
		t.Fatalf("want %d rows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: want %+v got %+v", i, want[i], got[i])
		}
	}
}

func TestRun_CompleteDespiteFailures(t *testing.T) {
	p := &fakeProber{outcomes: map[string]domain.Outcome{
		"ok.example":     domain.Healthy,
		"errors.example": domain.Erroring,
	}}
	o := NewOrchestrator(zap.NewNop(), p, 2, time.Second)

	domains := []string{"ok.example", "dead.invalid", "errors.example", "also-dead.invalid", "x.invalid"}
	got, err := o.Run(context.Background(), domains)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != len(domains) {
		t.Fatalf("want %d rows, got %d", len(domains), len(got))
	}

	byName := map[string]domain.Outcome{}
	for _, r := range got {
		byName[r.Domain] = r.Outcome
	}
	if byName["dead.invalid"] != domain.Unreachable {
		t.Fatalf("dead.invalid: want unreachable, got %v", byName["dead.invalid"])
	}
	if byName["errors.example"] != domain.Erroring {
		t.Fatalf("errors.example: want erroring, got %v", byName["errors.example"])
	}
	if byName["ok.example"] != domain.Healthy {
		t.Fatalf("ok.example: want healthy, got %v", byName["ok.example"])
	}
}

func TestRun_OrderIndependentOfTiming(t *testing.T) {
	domains := make([]string, 0, 30)
	outcomes := map[string]domain.Outcome{}
	for i := 0; i < 30; i++ {
		d := fmt.Sprintf("Host%02d.example", i)
		if i%2 == 0 {
			d = fmt.Sprintf("host%02d.example", i)
		}
		domains = append(domains, d)
		outcomes[d] = domain.Outcome(i % 3)
	}
	rng := rand.New(rand.NewSource(1))
	var mu sync.Mutex
	p := &fakeProber{
		outcomes: outcomes,
		delay: func(string) time.Duration {
			mu.Lock()
			defer mu.Unlock()
			return time.Duration(rng.Intn(5)) * time.Millisecond
		},
	}
	o := NewOrchestrator(zap.NewNop(), p, 8, time.Second)

	first, err := o.Run(context.Background(), domains)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := o.Run(context.Background(), domains)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("row %d differs between rounds: %+v vs %+v", i, first[i], second[i])
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].Domain[1:] > first[i].Domain[1:] {
			t.Fatalf("rows not sorted case-insensitively at %d: %q > %q", i, first[i-1].Domain, first[i].Domain)
		}
	}
}

func TestRun_ConcurrencyBound(t *testing.T) {
	p := &countingProber{hold: 20 * time.Millisecond}
	o := NewOrchestrator(zap.NewNop(), p, 3, time.Second)

	domains := make([]string, 20)
	for i := range domains {
		domains[i] = fmt.Sprintf("d%02d.example", i)
	}
	got, err := o.Run(context.Background(), domains)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 20 || p.calls.Load() != 20 {
		t.Fatalf("want 20 rows and 20 probes, got %d rows %d probes", len(got), p.calls.Load())
	}
	if peak := p.peak.Load(); peak > 3 {
		t.Fatalf("concurrency exceeded: peak %d > 3", peak)
	}
	if peak := p.peak.Load(); peak < 2 {
		t.Fatalf("expected probes to overlap, peak %d", peak)
	}
}

func TestRun_SlowProbeDoesNotSerializeOthers(t *testing.T) {
	p := &fakeProber{
		outcomes: map[string]domain.Outcome{"a.example": domain.Healthy, "b.example": domain.Healthy, "c.example": domain.Healthy},
		delay: func(host string) time.Duration {
			if host == "slow.invalid" {
				return 200 * time.Millisecond
			}
			return 100 * time.Millisecond
		},
	}
	o := NewOrchestrator(zap.NewNop(), p, 4, time.Second)

	start := time.Now()
	got, err := o.Run(context.Background(), []string{"slow.invalid", "a.example", "b.example", "c.example"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if el := time.Since(start); el > 450*time.Millisecond {
		t.Fatalf("round took %v; probes should run in parallel", el)
	}
	if got[3].Domain != "slow.invalid" || got[3].Outcome != domain.Unreachable {
		t.Fatalf("unexpected last row: %+v", got[3])
	}
}

func TestRun_IgnoresCallerCancellation(t *testing.T) {
	p := &fakeProber{
		outcomes: map[string]domain.Outcome{"a.example": domain.Healthy},
	}
	o := NewOrchestrator(zap.NewNop(), p, 1, time.Second)

	var sawCancel atomic.Bool
	wrapped := proberFunc(func(ctx context.Context, host string, timeout time.Duration) probe.Result {
		if ctx.Err() != nil {
			sawCancel.Store(true)
		}
		return p.Probe(ctx, host, timeout)
	})
	o.Prober = wrapped

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := o.Run(ctx, []string{"a.example"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sawCancel.Load() || got[0].Outcome != domain.Healthy {
		t.Fatalf("cancelled caller leaked into probe: %+v", got)
	}
}

func TestRun_PassesTimeout(t *testing.T) {
	var seen atomic.Int64
	o := NewOrchestrator(zap.NewNop(), proberFunc(func(_ context.Context, _ string, timeout time.Duration) probe.Result {
		seen.Store(int64(timeout))
		return probe.Result{Outcome: domain.Healthy}
	}), 1, 1500*time.Millisecond)

	if _, err := o.Run(context.Background(), []string{"a.example"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if time.Duration(seen.Load()) != 1500*time.Millisecond {
		t.Fatalf("want timeout 1.5s passed to prober, got %v", time.Duration(seen.Load()))
	}
}

func TestRun_EmptyListIsError(t *testing.T) {
	o := NewOrchestrator(zap.NewNop(), &fakeProber{}, 10, time.Second)
	got, err := o.Run(context.Background(), nil)
	if !errors.Is(err, ErrNoDomains) {
		t.Fatalf("want ErrNoDomains, got %v", err)
	}
	if got != nil {
		t.Fatalf("want nil round, got %+v", got)
	}
}

func TestNewOrchestrator_ClampsSettings(t *testing.T) {
	o := NewOrchestrator(nil, &fakeProber{}, 0, 0)
	if o.Concurrency != 1 || o.Timeout != DefaultTimeout || o.Logger == nil {
		t.Fatalf("unexpected defaults: %+v", o)
	}
}

type proberFunc func(ctx context.Context, host string, timeout time.Duration) probe.Result

func (f proberFunc) Probe(ctx context.Context, host string, timeout time.Duration) probe.Result {
	return f(ctx, host, timeout)
}
