package round

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/sitestatus/internal/domain"
	"github.com/hamed0406/sitestatus/internal/probe"
)

// ErrNoDomains is returned when a round is requested for an empty list.
var ErrNoDomains = errors.New("round: no domains configured")

const (
	DefaultConcurrency = 10
	DefaultTimeout     = 5 * time.Second
)

type Orchestrator struct {
	Logger      *zap.Logger
	Prober      probe.Prober
	Concurrency int
	Timeout     time.Duration
}

func NewOrchestrator(
	logger *zap.Logger,
	prober probe.Prober,
	concurrency int,
	timeout time.Duration,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{
		Logger:      logger,
		Prober:      prober,
		Concurrency: concurrency,
		Timeout:     timeout,
	}
}

// Run probes every domain with at most Concurrency probes in flight and
// returns one row per domain, sorted case-insensitively by name.
//
// The round is detached from ctx cancellation: every probe runs to completion
// and a dropped caller never turns pending probes into Unreachable rows.
// Values carried by ctx are still visible to the prober.
func (o *Orchestrator) Run(ctx context.Context, domains []string) (domain.Round, error) {
	return o.RunWithID(ctx, uuid.NewString(), domains)
}

// RunWithID is Run with a caller-supplied round id for log correlation.
func (o *Orchestrator) RunWithID(ctx context.Context, roundID string, domains []string) (domain.Round, error) {
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}
	return o.run(context.WithoutCancel(ctx), roundID, domains), nil
}

func (o *Orchestrator) run(ctx context.Context, roundID string, domains []string) domain.Round {
	start := time.Now()
	log := o.Logger.With(zap.String("round_id", roundID))

	type slot struct {
		i   int
		row domain.StatusRow
	}
	results := make(chan slot, len(domains))
	sem := make(chan struct{}, o.Concurrency)

	for i, d := range domains {
		i, d := i, d
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()

			out := o.Prober.Probe(ctx, d, o.Timeout)
			fields := []zap.Field{
				zap.String("domain", d),
				zap.Stringer("outcome", out.Outcome),
				zap.String("method", out.Method),
				zap.Int("status", out.StatusCode),
				zap.Float64("latency_ms", out.LatencyMS),
			}
			if out.Err != nil {
				fields = append(fields, zap.Error(out.Err))
			}
			log.Debug("probe_done", fields...)

			results <- slot{i: i, row: domain.StatusRow{Domain: d, Outcome: out.Outcome}}
		}()
	}

	// Rows land in input slots as they arrive so that names differing only
	// by case sort the same way every round.
	rows := make(domain.Round, len(domains))
	for range domains {
		s := <-results
		rows[s.i] = s.row
	}
	domain.SortRows(rows)

	c := rows.Counts()
	log.Info("round_done",
		zap.Int("domains", len(rows)),
		zap.Int("healthy", c.Healthy),
		zap.Int("erroring", c.Erroring),
		zap.Int("unreachable", c.Unreachable),
		zap.Duration("duration", time.Since(start)),
	)
	return rows
}
