package probe

import (
	"context"
	"time"

	"github.com/hamed0406/sitestatus/internal/domain"
)

// Result is the outcome of probing one domain plus the detail that produced
// it. Only Outcome leaves the orchestrator; the rest is for logging.
//
// Fields:
//   - StatusCode: final HTTP status; 0 when the probe failed in transport.
//   - Method: method of the request that decided the outcome (HEAD or GET).
//   - Err: transport error, nil when a response was received.
type Result struct {
	Outcome    domain.Outcome
	StatusCode int
	Method     string
	LatencyMS  float64
	Err        error
}

// Prober checks a single domain. Implementations never fail: every error is
// folded into the returned Outcome.
type Prober interface {
	Probe(ctx context.Context, host string, timeout time.Duration) Result
}
