package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hamed0406/sitestatus/internal/domain"
)

// DefaultUserAgent mimics a desktop browser; some hosts refuse bare clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36"

// DefaultTimeout is used when a caller passes a non-positive timeout.
const DefaultTimeout = 5 * time.Second

// maxDrain bounds how much of a GET body is read before the connection is
// released.
const maxDrain = 64 << 10

// HTTPProber probes https://{host} with HEAD, escalating to GET when HEAD
// answers with an error status.
type HTTPProber struct {
	Client    *http.Client
	UserAgent string
}

func NewHTTPProber(userAgent string) *HTTPProber {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPProber{
		Client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		UserAgent: userAgent,
	}
}

// Probe runs the two-stage check. timeout applies to each request on its own,
// so a probe that escalates can take up to twice as long.
func (p *HTTPProber) Probe(ctx context.Context, host string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	start := time.Now()
	target := "https://" + host

	method := http.MethodHead
	code, err := p.do(ctx, method, target, timeout)
	if err == nil && code >= 400 {
		method = http.MethodGet
		code, err = p.do(ctx, method, target, timeout)
	}
	latency := time.Since(start).Seconds() * 1000 // ms

	if err != nil {
		return Result{Outcome: domain.Unreachable, Method: method, LatencyMS: latency, Err: err}
	}
	return Result{
		Outcome:    domain.Classify(code),
		StatusCode: code,
		Method:     method,
		LatencyMS:  latency,
	}
}

func (p *HTTPProber) do(ctx context.Context, method, target string, timeout time.Duration) (int, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	return resp.StatusCode, nil
}
