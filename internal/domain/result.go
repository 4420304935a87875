package domain

import (
	"fmt"
	"strings"
)

// Outcome is the three-valued classification of a single probe.
type Outcome int

const (
	Unreachable Outcome = iota // transport failure: DNS, TLS, connect, reset, timeout
	Erroring                   // reachable, but answered with an error status
	Healthy                    // reachable, final status in [200, 400)
)

// Classify maps a final HTTP status code to an outcome. It is only called
// when a response was actually received.
func Classify(code int) Outcome {
	if code >= 200 && code < 400 {
		return Healthy
	}
	return Erroring
}

func (o Outcome) String() string {
	switch o {
	case Healthy:
		return "healthy"
	case Erroring:
		return "erroring"
	default:
		return "unreachable"
	}
}

// Indicator is the visual marker the status page shows for an outcome.
func (o Outcome) Indicator() string {
	switch o {
	case Healthy:
		return "🟢"
	case Erroring:
		return "🟠"
	default:
		return "🔴"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "healthy":
		*o = Healthy
	case "erroring":
		*o = Erroring
	case "unreachable":
		*o = Unreachable
	default:
		return fmt.Errorf("unknown outcome %q", string(b))
	}
	return nil
}
