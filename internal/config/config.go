package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultDomains is the list probed when DOMAINS is unset.
var DefaultDomains = []string{
	"Atitop.com", "Batiav.com", "Bolgav.com", "Brimav.com", "Domgrav.com", "Dopriv.com",
	"Dovlip.com", "Faklum.com", "Gamzig.com", "Gozirav.com", "Ipdro.com", "Makriv.com",
	"Malgrim.com", "Mobnab.com", "Moovbob.com", "Rogzov.com", "Tarbob.com", "Trifak.com",
	"Valdap.com", "Vredap.com", "Wifrad.com", "Yakriv.com",
}

type Config struct {
	Addr           string        // bind address, e.g. "127.0.0.1:8000" or ":8000" (Docker)
	LogDir         string        // logs directory
	LogLevel       string        // debug|info|warn|error
	Domains        []string      // hosts probed every round
	ProbeTimeout   time.Duration // per request, HEAD and GET each
	MaxConcurrency int           // probes in flight per round
	Refresh        time.Duration // status page auto-reload interval
	UserAgent      string        // empty means probe.DefaultUserAgent
	PublicAPIKeys  []string      // empty means /api is open
	AllowedOrigins []string      // empty means allow all
	RateRPM        int           // per-client requests per minute, 0 disables
	RateBurst      int
}

func FromEnv() Config {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = "127.0.0.1:8000"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "info"
	}

	domains := SplitList(os.Getenv("DOMAINS"))
	if len(domains) == 0 {
		domains = append([]string(nil), DefaultDomains...)
	}

	return Config{
		Addr:           addr,
		LogDir:         logDir,
		LogLevel:       logLevel,
		Domains:        domains,
		ProbeTimeout:   envMillis("PROBE_TIMEOUT_MS", 5*time.Second),
		MaxConcurrency: envInt("MAX_CONCURRENCY", 10, 1),
		Refresh:        envMillis("REFRESH_MS", 30*time.Second),
		UserAgent:      strings.TrimSpace(os.Getenv("USER_AGENT")),
		PublicAPIKeys:  SplitList(os.Getenv("PUBLIC_API_KEYS")),
		AllowedOrigins: SplitList(os.Getenv("ALLOWED_ORIGINS")),
		RateRPM:        envInt("RATE_RPM", 120, 0),
		RateBurst:      envInt("RATE_BURST", 30, 1),
	}
}

// SplitList splits a comma-separated value, trimming spaces and dropping
// empty entries.
func SplitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(key string, def, min int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= min {
			return n
		}
	}
	return def
}

func envMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}
