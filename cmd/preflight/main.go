// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hamed0406/sitestatus/internal/config"
)

type report struct {
	fails, warns, oks []string
}

func (r *report) fail(msg string) { r.fails = append(r.fails, msg) }
func (r *report) warn(msg string) { r.warns = append(r.warns, msg) }
func (r *report) ok(msg string)   { r.oks = append(r.oks, msg) }

func check(getenv func(string) string) report {
	var r report

	domains := strings.TrimSpace(getenv("DOMAINS"))
	if domains == "" {
		r.warn(fmt.Sprintf("DOMAINS empty; the %d built-in domains will be probed.", len(config.DefaultDomains)))
	} else {
		list := config.SplitList(domains)
		if len(list) == 0 {
			r.fail("DOMAINS has no usable entries.")
		}
		for _, d := range list {
			if strings.Contains(d, "://") || strings.ContainsAny(d, "/ ") {
				r.fail("DOMAINS entry " + strconv.Quote(d) + " must be a bare host name (no scheme, path or spaces).")
			}
		}
		if len(list) > 0 {
			r.ok(fmt.Sprintf("DOMAINS has %d entries", len(list)))
		}
	}

	for _, name := range []string{"PROBE_TIMEOUT_MS", "MAX_CONCURRENCY", "REFRESH_MS", "RATE_RPM", "RATE_BURST"} {
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			r.fail(name + " must be a non-negative integer, got " + strconv.Quote(v))
			continue
		}
		r.ok(name + "=" + v)
	}

	if ms, err := strconv.Atoi(strings.TrimSpace(getenv("PROBE_TIMEOUT_MS"))); err == nil && ms > 30_000 {
		r.warn("PROBE_TIMEOUT_MS above 30s; a page load can take twice that long.")
	}

	if addr := strings.TrimSpace(getenv("ADDR")); addr == "" {
		r.warn("ADDR is empty; default 127.0.0.1:8000 will be used.")
	} else {
		r.ok("ADDR=" + addr)
	}

	if strings.TrimSpace(getenv("PUBLIC_API_KEYS")) == "" {
		r.warn("PUBLIC_API_KEYS is empty; /api routes are open.")
	}
	if allowed := strings.TrimSpace(getenv("ALLOWED_ORIGINS")); allowed == "" {
		r.warn("ALLOWED_ORIGINS empty; /api allows any origin.")
	} else {
		r.ok("ALLOWED_ORIGINS=" + allowed)
	}
	return r
}

func main() {
	r := check(os.Getenv)
	for _, m := range r.oks {
		fmt.Println("✔", m)
	}
	for _, m := range r.warns {
		fmt.Fprintln(os.Stderr, "⚠", m)
	}
	for _, m := range r.fails {
		fmt.Fprintln(os.Stderr, "✖", m)
	}
	if len(r.fails) > 0 {
		os.Exit(1)
	}
	fmt.Println("✔ preflight passed")
}
