package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/sitestatus/internal/config"
	"github.com/hamed0406/sitestatus/internal/logging"
	"github.com/hamed0406/sitestatus/internal/probe"
	"github.com/hamed0406/sitestatus/internal/report"
	"github.com/hamed0406/sitestatus/internal/round"
)

type roundOptions struct {
	domains     []string
	timeout     time.Duration
	concurrency int
	userAgent   string
	format      string
	out         string
	failOnDown  bool
	verbose     bool
}

func newRoundCmd() *cobra.Command {
	cfg := config.FromEnv()
	opts := roundOptions{
		timeout:     cfg.ProbeTimeout,
		concurrency: cfg.MaxConcurrency,
		userAgent:   cfg.UserAgent,
		format:      string(report.FormatTable),
	}

	cmd := &cobra.Command{
		Use:   "round",
		Short: "Run one probing round and print the result",
		Example: `  statuscheck round
  statuscheck round --domains example.com,example.org --format json
  statuscheck round --format xlsx --out status.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.domains) == 0 {
				opts.domains = cfg.Domains
			}
			return runRound(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.domains, "domains", nil, "comma-separated domains (default: $DOMAINS or the built-in list)")
	f.DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")
	f.IntVar(&opts.concurrency, "concurrency", opts.concurrency, "maximum probes in flight")
	f.StringVar(&opts.userAgent, "user-agent", opts.userAgent, "User-Agent header (default: desktop browser)")
	f.StringVarP(&opts.format, "format", "f", opts.format, "output format: table, json or xlsx")
	f.StringVarP(&opts.out, "out", "o", "", "write output to file instead of stdout")
	f.BoolVar(&opts.failOnDown, "fail-on-down", false, "exit with status 2 if any domain is not healthy")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log each probe to stderr")
	return cmd
}

func runRound(cmd *cobra.Command, opts roundOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if format == report.FormatXLSX && opts.out == "" {
		return fmt.Errorf("--format xlsx requires --out")
	}

	logger := zap.NewNop()
	if opts.verbose {
		logger, err = logging.NewConsole("debug")
		if err != nil {
			return err
		}
		defer logger.Sync()
	}

	orch := round.NewOrchestrator(logger, probe.NewHTTPProber(opts.userAgent), opts.concurrency, opts.timeout)
	id := uuid.NewString()
	rows, err := orch.RunWithID(cmd.Context(), id, opts.domains)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := report.Write(w, format, report.New(id, time.Now().UTC(), rows)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if opts.failOnDown && !rows.AllHealthy() {
		return errUnhealthy
	}
	return nil
}
