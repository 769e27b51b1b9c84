package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"preplycal/internal/config"
	"preplycal/internal/export"
	"preplycal/internal/ics"
	appLog "preplycal/internal/log"
	"preplycal/internal/plan"
	"preplycal/internal/preply"
)

// flagConfig holds CLI flag values; non-empty values override the config file.
type flagConfig struct {
	configPath string
	payload    string
	out        string
	preview    int
	verify     bool
}

func main() {
	defer appLog.Sync()

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		appLog.Error("export failed", err)
		appLog.Sync()
		os.Exit(1)
	}
}

// run performs one export. Every failure is returned before the output
// file is touched; a missing session is reported before the config file
// is read or created.
func run(args []string, stdout io.Writer) error {
	appLog.Info("preplycal starting", "version", "0.1.0")

	flags, err := parseFlags(args)
	if err != nil {
		return err
	}

	if _, err := config.SessionFromEnv(); err != nil {
		return err
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", flags.configPath, err)
	}
	if err := conf.ApplyEnv(); err != nil {
		return err
	}

	// CLI flags override config file and environment.
	if flags.payload != "" {
		conf.Payload = flags.payload
	}
	if flags.out != "" {
		conf.Output = flags.out
	}
	if flags.preview >= 0 {
		conf.PreviewLines = flags.preview
	}

	if lvl, err := appLog.ParseLevel(conf.LogLevel); err != nil {
		appLog.Error("invalid log_level; using info", err)
	} else {
		appLog.SetLevel(lvl)
	}

	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", conf.Timezone, err)
	}

	appLog.Info("effective config",
		"endpoint", conf.Endpoint,
		"payload", conf.Payload,
		"output", conf.Output,
		"timezone", conf.Timezone,
		"horizon_days", conf.HorizonDays,
		"window_days", conf.WindowDays,
		"verify", flags.verify,
	)

	payload, err := preply.LoadPayload(conf.Payload)
	if err != nil {
		return err
	}

	client, err := preply.NewClient(conf.Endpoint, conf.SessionID,
		preply.WithTimeout(time.Duration(conf.HTTPTimeoutSeconds)*time.Second))
	if err != nil {
		return err
	}

	windows, err := plan.Windows(time.Now(), conf.HorizonDays, conf.WindowDays)
	if err != nil {
		return err
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exp := &export.Exporter{
		Fetcher: client,
		Payload: payload,
		Meta: ics.Meta{
			ProductID: conf.ProductID,
			TimeZone:  conf.Timezone,
			Name:      conf.CalendarName,
		},
		Suffix:    conf.EventSuffix,
		UIDDomain: conf.UIDDomain,
		Location:  loc,
	}

	cal, stats, err := exp.Run(ctx, windows)
	if err != nil {
		return err
	}

	if lines := cal.Preview(conf.PreviewLines); len(lines) > 0 {
		fmt.Fprintf(stdout, "\nSample ICS (first %d lines):\n", len(lines))
		for _, l := range lines {
			fmt.Fprintln(stdout, l)
		}
		fmt.Fprintln(stdout)
	}

	if err := cal.WriteFile(conf.Output); err != nil {
		return fmt.Errorf("write %s: %w", conf.Output, err)
	}

	if flags.verify {
		if err := verify(conf.Output, cal.Len()); err != nil {
			return err
		}
	}

	appLog.Info("export complete",
		"exported", stats.Exported,
		"windows", stats.Windows,
		"nodes", stats.Nodes,
		"skipped", stats.Skipped,
		"duplicates", stats.Duplicates,
		"output", conf.Output,
	)
	return nil
}

// verify re-reads the written file and checks the event count.
func verify(path string, want int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	events, err := ics.ReadEvents(f)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	if len(events) != want {
		return fmt.Errorf("verify %s: read %d events, wrote %d", path, len(events), want)
	}
	appLog.Info("output verified", "events", len(events))
	return nil
}

func parseFlags(args []string) (flagConfig, error) {
	var cfg flagConfig

	fs := flag.NewFlagSet("preplycal", flag.ContinueOnError)
	fs.StringVar(&cfg.configPath, "config", "preplycal.yaml", "Path to config file (created with defaults if missing)")
	fs.StringVar(&cfg.payload, "payload", "", "Path to base GraphQL payload JSON (overrides config if set)")
	fs.StringVar(&cfg.out, "out", "", "Output ICS path (overrides config if set)")
	fs.IntVar(&cfg.preview, "preview", -1, "Number of ICS lines to print before writing (-1 uses config)")
	fs.BoolVar(&cfg.verify, "verify", false, "Re-read the written file and check the event count")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, nil
}
