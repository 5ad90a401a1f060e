package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recurbook/internal/acuity"
	"recurbook/internal/config"
	appLog "recurbook/internal/log"
	"recurbook/internal/preview"
	"recurbook/internal/recur"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	dryRun     bool
	calendarID int64
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.Level(conf.LogLevel))

	creds, err := config.LoadCredentials()
	if err != nil {
		appLog.Error("failed to load API credentials", err)
		os.Exit(1)
	}

	staff := rosterFor(conf, flags.calendarID)
	if len(staff) == 0 {
		appLog.Error("no staff calendars to process", nil,
			"config_path", flags.configPath,
			"calendar_flag", flags.calendarID,
		)
		os.Exit(1)
	}

	appLog.Info("effective config",
		"base_url", conf.BaseURL,
		"staff_count", len(staff),
		"sample_max", conf.SampleMax,
		"lookup_max", conf.LookupMax,
		"dry_run", flags.dryRun,
	)

	// Root context with cancellation on SIGINT/SIGTERM; a signal aborts
	// in-flight API calls.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	client := acuity.NewClient(conf.BaseURL, creds.UserName, creds.APIKey)
	runner := recur.NewRunner(client, staff, recur.Options{
		Now:       time.Now().UTC(),
		SampleMax: conf.SampleMax,
		LookupMax: conf.LookupMax,
		DryRun:    flags.dryRun,
	})

	rep := runner.Run(ctx)

	if flags.dryRun {
		if err := preview.WritePlan(os.Stdout, rep.Planned, time.Now().UTC()); err != nil {
			appLog.Error("failed to write plan preview", err)
			os.Exit(1)
		}
	}

	appLog.Info("run complete",
		"calendars", rep.CalendarsProcessed,
		"students", rep.StudentsConsidered,
		"skipped", rep.StudentsSkipped,
		"created", rep.Created,
		"planned", len(rep.Planned),
		"failures", rep.Failures,
	)

	if rep.Failures > 0 {
		os.Exit(1)
	}
}

// rosterFor maps config staff entries to roster entries, optionally
// restricted to a single calendar ID.
func rosterFor(conf *config.Config, calendarID int64) []recur.Staff {
	staff := make([]recur.Staff, 0, len(conf.Staff))
	for _, s := range conf.Staff {
		if calendarID != 0 && s.Calendar != calendarID {
			continue
		}
		staff = append(staff, recur.Staff{CalendarID: s.Calendar, Name: s.Name})
	}
	return staff
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/recurbook/config.yaml", "Path to config file")
	flag.BoolVar(&cfg.dryRun, "dry-run", false, "Project only; print the plan as iCalendar instead of booking")
	flag.Int64Var(&cfg.calendarID, "calendar", 0, "Restrict the run to one calendar ID (0 = all)")

	flag.Parse()

	return cfg
}
