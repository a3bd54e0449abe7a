package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/urfave/cli/v2"

	"mtgsync/internal/clickup"
	"mtgsync/internal/config"
	"mtgsync/internal/google"
	"mtgsync/internal/logging"
	"mtgsync/internal/preview"
	"mtgsync/internal/syncer"
)

const version = "0.1.0"

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	config.LoadDotEnv()

	if err := newApp().Run(os.Args); err != nil {
		// Errors from inside a command were already logged with the
		// configured logger; only setup failures remain.
		var logged loggedError
		if !errors.As(err, &logged) {
			logFatal(slog.Default(), err)
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "mtgsync",
		Usage:   "Create ClickUp tasks from upcoming Google Calendar meetings for capacity planning.",
		Version: version,
		Commands: []*cli.Command{
			syncCommand(),
			membersCommand(),
		},
	}
}

// loggedError wraps an error that has already been written to the log.
type loggedError struct{ err error }

func (e loggedError) Error() string { return e.err.Error() }
func (e loggedError) Unwrap() error { return e.err }

func logFatal(logger *slog.Logger, err error) {
	logger.Error("Application failed", "fatal", true, logging.Err(err))
}

type commandFunc func(c *cli.Context, cfg *config.Config, logger *slog.Logger) error

// withSetup loads the configuration and logger for a command and logs a
// failing command through that logger, so the reason also lands in LOG_FILE.
func withSetup(fn commandFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, logger, closer, err := setup()
		if err != nil {
			return err
		}
		defer closer.Close()

		if err := fn(c, cfg, logger); err != nil {
			logFatal(logger, err)
			return loggedError{err: err}
		}
		return nil
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run one calendar to tracker synchronization.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Build tasks and log them without creating anything."},
			&cli.StringFlag{Name: "ics-out", Usage: "With --dry-run, write the planned meetings to this iCalendar file."},
			&cli.IntFlag{Name: "days", Usage: "Number of days to look ahead. Overrides CALENDAR_SYNC_DAYS."},
		},
		Action: withSetup(func(c *cli.Context, cfg *config.Config, logger *slog.Logger) error {
			if c.IsSet("days") {
				cfg.SyncDays = c.Int("days")
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			dryRun := c.Bool("dry-run")
			if dryRun {
				logger.Info("Performing a dry run. No tasks will be created.")
			}

			logger.Info("Starting Calendar to ClickUp sync.", "version", version)

			gClient, err := google.NewClient(logger, cfg.ServiceAccountFile)
			if err != nil {
				return fmt.Errorf("failed to create google client: %w", err)
			}
			tracker := clickup.NewClient(logger, cfg.ClickUpBaseURL, cfg.ClickUpAPIKey, cfg.ClickUpTeamID, cfg.ClickUpListID)

			s := syncer.NewSyncer(logger, gClient, tracker, syncer.Options{
				UserEmails:      cfg.UserEmails,
				InternalDomains: cfg.InternalDomains,
				SyncDays:        cfg.SyncDays,
				DryRun:          dryRun,
			})

			summary, err := s.Sync(c.Context)
			if err != nil {
				return fmt.Errorf("sync run failed: %w", err)
			}

			if out := c.String("ics-out"); out != "" && dryRun {
				if len(summary.Planned) == 0 {
					logger.Info("Nothing planned, preview file not written.", "file", out)
					return nil
				}
				if err := preview.WriteFile(out, summary.Planned, time.Now()); err != nil {
					return fmt.Errorf("failed to write preview: %w", err)
				}
				logger.Info("Wrote dry-run preview.", "file", out, "meetings", len(summary.Planned))
			}
			return nil
		}),
	}
}

func membersCommand() *cli.Command {
	return &cli.Command{
		Name:  "members",
		Usage: "Show which configured users resolve to ClickUp members.",
		Action: withSetup(func(c *cli.Context, cfg *config.Config, logger *slog.Logger) error {
			tracker := clickup.NewClient(logger, cfg.ClickUpBaseURL, cfg.ClickUpAPIKey, cfg.ClickUpTeamID, cfg.ClickUpListID)
			s := syncer.NewSyncer(logger, nil, tracker, syncer.Options{UserEmails: cfg.UserEmails})
			assignees := s.AssigneeMap(c.Context)

			emails := make([]string, 0, len(assignees))
			for email := range assignees {
				emails = append(emails, email)
			}
			sort.Strings(emails)
			for _, email := range emails {
				if id := assignees[email]; id != 0 {
					fmt.Fprintf(c.App.Writer, "%s\t%d\n", email, id)
				} else {
					fmt.Fprintf(c.App.Writer, "%s\t(not found)\n", email)
				}
			}
			return nil
		}),
	}
}

// setup loads the configuration and creates the process logger.
func setup() (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, closer, err := logging.Setup(logging.ParseLevel(cfg.EffectiveLogLevel()), cfg.LogFile)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closer, nil
}
