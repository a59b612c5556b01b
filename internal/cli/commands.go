package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shubh-37/x-ghostwriter/config"
	"github.com/shubh-37/x-ghostwriter/internal/agents"
	"github.com/shubh-37/x-ghostwriter/internal/cli/formatter"
	"github.com/shubh-37/x-ghostwriter/internal/models"
	"github.com/shubh-37/x-ghostwriter/internal/server"
)

// ErrChecksFailed is returned by commands that report a failed check.
var ErrChecksFailed = errors.New("checks failed")

func newTestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Check connectivity to the completion service and the platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Testing bot connections...")

			runner, err := app.NewBot(cmd.Context(), BotOptions{})
			if err != nil {
				return err
			}
			if err := runner.TestConnection(cmd.Context()); err != nil {
				fmt.Fprintln(out, formatter.Failure("Connection test failed"))
				return err
			}
			fmt.Fprintln(out, formatter.Success("All connections working!"))
			return nil
		},
	}
}

func newPostCmd(app *App) *cobra.Command {
	var (
		contextFlag string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Generate one post and publish it",
		RunE: func(cmd *cobra.Command, args []string) error {
			var contextType models.ContextType
			if contextFlag != "" {
				ct, err := models.ParseContextType(contextFlag)
				if err != nil {
					return err
				}
				contextType = ct
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Generating and posting content...")

			runner, err := app.NewBot(cmd.Context(), BotOptions{Offline: dryRun})
			if err != nil {
				return err
			}

			result, err := runner.GenerateAndPost(cmd.Context(), contextType, dryRun)
			if err != nil {
				fmt.Fprintln(out, formatter.Failure("Failed to generate or post content"))
				return err
			}

			if result.DryRun {
				fmt.Fprintf(out, "Generated content: %s\n", result.Content)
				return nil
			}
			fmt.Fprintln(out, formatter.Success("Tweet posted successfully!"))
			url := result.URL()
			if url == "" {
				url = "N/A"
			}
			fmt.Fprintf(out, "URL: %s\n", url)
			return nil
		},
	}

	cmd.Flags().StringVar(&contextFlag, "context", "", "context type for post generation (random when empty)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "generate content without posting")
	return cmd
}

func newScheduleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the posting scheduler until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, app)
		},
	}
}

func runSchedule(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	logger := app.logger()

	fmt.Fprintln(out, "Starting automated scheduler...")

	runner, err := app.NewBot(ctx, BotOptions{})
	if err != nil {
		return err
	}
	if err := runner.TestConnection(ctx); err != nil {
		fmt.Fprintln(out, formatter.Failure("Connection test failed. Please check your configuration."))
		return err
	}

	loc, err := app.Config.Location()
	if err != nil {
		return err
	}

	var scheduler *agents.SchedulerAgent
	action := func(ctx context.Context) error {
		err := runner.ScheduledPost(ctx)
		if app.Metrics != nil {
			if next, ok := scheduler.NextRunTime(); ok {
				app.Metrics.SetNextRun(next)
			}
		}
		return err
	}

	scheduler = agents.NewSchedulerAgent(action,
		agents.WithLocation(loc),
		agents.WithSchedulerLogger(logger),
	)
	if err := scheduler.Configure(app.Config.PostingSchedule); err != nil {
		return err
	}

	scheduler.Start(ctx)
	if next, ok := scheduler.NextRunTime(); ok && app.Metrics != nil {
		app.Metrics.SetNextRun(next)
	}

	var statusServer *server.Server
	if app.Config.MetricsAddr != "" {
		var metricsHandler http.Handler
		if app.Metrics != nil {
			metricsHandler = app.Metrics.Handler()
		}
		statusServer = server.NewServer(app.Config.MetricsAddr, scheduler, metricsHandler, logger)
		go func() {
			if err := statusServer.Start(); err != nil {
				logger.WithError(err).Error("Status server failed")
			}
		}()
	}

	fmt.Fprintln(out, "\n🤖 Bot is now running automatically!")
	fmt.Fprintln(out, "Scheduled times:", app.Config.PostingSchedule)
	fmt.Fprint(out, formatter.FormatSchedule(scheduler.Entries(), time.Now()))
	if next, ok := scheduler.NextRunTime(); ok {
		fmt.Fprintln(out, "Next run:", next.Format(time.RFC1123))
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop...")

	<-ctx.Done()

	if statusServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), agents.DefaultStopTimeout)
		defer cancel()
		if err := statusServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Status server shutdown failed")
		}
	}

	if err := scheduler.Stop(); err != nil {
		logger.WithError(err).Warn("Scheduler stop timed out")
	}
	fmt.Fprintln(out, "\nBot stopped.")
	return nil
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently published posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Showing last %d posts...\n", limit)

			runner, err := app.NewBot(cmd.Context(), BotOptions{Offline: true})
			if err != nil {
				return err
			}

			records, err := runner.History(limit)
			if err != nil {
				app.logger().WithError(err).Warn("Post history unreadable, showing nothing")
				records = nil
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No posting history found.")
				return nil
			}
			fmt.Fprint(out, formatter.FormatHistory(records))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of history entries to show")
	return cmd
}

func newDoctorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check local setup without contacting any service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !runDoctor(cmd, app) {
				return ErrChecksFailed
			}
			return nil
		},
	}
}

func runDoctor(cmd *cobra.Command, app *App) bool {
	out := cmd.OutOrStdout()
	cfg := app.Config
	ok := true

	envFile := app.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err != nil {
		fmt.Fprintln(out, formatter.Warning(envFile+" not found, relying on the process environment"))
	} else {
		fmt.Fprintln(out, formatter.Success(envFile+" found"))
	}

	if missing := cfg.MissingRequired(); len(missing) > 0 {
		ok = false
		for _, name := range missing {
			fmt.Fprintln(out, formatter.Failure(name+" is not set"))
		}
	} else {
		fmt.Fprintln(out, formatter.Success("All required credentials are set"))
	}

	uc, err := config.LoadUserContext(cfg.UserContextPath)
	switch {
	case err != nil:
		ok = false
		fmt.Fprintln(out, formatter.Failure(err.Error()))
	case uc.HasPlaceholders():
		fmt.Fprintln(out, formatter.Warning(cfg.UserContextPath+" still has placeholder values, personalize it"))
	default:
		fmt.Fprintln(out, formatter.Success(cfg.UserContextPath+" loaded for "+uc.Profile.Name))
	}

	if _, err := agents.ParseSchedule(cfg.PostingSchedule); err != nil {
		ok = false
		fmt.Fprintln(out, formatter.Failure("POSTING_SCHEDULE: "+err.Error()))
	} else {
		fmt.Fprintln(out, formatter.Success("Posting schedule: "+cfg.PostingSchedule))
	}

	if _, err := cfg.Location(); err != nil {
		ok = false
		fmt.Fprintln(out, formatter.Failure(err.Error()))
	}

	if cfg.NotificationsEnabled() {
		fmt.Fprintln(out, formatter.Success("Slack notifications enabled"))
	}

	return ok
}
