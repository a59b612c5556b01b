package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shubh-37/x-ghostwriter/config"
	"github.com/shubh-37/x-ghostwriter/internal/bot"
	"github.com/shubh-37/x-ghostwriter/internal/logging"
	"github.com/shubh-37/x-ghostwriter/internal/metrics"
	"github.com/shubh-37/x-ghostwriter/internal/models"
)

// Runner is the part of the bot the commands drive.
type Runner interface {
	GenerateAndPost(ctx context.Context, contextType models.ContextType, dryRun bool) (*bot.Result, error)
	ScheduledPost(ctx context.Context) error
	TestConnection(ctx context.Context) error
	History(limit int) ([]models.PostRecord, error)
}

// BotOptions tunes how the factory builds a Runner. Offline skips the
// platform handshake, for commands that never publish.
type BotOptions struct {
	Offline bool
}

// App holds what the commands share. NewBot is called lazily so commands
// like doctor run without credentials.
type App struct {
	Config  *config.Config
	Logger  logging.Logger
	Metrics *metrics.Recorder
	EnvFile string
	NewBot  func(ctx context.Context, opts BotOptions) (Runner, error)
}

// NewRootCmd creates the top-level command and registers all subcommands.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "x-ghostwriter",
		Short:         "Generate and publish posts in your own voice, on demand or on a schedule",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTestCmd(app),
		newPostCmd(app),
		newScheduleCmd(app),
		newHistoryCmd(app),
		newDoctorCmd(app),
	)

	return root
}

func (a *App) logger() logging.Logger {
	if a.Logger == nil {
		return logging.NewNopLogger()
	}
	return a.Logger
}
