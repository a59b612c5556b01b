package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shubh-37/x-ghostwriter/config"
	"github.com/shubh-37/x-ghostwriter/internal/agents"
	"github.com/shubh-37/x-ghostwriter/internal/apperr"
	"github.com/shubh-37/x-ghostwriter/internal/bot"
	"github.com/shubh-37/x-ghostwriter/internal/cli"
	"github.com/shubh-37/x-ghostwriter/internal/cli/formatter"
	"github.com/shubh-37/x-ghostwriter/internal/history"
	"github.com/shubh-37/x-ghostwriter/internal/llm"
	"github.com/shubh-37/x-ghostwriter/internal/logging"
	"github.com/shubh-37/x-ghostwriter/internal/metrics"
	slackpkg "github.com/shubh-37/x-ghostwriter/internal/slack"
	"github.com/shubh-37/x-ghostwriter/internal/twitter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, formatter.Failure("Error: "+err.Error()))
		if hint := apperr.HintOf(err); hint != "" {
			fmt.Fprintln(os.Stderr, "   "+hint)
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.LoadEnv(logging.NewLogger("info", os.Stderr))
	cfg := config.LoadConfig()

	logger, closer, err := logging.NewFileLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	app := &cli.App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewRecorder(),
		EnvFile: ".env",
	}
	app.NewBot = func(ctx context.Context, opts cli.BotOptions) (cli.Runner, error) {
		b, err := buildBot(ctx, cfg, logger, app.Metrics, opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	}

	err = cli.NewRootCmd(app).ExecuteContext(ctx)
	if err != nil && ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		return nil
	}
	return err
}

func buildBot(ctx context.Context, cfg *config.Config, logger logging.Logger, rec *metrics.Recorder, opts cli.BotOptions) (*bot.Bot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	userContext, err := config.LoadUserContext(cfg.UserContextPath)
	if err != nil {
		return nil, err
	}
	if userContext.HasPlaceholders() {
		logger.Warnf("%s still has placeholder values, posts will not sound like you", cfg.UserContextPath)
	}

	completer, err := llm.NewOpenAIClient(llm.Config{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, apperr.New(apperr.KindConfiguration, "build bot", err)
	}
	generator := agents.NewContentGeneratorAgent(completer, userContext, cfg.MaxPostLength, nil, logger)

	botOpts := []bot.Option{bot.WithLogger(logger), bot.WithRecorder(rec)}

	var publisher bot.Publisher
	if !opts.Offline {
		client, err := twitter.NewClient(ctx, twitter.Config{
			ConsumerKey:       cfg.TwitterConsumerKey,
			ConsumerSecret:    cfg.TwitterConsumerSecret,
			AccessToken:       cfg.TwitterAccessToken,
			AccessTokenSecret: cfg.TwitterAccessTokenSecret,
			BearerToken:       cfg.TwitterBearerToken,
			BaseURL:           cfg.TwitterAPIURL,
			MaxLength:         cfg.MaxPostLength,
			Timeout:           cfg.RequestTimeout,
		})
		if err != nil {
			return nil, err
		}
		logger.Infof("Authenticated as @%s", client.Username())
		publisher = client

		if cfg.NotificationsEnabled() {
			notifier, err := slackpkg.NewClient(ctx, cfg.SlackToken, cfg.SlackChannelID)
			if err != nil {
				logger.WithError(err).Warn("Slack notifications disabled")
			} else {
				botOpts = append(botOpts, bot.WithNotifier(notifier))
			}
		}
	}

	return bot.New(generator, publisher, history.NewPostHistory(cfg.HistoryPath), botOpts...), nil
}
