package bot

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shubh-37/x-ghostwriter/internal/apperr"
	"github.com/shubh-37/x-ghostwriter/internal/logging"
	"github.com/shubh-37/x-ghostwriter/internal/models"
)

type Generator interface {
	GeneratePost(ctx context.Context, contextType models.ContextType) (string, error)
	RandomContextType() models.ContextType
}

type Publisher interface {
	PostTweet(ctx context.Context, content string) (*models.PostResult, error)
	GetRecentTweets(ctx context.Context, count int) ([]models.RecentPost, error)
}

type History interface {
	Append(record *models.PostRecord) error
	Recent(limit int) ([]models.PostRecord, error)
}

// Notifier tells the owner about published posts and failures. Optional.
type Notifier interface {
	NotifyPosted(ctx context.Context, record *models.PostRecord) error
	NotifyFailure(ctx context.Context, op string, cause error) error
}

// Recorder receives pipeline metrics. Optional.
type Recorder interface {
	ObserveGeneration(contextType string, dryRun bool, d time.Duration)
	ObservePublished(contextType string, at time.Time)
	ObserveFailure(kind string)
	ObserveHistoryAppend()
}

// Result is the outcome of one pipeline run. Post is nil on a dry run.
type Result struct {
	Content     string
	ContextType models.ContextType
	DryRun      bool
	Post        *models.PostResult
}

func (r *Result) URL() string {
	if r == nil || r.Post == nil {
		return ""
	}
	return r.Post.URL
}

type Option func(*Bot)

func WithNotifier(n Notifier) Option {
	return func(b *Bot) { b.notifier = n }
}

func WithRecorder(r Recorder) Option {
	return func(b *Bot) { b.recorder = r }
}

func WithLogger(logger logging.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Bot wires generation, publishing and history into the posting pipeline.
// Publisher may be nil when the bot only runs dry.
type Bot struct {
	generator Generator
	publisher Publisher
	history   History
	notifier  Notifier
	recorder  Recorder
	logger    logging.Logger
}

func New(generator Generator, publisher Publisher, history History, opts ...Option) *Bot {
	b := &Bot{
		generator: generator,
		publisher: publisher,
		history:   history,
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// GenerateAndPost runs the pipeline once. An empty contextType draws one at
// random. A dry run stops after generation and leaves the publisher and the
// history untouched. History write failures are logged, never returned.
func (b *Bot) GenerateAndPost(ctx context.Context, contextType models.ContextType, dryRun bool) (*Result, error) {
	if contextType == "" {
		contextType = b.generator.RandomContextType()
	}
	logger := b.logger.WithField("context_type", contextType)

	logger.Infof("Generating %s content...", contextType)
	start := time.Now()
	content, err := b.generator.GeneratePost(ctx, contextType)
	if err != nil {
		return nil, b.fail(ctx, dryRun, "generate post", err)
	}
	b.observeGeneration(contextType, dryRun, time.Since(start))
	logger.Infof("Generated content: %s", content)

	if dryRun {
		logger.Info("Dry run mode - not posting")
		return &Result{Content: content, ContextType: contextType, DryRun: true}, nil
	}

	if b.publisher == nil {
		return nil, b.fail(ctx, dryRun, "publish post", apperr.Newf(apperr.KindConfiguration, "publish post", "no publisher configured"))
	}

	post, err := b.publisher.PostTweet(ctx, content)
	if err != nil {
		return nil, b.fail(ctx, dryRun, "publish post", err)
	}

	record := models.NewPostRecord(content, post, contextType)
	if b.recorder != nil {
		b.recorder.ObservePublished(string(contextType), record.Timestamp)
	}
	logger.WithField("url", post.URL).Info("Successfully posted")

	if err := b.history.Append(record); err != nil {
		logger.WithError(err).Error("Error logging post")
		b.observeFailure(err)
	} else if b.recorder != nil {
		b.recorder.ObserveHistoryAppend()
	}

	if b.notifier != nil {
		if err := b.notifier.NotifyPosted(ctx, record); err != nil {
			logger.WithError(err).Warn("Failed to send post notification")
		}
	}

	return &Result{Content: content, ContextType: contextType, Post: post}, nil
}

// ScheduledPost is the action the scheduler fires: a random context, posted for real.
func (b *Bot) ScheduledPost(ctx context.Context) error {
	result, err := b.GenerateAndPost(ctx, "", false)
	if err != nil {
		return fmt.Errorf("scheduled post: %w", err)
	}
	b.logger.WithField("url", result.URL()).Info("Scheduled post published")
	return nil
}

// TestConnection checks the completion service and the platform concurrently
// without publishing anything.
func (b *Bot) TestConnection(ctx context.Context) error {
	if b.publisher == nil {
		return apperr.Newf(apperr.KindConfiguration, "test connection", "no publisher configured")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if _, err := b.generator.GeneratePost(gctx, models.ContextGeneral); err != nil {
			b.logger.WithError(err).Error("Completion service connection test failed")
			return err
		}
		return nil
	})

	g.Go(func() error {
		if _, err := b.publisher.GetRecentTweets(gctx, 1); err != nil {
			b.logger.WithError(err).Error("Platform connection test failed")
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	b.logger.Info("All connections successful!")
	return nil
}

// History returns up to limit records, oldest first.
func (b *Bot) History(limit int) ([]models.PostRecord, error) {
	records, err := b.history.Recent(limit)
	if err != nil {
		b.logger.WithError(err).Error("Error reading post history")
	}
	return records, err
}

func (b *Bot) fail(ctx context.Context, dryRun bool, op string, err error) error {
	b.logger.WithError(err).Errorf("Error in %s", op)
	b.observeFailure(err)

	if !dryRun && b.notifier != nil {
		if nerr := b.notifier.NotifyFailure(ctx, op, err); nerr != nil {
			b.logger.WithError(nerr).Warn("Failed to send failure notification")
		}
	}
	return err
}

func (b *Bot) observeGeneration(contextType models.ContextType, dryRun bool, d time.Duration) {
	if b.recorder != nil {
		b.recorder.ObserveGeneration(string(contextType), dryRun, d)
	}
}

func (b *Bot) observeFailure(err error) {
	if b.recorder != nil {
		b.recorder.ObserveFailure(string(apperr.KindOf(err)))
	}
}
