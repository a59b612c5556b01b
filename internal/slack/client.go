package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/shubh-37/x-ghostwriter/internal/apperr"
	"github.com/shubh-37/x-ghostwriter/internal/models"
)

// Client sends owner notifications to a single Slack channel.
type Client struct {
	api       *slack.Client
	botID     string
	channelID string
}

// NewClient authenticates the bot token and binds the notification channel.
func NewClient(ctx context.Context, token, channelID string, opts ...slack.Option) (*Client, error) {
	if token == "" || channelID == "" {
		return nil, apperr.Newf(apperr.KindConfiguration, "slack client", "bot token and channel id are required")
	}

	api := slack.New(token, opts...)

	authTest, err := api.AuthTestContext(ctx)
	if err != nil {
		return nil, apperr.New(apperr.KindConfiguration, "slack client", fmt.Errorf("failed to authenticate with Slack: %w", err))
	}

	return &Client{
		api:       api,
		botID:     authTest.UserID,
		channelID: channelID,
	}, nil
}

func (c *Client) GetBotID() string {
	return c.botID
}

func (c *Client) SendMessage(ctx context.Context, message string) error {
	_, _, err := c.api.PostMessageContext(ctx,
		c.channelID,
		slack.MsgOptionText(message, false),
	)
	return err
}

func (c *Client) SendMessageWithBlocks(ctx context.Context, fallback string, blocks []slack.Block) error {
	_, _, err := c.api.PostMessageContext(ctx,
		c.channelID,
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(blocks...),
	)
	return err
}

// NotifyPosted announces a published post with its content and link.
func (c *Client) NotifyPosted(ctx context.Context, record *models.PostRecord) error {
	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "*New post published* ("+string(record.ContextType)+")\n>"+record.Content, false, false),
			nil, nil,
		),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, "<"+record.URL+"|View post>", false, false),
		),
	}
	return c.SendMessageWithBlocks(ctx, "New post published: "+record.URL, blocks)
}

// NotifyFailure reports a failed pipeline run.
func (c *Client) NotifyFailure(ctx context.Context, op string, cause error) error {
	msg := fmt.Sprintf(":warning: %s failed: %v", op, cause)
	if hint := apperr.HintOf(cause); hint != "" {
		msg += "\n" + hint
	}
	return c.SendMessage(ctx, msg)
}
