package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dghubble/oauth1"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/timeout"

	"github.com/shubh-37/x-ghostwriter/internal/apperr"
	"github.com/shubh-37/x-ghostwriter/internal/models"
)

const (
	defaultBaseURL = "https://api.twitter.com/2"
	statusHost     = "twitter.com"

	accessHint = "This looks like an API access issue. You may need elevated access from the " +
		"Twitter Developer Portal or a paid API plan. See: https://developer.twitter.com/en/portal/product"
)

type Config struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
	BearerToken       string
	BaseURL           string
	MaxLength         int
	Timeout           time.Duration
}

// Client posts to the X API v2. Writes are signed with OAuth 1.0a user
// context; timeline reads use the app bearer token.
type Client struct {
	userClient  *http.Client
	appClient   *http.Client
	bearerToken string
	baseURL     string
	maxLength   int
	executor    failsafe.Executor[*apiResponse]

	userID   string
	username string
}

type apiResponse struct {
	status int
	body   []byte
}

type apiProblem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// NewClient builds the client and performs the authentication handshake.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" || cfg.AccessToken == "" || cfg.AccessTokenSecret == "" {
		return nil, apperr.Newf(apperr.KindConfiguration, "twitter client", "consumer and access credentials are required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = models.MaxPostLength
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	oauthConfig := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret)

	c := &Client{
		userClient:  oauthConfig.Client(oauth1.NoContext, token),
		appClient:   &http.Client{},
		bearerToken: cfg.BearerToken,
		baseURL:     baseURL,
		maxLength:   cfg.MaxLength,
		executor:    failsafe.With[*apiResponse](timeout.New[*apiResponse](cfg.Timeout)),
	}

	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) Username() string {
	return c.username
}

func (c *Client) UserID() string {
	return c.userID
}

func (c *Client) authenticate(ctx context.Context) error {
	resp, err := c.do(ctx, c.userClient, http.MethodGet, "/users/me", nil, false)
	if err != nil {
		return apperr.New(apperr.KindPublish, "twitter authentication", err)
	}
	if resp.status != http.StatusOK {
		return c.statusError("twitter authentication", resp)
	}

	var me struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.body, &me); err != nil {
		return apperr.New(apperr.KindPublish, "twitter authentication", fmt.Errorf("failed to parse response: %w", err))
	}
	if me.Data.ID == "" {
		return apperr.Newf(apperr.KindPublish, "twitter authentication", "response did not include a user id")
	}

	c.userID = me.Data.ID
	c.username = me.Data.Username
	return nil
}

// PostTweet publishes content once. Content longer than the configured
// maximum is rejected locally without calling the API.
func (c *Client) PostTweet(ctx context.Context, content string) (*models.PostResult, error) {
	if n := utf8.RuneCountInString(content); n > c.maxLength {
		return nil, apperr.Newf(apperr.KindValidation, "post tweet", "tweet too long: %d characters (max %d)", n, c.maxLength)
	}

	payload, err := json.Marshal(map[string]string{"text": content})
	if err != nil {
		return nil, apperr.New(apperr.KindPublish, "post tweet", fmt.Errorf("failed to marshal request: %w", err))
	}

	resp, err := c.do(ctx, c.userClient, http.MethodPost, "/tweets", payload, false)
	if err != nil {
		return nil, apperr.New(apperr.KindPublish, "post tweet", err)
	}
	if resp.status != http.StatusCreated && resp.status != http.StatusOK {
		return nil, c.statusError("post tweet", resp)
	}

	var created struct {
		Data *struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.body, &created); err != nil {
		return nil, apperr.New(apperr.KindPublish, "post tweet", fmt.Errorf("failed to parse response: %w", err))
	}
	if created.Data == nil || created.Data.ID == "" {
		return nil, apperr.Newf(apperr.KindPublish, "post tweet", "tweet posting failed - no response data")
	}

	return &models.PostResult{
		ID:        created.Data.ID,
		Text:      content,
		URL:       models.StatusURL(statusHost, created.Data.ID),
		CreatedAt: time.Now(),
	}, nil
}

// GetRecentTweets reads the authenticated account's latest posts. The API
// requires 5..100 results; the request is clamped to 5..10.
func (c *Client) GetRecentTweets(ctx context.Context, count int) ([]models.RecentPost, error) {
	maxResults := min(max(count, 5), 10)

	query := url.Values{}
	query.Set("max_results", strconv.Itoa(maxResults))
	query.Set("tweet.fields", "created_at,public_metrics")
	path := "/users/" + url.PathEscape(c.userID) + "/tweets?" + query.Encode()

	client, bearer := c.userClient, false
	if c.bearerToken != "" {
		client, bearer = c.appClient, true
	}

	resp, err := c.do(ctx, client, http.MethodGet, path, nil, bearer)
	if err != nil {
		return nil, apperr.New(apperr.KindPublish, "get recent tweets", err)
	}
	if resp.status != http.StatusOK {
		return nil, c.statusError("get recent tweets", resp)
	}

	var timeline struct {
		Data []struct {
			ID            string    `json:"id"`
			Text          string    `json:"text"`
			CreatedAt     time.Time `json:"created_at"`
			PublicMetrics struct {
				RetweetCount int `json:"retweet_count"`
				LikeCount    int `json:"like_count"`
			} `json:"public_metrics"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.body, &timeline); err != nil {
		return nil, apperr.New(apperr.KindPublish, "get recent tweets", fmt.Errorf("failed to parse response: %w", err))
	}

	posts := make([]models.RecentPost, 0, len(timeline.Data))
	for _, t := range timeline.Data {
		posts = append(posts, models.RecentPost{
			ID:           t.ID,
			Text:         t.Text,
			CreatedAt:    t.CreatedAt,
			RetweetCount: t.PublicMetrics.RetweetCount,
			LikeCount:    t.PublicMetrics.LikeCount,
		})
	}
	return posts, nil
}

func (c *Client) do(ctx context.Context, client *http.Client, method, path string, payload []byte, bearer bool) (*apiResponse, error) {
	return c.executor.WithContext(ctx).GetWithExecution(func(exec failsafe.Execution[*apiResponse]) (*apiResponse, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(exec.Context(), method, c.baseURL+path, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if bearer {
			req.Header.Set("Authorization", "Bearer "+c.bearerToken)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to call Twitter API: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		return &apiResponse{status: resp.StatusCode, body: respBody}, nil
	})
}

func (c *Client) statusError(op string, resp *apiResponse) *apperr.Error {
	msg := strings.TrimSpace(string(resp.body))
	var problem apiProblem
	if err := json.Unmarshal(resp.body, &problem); err == nil {
		switch {
		case problem.Detail != "":
			msg = problem.Detail
		case len(problem.Errors) > 0:
			msg = problem.Errors[0].Message
		case problem.Title != "":
			msg = problem.Title
		}
	}

	err := apperr.Newf(apperr.KindPublish, op, "API request failed with status %d: %s", resp.status, msg)
	if resp.status == http.StatusForbidden {
		err.WithHint(accessHint)
	}
	return err
}
