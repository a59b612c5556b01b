package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubh-37/x-ghostwriter/internal/apperr"
)

type fakeAPI struct {
	tweetCalls atomic.Int32
	postStatus int
	postBody   string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "OAuth "))
		w.Write([]byte(`{"data":{"id":"1001","username":"ada","name":"Ada"}}`))
	})
	mux.HandleFunc("POST /tweets", func(w http.ResponseWriter, r *http.Request) {
		f.tweetCalls.Add(1)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "OAuth "))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		status := f.postStatus
		if status == 0 {
			status = http.StatusCreated
		}
		w.WriteHeader(status)
		if f.postBody != "" {
			w.Write([]byte(f.postBody))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"id": "555", "text": body["text"]},
		})
	})
	mux.HandleFunc("GET /users/1001/tweets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer bearer-token", r.Header.Get("Authorization"))
		assert.Equal(t, "5", r.URL.Query().Get("max_results"))
		assert.Equal(t, "created_at,public_metrics", r.URL.Query().Get("tweet.fields"))
		w.Write([]byte(`{"data":[{"id":"9","text":"old post","created_at":"2025-01-02T03:04:05.000Z","public_metrics":{"retweet_count":2,"like_count":7}}]}`))
	})
	return mux
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), Config{
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "as",
		BearerToken:       "bearer-token",
		BaseURL:           srv.URL,
		Timeout:           2 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_Authenticates(t *testing.T) {
	client := newTestClient(t, &fakeAPI{})

	assert.Equal(t, "1001", client.UserID())
	assert.Equal(t, "ada", client.Username())
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), Config{ConsumerKey: "ck"})

	require.Error(t, err)
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
}

func TestPostTweet_Success(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api)

	result, err := client.PostTweet(context.Background(), "Hello world")

	require.NoError(t, err)
	assert.Equal(t, "555", result.ID)
	assert.Equal(t, "Hello world", result.Text)
	assert.Equal(t, "https://twitter.com/user/status/555", result.URL)
	assert.Equal(t, int32(1), api.tweetCalls.Load())
}

func TestPostTweet_LengthBoundary(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api)

	_, err := client.PostTweet(context.Background(), strings.Repeat("a", 281))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, int32(0), api.tweetCalls.Load(), "over-long content must not reach the API")

	_, err = client.PostTweet(context.Background(), strings.Repeat("a", 280))
	require.NoError(t, err)
	assert.Equal(t, int32(1), api.tweetCalls.Load())
}

func TestPostTweet_CountsCharactersNotBytes(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api)

	_, err := client.PostTweet(context.Background(), strings.Repeat("é", 280))

	require.NoError(t, err)
}

func TestPostTweet_ForbiddenCarriesHint(t *testing.T) {
	api := &fakeAPI{
		postStatus: http.StatusForbidden,
		postBody:   `{"title":"Forbidden","detail":"You are not permitted to perform this action.","status":403}`,
	}
	client := newTestClient(t, api)

	_, err := client.PostTweet(context.Background(), "hi")

	require.Error(t, err)
	assert.Equal(t, apperr.KindPublish, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "not permitted")
	assert.Contains(t, apperr.HintOf(err), "Developer Portal")
}

func TestPostTweet_OtherRejectionHasNoHint(t *testing.T) {
	api := &fakeAPI{postStatus: http.StatusBadRequest, postBody: `{"errors":[{"message":"duplicate content"}]}`}
	client := newTestClient(t, api)

	_, err := client.PostTweet(context.Background(), "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate content")
	assert.Empty(t, apperr.HintOf(err))
}

func TestGetRecentTweets(t *testing.T) {
	client := newTestClient(t, &fakeAPI{})

	posts, err := client.GetRecentTweets(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "9", posts[0].ID)
	assert.Equal(t, "old post", posts[0].Text)
	assert.Equal(t, 2, posts[0].RetweetCount)
	assert.Equal(t, 7, posts[0].LikeCount)
	assert.Equal(t, 2025, posts[0].CreatedAt.Year())
}
