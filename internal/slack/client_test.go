package slack

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubh-37/x-ghostwriter/internal/apperr"
	"github.com/shubh-37/x-ghostwriter/internal/models"
)

type capturedMessage struct {
	channel string
	text    string
	blocks  string
}

func newSlackServer(t *testing.T, authOK bool) (*httptest.Server, func() []capturedMessage) {
	t.Helper()

	var (
		mu       sync.Mutex
		messages []capturedMessage
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth.test", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !authOK {
			_, _ = w.Write([]byte(`{"ok":false,"error":"invalid_auth"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"user_id":"U123","team":"ghost"}`))
	})
	mux.HandleFunc("/chat.postMessage", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		mu.Lock()
		messages = append(messages, capturedMessage{
			channel: r.FormValue("channel"),
			text:    r.FormValue("text"),
			blocks:  r.FormValue("blocks"),
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C42","ts":"1700000000.000100"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, func() []capturedMessage {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedMessage(nil), messages...)
	}
}

func TestNewClient_Authenticates(t *testing.T) {
	srv, _ := newSlackServer(t, true)

	client, err := NewClient(context.Background(), "xoxb-test", "C42", slack.OptionAPIURL(srv.URL+"/"))

	require.NoError(t, err)
	assert.Equal(t, "U123", client.GetBotID())
}

func TestNewClient_AuthFailure(t *testing.T) {
	srv, _ := newSlackServer(t, false)

	_, err := NewClient(context.Background(), "xoxb-bad", "C42", slack.OptionAPIURL(srv.URL+"/"))

	require.Error(t, err)
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
}

func TestNewClient_RequiresTokenAndChannel(t *testing.T) {
	_, err := NewClient(context.Background(), "", "C42")
	assert.Error(t, err)

	_, err = NewClient(context.Background(), "xoxb", "")
	assert.Error(t, err)
}

func TestNotifyPosted(t *testing.T) {
	srv, messages := newSlackServer(t, true)
	client, err := NewClient(context.Background(), "xoxb-test", "C42", slack.OptionAPIURL(srv.URL+"/"))
	require.NoError(t, err)

	err = client.NotifyPosted(context.Background(), &models.PostRecord{
		Content:     "Shipping beats polishing.",
		URL:         "https://twitter.com/user/status/99",
		ContextType: models.ContextThought,
	})

	require.NoError(t, err)
	got := messages()
	require.Len(t, got, 1)
	assert.Equal(t, "C42", got[0].channel)
	assert.Contains(t, got[0].text, "https://twitter.com/user/status/99")
	assert.Contains(t, got[0].blocks, "Shipping beats polishing.")
}

func TestNotifyFailure_IncludesHint(t *testing.T) {
	srv, messages := newSlackServer(t, true)
	client, err := NewClient(context.Background(), "xoxb-test", "C42", slack.OptionAPIURL(srv.URL+"/"))
	require.NoError(t, err)

	cause := apperr.New(apperr.KindPublish, "post tweet", errors.New("403 Forbidden")).WithHint("upgrade access")
	require.NoError(t, client.NotifyFailure(context.Background(), "scheduled post", cause))

	got := messages()
	require.Len(t, got, 1)
	assert.Contains(t, got[0].text, "scheduled post failed")
	assert.Contains(t, got[0].text, "upgrade access")
}
