package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxPostLength is the platform's hard cap on post length, counted in characters (runes).
const MaxPostLength = 280

// PostResult is what the publisher returns for an accepted post.
type PostResult struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentPost is a post read back from the owner's timeline.
type RecentPost struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
	RetweetCount int       `json:"retweet_count"`
	LikeCount    int       `json:"like_count"`
}

// PostRecord is one entry of the post history. Immutable once created.
type PostRecord struct {
	ID          string      `json:"id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Content     string      `json:"content"`
	TweetID     string      `json:"tweet_id"`
	URL         string      `json:"url"`
	ContextType ContextType `json:"context_type"`
}

// NewPostRecord creates a history entry for a successfully published post
func NewPostRecord(content string, result *PostResult, contextType ContextType) *PostRecord {
	return &PostRecord{
		ID:          uuid.New().String(),
		Timestamp:   time.Now(),
		Content:     content,
		TweetID:     result.ID,
		URL:         result.URL,
		ContextType: contextType,
	}
}

// StatusURL builds the canonical URL of a post on the platform.
func StatusURL(host, id string) string {
	return fmt.Sprintf("https://%s/user/status/%s", host, id)
}
