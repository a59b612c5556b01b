package agents

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/shubh-37/x-ghostwriter/internal/apperr"
	"github.com/shubh-37/x-ghostwriter/internal/llm"
	"github.com/shubh-37/x-ghostwriter/internal/logging"
	"github.com/shubh-37/x-ghostwriter/internal/models"
)

const (
	generationTemperature = 0.8
	generationMaxTokens   = 100
	ellipsis              = "..."
)

var errEmptyGeneration = errors.New("completion returned empty text")

type ContentGeneratorAgent struct {
	completer   llm.Completer
	userContext *models.UserContext
	maxLength   int
	picker      *ContextPicker
	logger      logging.Logger
}

func NewContentGeneratorAgent(completer llm.Completer, userContext *models.UserContext, maxLength int, picker *ContextPicker, logger logging.Logger) *ContentGeneratorAgent {
	if maxLength <= 0 {
		maxLength = models.MaxPostLength
	}
	if picker == nil {
		picker = NewContextPicker(DefaultContextWeights, nil)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &ContentGeneratorAgent{
		completer:   completer,
		userContext: userContext,
		maxLength:   maxLength,
		picker:      picker,
		logger:      logger,
	}
}

// GeneratePost issues one completion for contextType and returns text of at
// most maxLength characters. Failures are returned as generation errors and
// never retried.
func (a *ContentGeneratorAgent) GeneratePost(ctx context.Context, contextType models.ContextType) (string, error) {
	req := llm.CompletionRequest{
		SystemPrompt: BuildSystemPrompt(a.userContext, a.maxLength),
		UserPrompt:   BuildUserPrompt(a.userContext, contextType),
		Temperature:  generationTemperature,
		MaxTokens:    generationMaxTokens,
	}

	text, err := a.completer.Complete(ctx, req)
	if err != nil {
		a.logger.WithError(err).WithField("context_type", contextType).Error("Error generating content")
		return "", apperr.New(apperr.KindGeneration, "generate post", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.New(apperr.KindGeneration, "generate post", errEmptyGeneration)
	}

	return TruncatePost(text, a.maxLength), nil
}

// RandomContextType draws from the weighted context distribution.
func (a *ContentGeneratorAgent) RandomContextType() models.ContextType {
	return a.picker.Pick()
}

// TruncatePost cuts text longer than maxLength characters down to exactly
// maxLength, the last three being an ellipsis.
func TruncatePost(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	keep := maxLength - utf8.RuneCountInString(ellipsis)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(text)
	return string(runes[:keep]) + ellipsis
}
