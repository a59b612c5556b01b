package llm

import "errors"

var (
	// ErrEmptyResponse indicates the service answered without any text choice.
	ErrEmptyResponse = errors.New("completion returned no text")

	// ErrMissingAPIKey indicates the client was built without credentials.
	ErrMissingAPIKey = errors.New("openai api key is required")
)
