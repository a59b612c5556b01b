package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shubh-37/x-ghostwriter/internal/apperr"
	"github.com/shubh-37/x-ghostwriter/internal/models"
)

// LoadUserContext reads the profile document. user_context.json is the usual
// form; a YAML document with the same keys is accepted too.
func LoadUserContext(path string) (*models.UserContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Newf(apperr.KindConfiguration, "load user context",
				"%s not found, create it with your profile information", path)
		}
		return nil, apperr.New(apperr.KindConfiguration, "load user context", fmt.Errorf("reading %s: %w", path, err))
	}

	var uc models.UserContext
	if err := decodeDocument(data, &uc); err != nil {
		return nil, apperr.New(apperr.KindConfiguration, "load user context", fmt.Errorf("parsing %s: %w", path, err))
	}

	if uc.Profile == nil {
		return nil, apperr.Newf(apperr.KindConfiguration, "load user context", "%s is missing the \"profile\" object", path)
	}
	if uc.PostingPreferences == nil {
		return nil, apperr.Newf(apperr.KindConfiguration, "load user context", "%s is missing the \"posting_preferences\" object", path)
	}

	return &uc, nil
}

func decodeDocument(data []byte, v any) error {
	if json.Valid(data) {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}
