package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shubh-37/x-ghostwriter/internal/models"
)

func TestBuildSystemPrompt_EmbedsProfile(t *testing.T) {
	prompt := BuildSystemPrompt(testUserContext(), 280)

	for _, want := range []string{
		"on behalf of Ada",
		"Bio: Builder of small things",
		"Profession: CS student",
		"Location: San Francisco",
		"Interests: AI, startups",
		"Writing style: casual, curious",
		"Tone: optimistic",
		"Avoid topics: politics, crypto",
		"Preferred hashtags: #buildinpublic, #AI",
		"Include questions: true",
		"under 280 characters",
		"max 2-3 per tweet",
	} {
		assert.Contains(t, prompt, want)
	}
}

func TestBuildSystemPrompt_Deterministic(t *testing.T) {
	uc := testUserContext()
	assert.Equal(t, BuildSystemPrompt(uc, 280), BuildSystemPrompt(uc, 280))
}

func TestBuildSystemPrompt_ToleratesMissingSections(t *testing.T) {
	prompt := BuildSystemPrompt(&models.UserContext{}, 280)
	assert.NotEmpty(t, prompt)
}

func TestBuildUserPrompt_OneTemplatePerContext(t *testing.T) {
	uc := testUserContext()
	seen := map[string]models.ContextType{}

	for _, ct := range models.AllContextTypes() {
		prompt := BuildUserPrompt(uc, ct)
		assert.NotEmpty(t, prompt, "context %s", ct)
		if prev, dup := seen[prompt]; dup {
			t.Fatalf("contexts %s and %s share a template", prev, ct)
		}
		seen[prompt] = ct
	}
	assert.Len(t, seen, 8)
}

func TestBuildUserPrompt_Interpolation(t *testing.T) {
	uc := testUserContext()

	assert.Contains(t, BuildUserPrompt(uc, models.ContextProject), "tweet bot, study planner")
	assert.Contains(t, BuildUserPrompt(uc, models.ContextThought), "shipping beats polishing")
	assert.Contains(t, BuildUserPrompt(uc, models.ContextScene), "San Francisco startup scene")
}

func TestBuildUserPrompt_UnknownFallsBackToGeneral(t *testing.T) {
	uc := testUserContext()

	assert.Equal(t, BuildUserPrompt(uc, models.ContextGeneral), BuildUserPrompt(uc, "meme"))
	assert.Equal(t, BuildUserPrompt(uc, models.ContextGeneral), BuildUserPrompt(uc, ""))
}
