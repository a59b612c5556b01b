package agents

import (
	"fmt"
	"strings"

	"github.com/shubh-37/x-ghostwriter/internal/models"
)

// BuildSystemPrompt describes who the bot writes as and how. It is a pure
// function of the profile document and the length cap.
func BuildSystemPrompt(uc *models.UserContext, maxLength int) string {
	profile := uc.Profile
	if profile == nil {
		profile = &models.UserProfile{}
	}
	prefs := uc.PostingPreferences
	if prefs == nil {
		prefs = &models.PostingPreferences{}
	}

	return fmt.Sprintf(`You are a Twitter bot posting on behalf of %s.

PROFILE:
- Bio: %s
- Profession: %s
- Location: %s
- Interests: %s
- Writing style: %s

POSTING PREFERENCES:
- Tone: %s
- Avoid topics: %s
- Preferred hashtags: %s
- Include questions: %t
- Include tips: %t

INSTRUCTIONS:
- Create authentic tweets that sound like the person described above
- Keep tweets under %d characters
- Be engaging and valuable to followers
- Occasionally ask questions to encourage engagement
- Share insights, tips, or thoughts related to their interests
- Use a natural, conversational tone
- Don't be overly promotional
- Include relevant hashtags when appropriate (max 2-3 per tweet)

Generate tweets about current projects, recent thoughts, industry insights, or general musings that align with this person's interests and style.`,
		profile.Name,
		profile.Bio,
		profile.Profession,
		profile.Location,
		strings.Join(profile.Interests, ", "),
		profile.WritingStyle,
		prefs.Tone,
		strings.Join(prefs.TopicsToAvoid, ", "),
		strings.Join(prefs.PreferredHashtags, ", "),
		prefs.IncludeQuestions,
		prefs.IncludeTips,
		maxLength,
	)
}

// BuildUserPrompt picks the template for ct. Unknown types get the general template.
func BuildUserPrompt(uc *models.UserContext, ct models.ContextType) string {
	location := "local"
	if uc.Profile != nil && uc.Profile.Location != "" {
		location = uc.Profile.Location
	}

	switch ct {
	case models.ContextProject:
		return "Create a tweet about building in public - share progress, learnings, or behind-the-scenes moments from one of these projects: " +
			strings.Join(uc.CurrentProjects, ", ")
	case models.ContextThought:
		return "Create a thoughtful tweet based on one of these recent observations or learnings: " +
			strings.Join(uc.RecentThoughts, ", ")
	case models.ContextTip:
		return "Share a practical tip or insight about coding, AI, startups, or scaling tech - something useful for other builders and students."
	case models.ContextQuestion:
		return "Ask an engaging question about startup challenges, AI applications, tech scaling, or the founder journey that would spark interesting discussion."
	case models.ContextScene:
		return fmt.Sprintf("Share an observation or takeaway from the %s startup scene - maybe something learned from a founder meeting, event, or just being immersed in the ecosystem.", location)
	case models.ContextStudentPerspective:
		return "Share a unique insight that comes from being a CS student who's also deeply involved in the startup world - bridging theory and practice."
	case models.ContextBuildingMoment:
		return "Share a behind-the-scenes moment from building projects - a breakthrough, challenge, or interesting technical decision."
	default:
		return "Create an engaging tweet about something interesting happening in AI, startups, or tech. Make it personal and authentic to a CS student's perspective."
	}
}
