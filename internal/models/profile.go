package models

// PlaceholderName is the name shipped in the example profile document.
const PlaceholderName = "Your Name"

// UserProfile describes the account owner the bot writes as.
type UserProfile struct {
	Name         string   `json:"name" yaml:"name"`
	Bio          string   `json:"bio" yaml:"bio"`
	Profession   string   `json:"profession" yaml:"profession"`
	Location     string   `json:"location" yaml:"location"`
	Interests    []string `json:"interests" yaml:"interests"`
	WritingStyle string   `json:"writing_style" yaml:"writing_style"`
}

// PostingPreferences constrains tone and content of generated posts.
type PostingPreferences struct {
	Tone              string   `json:"tone" yaml:"tone"`
	TopicsToAvoid     []string `json:"topics_to_avoid" yaml:"topics_to_avoid"`
	PreferredHashtags []string `json:"preferred_hashtags" yaml:"preferred_hashtags"`
	IncludeQuestions  bool     `json:"include_questions" yaml:"include_questions"`
	IncludeTips       bool     `json:"include_tips" yaml:"include_tips"`
}

// UserContext is the whole profile document. Loaded once, then shared read-only.
type UserContext struct {
	Profile            *UserProfile        `json:"profile" yaml:"profile"`
	PostingPreferences *PostingPreferences `json:"posting_preferences" yaml:"posting_preferences"`
	CurrentProjects    []string            `json:"current_projects,omitempty" yaml:"current_projects,omitempty"`
	RecentThoughts     []string            `json:"recent_thoughts,omitempty" yaml:"recent_thoughts,omitempty"`
}

// HasPlaceholders reports whether the document still carries the example values.
func (uc *UserContext) HasPlaceholders() bool {
	return uc.Profile == nil || uc.Profile.Name == "" || uc.Profile.Name == PlaceholderName
}
