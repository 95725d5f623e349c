package agent

// BrandVoice describes the identity content is generated under.
type BrandVoice struct {
	CompanyName       string   `json:"company_name" yaml:"company_name" koanf:"company_name"`
	Tone              string   `json:"tone" yaml:"tone" koanf:"tone"`
	PersonalityTraits []string `json:"personality_traits" yaml:"personality_traits" koanf:"personality_traits"`
	TargetAudience    string   `json:"target_audience" yaml:"target_audience" koanf:"target_audience"`
	ContentPillars    []string `json:"content_pillars" yaml:"content_pillars" koanf:"content_pillars"`
	ForbiddenTopics   []string `json:"forbidden_topics" yaml:"forbidden_topics" koanf:"forbidden_topics"`
}

// DefaultBrandVoice returns the fallback identity used when stored
// metadata lacks brand fields.
func DefaultBrandVoice() BrandVoice {
	return BrandVoice{
		CompanyName:       "TechInnovate",
		Tone:              "professional yet innovative",
		PersonalityTraits: []string{"Expert", "Forward-thinking", "Data-driven"},
		TargetAudience:    "CTOs, tech leaders, developers",
		ContentPillars:    []string{"AI Trends", "Tech Leadership", "Digital Transformation"},
		ForbiddenTopics:   []string{"politics", "financial advice", "competitor names"},
	}
}

// BrandVoiceFromMetadata reconstructs a brand voice from a content
// item's stored metadata, falling back to defaults for any missing or
// malformed field. Metadata serialization can collapse single-item
// lists into plain strings, so list fields accept both shapes.
func BrandVoiceFromMetadata(meta map[string]any) BrandVoice {
	bv := DefaultBrandVoice()
	if meta == nil {
		return bv
	}

	if s, ok := meta["company_name"].(string); ok && s != "" {
		bv.CompanyName = s
	}
	if s, ok := meta["tone"].(string); ok && s != "" {
		bv.Tone = s
	}
	if s, ok := meta["target_audience"].(string); ok && s != "" {
		bv.TargetAudience = s
	}
	if l := stringList(meta["personality_traits"]); len(l) > 0 {
		bv.PersonalityTraits = l
	}
	if l := stringList(meta["content_pillars"]); len(l) > 0 {
		bv.ContentPillars = l
	}
	if l := stringList(meta["forbidden_topics"]); len(l) > 0 {
		bv.ForbiddenTopics = l
	}

	return bv
}

// stringList normalizes a metadata value that may be a string, a
// []string, or a []any of strings into a string slice.
func stringList(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		return val
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
