package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/contentpilot/contentpilot/internal/llm"
)

// ValidationError signals missing required input before any provider
// call is attempted.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Request describes one generation call.
type Request struct {
	Platform   string
	Topic      string
	BrandVoice BrandVoice
	Tone       string // optional override of BrandVoice.Tone
	Directives string // optional extra instructions appended to the brief
}

// Generated is the structured result of a generation call.
type Generated struct {
	Content            string         `json:"content"`
	Hashtags           []string       `json:"hashtags"`
	EngagementQuestion string         `json:"engagement_question"`
	Metadata           map[string]any `json:"metadata"`
}

// platformSpec holds per-platform prompt guidance.
type platformSpec struct {
	Description  string
	Length       string
	Structure    string
	HashtagCount string
	Tone         string
}

var platformSpecs = map[string]platformSpec{
	"linkedin": {
		Description:  "Professional network for business content",
		Length:       "150-300 words",
		Structure:    "Hook, Value proposition, Insights, Call-to-action",
		HashtagCount: "3-5",
		Tone:         "Professional, insightful",
	},
	"twitter": {
		Description:  "Fast-paced microblogging platform",
		Length:       "240-280 characters",
		Structure:    "Main point, Supporting detail, Hashtags",
		HashtagCount: "2-3",
		Tone:         "Concise, engaging",
	},
	"instagram": {
		Description:  "Visual-first platform",
		Length:       "100-150 words",
		Structure:    "Caption, Storytelling, Questions, Hashtags",
		HashtagCount: "5-10",
		Tone:         "Engaging, visual-focused",
	},
	"facebook": {
		Description:  "Broad-audience social network",
		Length:       "80-150 words",
		Structure:    "Hook, Story, Call-to-action",
		HashtagCount: "1-3",
		Tone:         "Friendly, conversational",
	},
	"blog": {
		Description:  "Long-form owned channel",
		Length:       "400-800 words",
		Structure:    "Title, Introduction, Sections, Conclusion",
		HashtagCount: "0",
		Tone:         "Authoritative, educational",
	},
}

// defaultTimeout bounds a single generation call. There is no
// cancellation beyond this; an in-flight call runs to the deadline.
const defaultTimeout = 60 * time.Second

// Agent generates platform-specific content drafts through an LLM
// provider.
type Agent struct {
	provider llm.Provider
	model    string
	timeout  time.Duration
}

// New creates an Agent using the given provider and model.
func New(provider llm.Provider, model string) *Agent {
	return &Agent{
		provider: provider,
		model:    model,
		timeout:  defaultTimeout,
	}
}

// Generate produces a content draft for the request. It returns a
// populated result or a typed error from the llm package; it never
// returns a partial result alongside an error.
func (a *Agent) Generate(ctx context.Context, req Request) (*Generated, error) {
	if strings.TrimSpace(req.Platform) == "" {
		return nil, &ValidationError{Field: "platform"}
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, &ValidationError{Field: "topic"}
	}

	prompt := buildPrompt(req)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Model: a.model,
		Messages: []llm.Message{
			{
				Role:    llm.RoleSystem,
				Content: "You are a professional social media content creator specializing in platform-specific optimization.",
			},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   1000,
		Temperature: 0.7,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	gen, err := parseResponse(resp.Content, req.Platform)
	if err != nil {
		return nil, err
	}

	tone := req.Tone
	if tone == "" {
		tone = req.BrandVoice.Tone
	}
	gen.Metadata = map[string]any{
		"generated_by":       a.provider.Name(),
		"platform":           strings.ToLower(req.Platform),
		"tone":               tone,
		"hashtags":           gen.Hashtags,
		"optimal_post_time":  optimalPostTime(req.Platform),
		"company_name":       req.BrandVoice.CompanyName,
		"target_audience":    req.BrandVoice.TargetAudience,
		"personality_traits": req.BrandVoice.PersonalityTraits,
		"content_pillars":    req.BrandVoice.ContentPillars,
		"forbidden_topics":   req.BrandVoice.ForbiddenTopics,
	}

	return gen, nil
}

// buildPrompt constructs the generation prompt from the brand identity,
// platform guidance, and content brief.
func buildPrompt(req Request) string {
	spec, ok := platformSpecs[strings.ToLower(req.Platform)]
	if !ok {
		spec = platformSpecs["linkedin"]
	}

	bv := req.BrandVoice
	tone := req.Tone
	if tone == "" {
		tone = bv.Tone
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional social media content creator for %s.\n\n", bv.CompanyName)

	b.WriteString("BRAND IDENTITY:\n")
	fmt.Fprintf(&b, "- Company: %s\n", bv.CompanyName)
	fmt.Fprintf(&b, "- Tone: %s\n", tone)
	fmt.Fprintf(&b, "- Personality: %s\n", strings.Join(bv.PersonalityTraits, ", "))
	fmt.Fprintf(&b, "- Target Audience: %s\n", bv.TargetAudience)
	fmt.Fprintf(&b, "- Content Focus Areas: %s\n", strings.Join(bv.ContentPillars, ", "))
	fmt.Fprintf(&b, "- NEVER mention: %s\n\n", strings.Join(bv.ForbiddenTopics, ", "))

	fmt.Fprintf(&b, "PLATFORM: %s\n", strings.ToUpper(req.Platform))
	fmt.Fprintf(&b, "- Platform Type: %s\n", spec.Description)
	fmt.Fprintf(&b, "- Ideal Length: %s\n", spec.Length)
	fmt.Fprintf(&b, "- Structure: %s\n", spec.Structure)
	fmt.Fprintf(&b, "- Hashtags: %s\n", spec.HashtagCount)
	fmt.Fprintf(&b, "- Tone: %s\n\n", spec.Tone)

	b.WriteString("CONTENT BRIEF:\n")
	b.WriteString(req.Topic)
	b.WriteString("\n")
	if req.Directives != "" {
		b.WriteString("\nADDITIONAL DIRECTIVES:\n")
		b.WriteString(req.Directives)
		b.WriteString("\n")
	}

	b.WriteString(`
SPECIFIC INSTRUCTIONS:
1. Create platform-optimized content
2. Include relevant hashtags (platform-appropriate count)
3. Add an engagement question for the audience
4. Include a clear call-to-action

FORMAT YOUR RESPONSE AS JSON:
{
    "content": "full post content here",
    "hashtags": ["#relevant1", "#relevant2"],
    "engagement_question": "question for audience"
}`)

	return b.String()
}

// optimalPostTime returns a platform-appropriate posting time hint.
func optimalPostTime(platform string) string {
	times := map[string]string{
		"linkedin":  "8:30 AM",
		"twitter":   "12:00 PM",
		"instagram": "5:00 PM",
		"facebook":  "9:00 AM",
	}
	if t, ok := times[strings.ToLower(platform)]; ok {
		return t
	}
	return "10:00 AM"
}
