package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/contentpilot/contentpilot/internal/llm"
)

// stubProvider returns a canned completion and records the last request.
type stubProvider struct {
	response string
	err      error
	lastReq  llm.CompletionRequest
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.response}, nil
}

func TestGenerate(t *testing.T) {
	provider := &stubProvider{response: `{
		"content": "Exciting developments in AI are reshaping how teams ship software.",
		"hashtags": ["#AI", "#DevTools"],
		"engagement_question": "How is your team adopting AI?"
	}`}
	a := New(provider, "test-model")

	gen, err := a.Generate(context.Background(), Request{
		Platform:   "linkedin",
		Topic:      "AI in software development",
		BrandVoice: DefaultBrandVoice(),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(gen.Content, "Exciting developments") {
		t.Errorf("Content = %q, want the generated post", gen.Content)
	}
	if len(gen.Hashtags) != 2 {
		t.Errorf("Hashtags = %v, want 2", gen.Hashtags)
	}
	if gen.EngagementQuestion == "" {
		t.Error("expected an engagement question")
	}

	if gen.Metadata["generated_by"] != "stub" {
		t.Errorf("generated_by = %v, want stub", gen.Metadata["generated_by"])
	}
	if gen.Metadata["platform"] != "linkedin" {
		t.Errorf("platform = %v, want linkedin", gen.Metadata["platform"])
	}
	if gen.Metadata["company_name"] != "TechInnovate" {
		t.Errorf("company_name = %v, want TechInnovate", gen.Metadata["company_name"])
	}
	if gen.Metadata["optimal_post_time"] != "8:30 AM" {
		t.Errorf("optimal_post_time = %v, want 8:30 AM", gen.Metadata["optimal_post_time"])
	}

	if !provider.lastReq.JSONMode {
		t.Error("expected JSON mode on the provider request")
	}
}

func TestGenerateValidation(t *testing.T) {
	a := New(&stubProvider{}, "test-model")
	ctx := context.Background()

	_, err := a.Generate(ctx, Request{Platform: "", Topic: "something"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "platform" {
		t.Errorf("err = %v, want ValidationError on platform", err)
	}

	_, err = a.Generate(ctx, Request{Platform: "linkedin", Topic: "   "})
	if !errors.As(err, &verr) || verr.Field != "topic" {
		t.Errorf("err = %v, want ValidationError on topic", err)
	}
}

func TestGeneratePropagatesProviderError(t *testing.T) {
	provider := &stubProvider{err: llm.ErrRateLimited}
	a := New(provider, "test-model")

	_, err := a.Generate(context.Background(), Request{
		Platform:   "twitter",
		Topic:      "topic",
		BrandVoice: DefaultBrandVoice(),
	})
	if !errors.Is(err, llm.ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestBuildPromptIncludesBrandAndPlatform(t *testing.T) {
	bv := BrandVoice{
		CompanyName:       "Acme",
		Tone:              "playful",
		PersonalityTraits: []string{"Bold", "Curious"},
		TargetAudience:    "founders",
		ContentPillars:    []string{"Growth"},
		ForbiddenTopics:   []string{"politics"},
	}

	prompt := buildPrompt(Request{
		Platform:   "twitter",
		Topic:      "Product launch",
		BrandVoice: bv,
		Directives: "mention the beta waitlist",
	})

	for _, want := range []string{
		"Acme",
		"playful",
		"Bold, Curious",
		"NEVER mention: politics",
		"PLATFORM: TWITTER",
		"240-280 characters",
		"Product launch",
		"mention the beta waitlist",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptToneOverride(t *testing.T) {
	prompt := buildPrompt(Request{
		Platform:   "linkedin",
		Topic:      "topic",
		BrandVoice: DefaultBrandVoice(),
		Tone:       "urgent and direct",
	})
	if !strings.Contains(prompt, "Tone: urgent and direct") {
		t.Error("expected the tone override in the prompt")
	}
}

func TestBuildPromptUnknownPlatformFallsBack(t *testing.T) {
	prompt := buildPrompt(Request{
		Platform:   "myspace",
		Topic:      "topic",
		BrandVoice: DefaultBrandVoice(),
	})
	// Unknown platforms reuse the linkedin guidance.
	if !strings.Contains(prompt, "150-300 words") {
		t.Error("expected linkedin guidance for an unknown platform")
	}
}

func TestOptimalPostTime(t *testing.T) {
	if got := optimalPostTime("instagram"); got != "5:00 PM" {
		t.Errorf("instagram = %q, want 5:00 PM", got)
	}
	if got := optimalPostTime("unknown"); got != "10:00 AM" {
		t.Errorf("unknown = %q, want 10:00 AM", got)
	}
}
