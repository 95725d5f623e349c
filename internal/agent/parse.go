package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/contentpilot/contentpilot/internal/llm"
)

var (
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	hashtagRe    = regexp.MustCompile(`#\w+`)
)

// parseResponse extracts the structured generation result from a model
// response. Models occasionally wrap the JSON in prose or fences, so
// the first JSON object found in the text is used. A response with no
// usable JSON degrades to the raw text plus extracted hashtags.
func parseResponse(raw, platform string) (*Generated, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, llm.ErrEmptyResponse
	}

	if match := jsonObjectRe.FindString(raw); match != "" {
		var gen Generated
		if err := json.Unmarshal([]byte(match), &gen); err == nil {
			if gen.Content == "" {
				return nil, fmt.Errorf("%w: response JSON has no content field", llm.ErrMalformedResponse)
			}
			if len(gen.Hashtags) == 0 {
				gen.Hashtags = extractHashtags(gen.Content)
			}
			return &gen, nil
		}
	}

	// Fallback: treat the whole response as the post body.
	return &Generated{
		Content:            raw,
		Hashtags:           extractHashtags(raw),
		EngagementQuestion: "What are your thoughts?",
	}, nil
}

// extractHashtags pulls up to five unique hashtags out of free text.
func extractHashtags(text string) []string {
	seen := map[string]bool{}
	var tags []string
	for _, tag := range hashtagRe.FindAllString(text, -1) {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == 5 {
			break
		}
	}
	return tags
}
