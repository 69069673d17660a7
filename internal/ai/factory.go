package ai

import (
	"context"
	"fmt"
	"strings"
)

// New builds the backend named by s.Provider.
func New(ctx context.Context, s Settings) (Generator, error) {
	switch strings.ToLower(s.Provider) {
	case "", "disabled", "off":
		return Disabled{}, nil
	case "gemini":
		return NewGemini(ctx, s)
	case "openai", "perplexity":
		return NewOpenAI(s)
	case "deepseek":
		if s.BaseURL == "" {
			return nil, fmt.Errorf("provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return NewOpenAI(s)
	default:
		return nil, fmt.Errorf("generator provider %s not supported", s.Provider)
	}
}
