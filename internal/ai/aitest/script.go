// Package aitest provides a scripted ai.Generator for tests.
package aitest

import (
	"context"
	"fmt"
	"sync"

	"github.com/thywilljoshua/survey-report/internal/ai"
)

// Step is one scripted outcome. When Reply is set it is called with the
// request; otherwise Text/Err are returned as-is.
type Step struct {
	Text  string
	Err   error
	Reply func(ai.Request) (string, error)
}

// Script replays steps in order and records every request it saw. Once the
// steps run out, Fallback (if set) answers the remaining requests.
type Script struct {
	mu       sync.Mutex
	steps    []Step
	Fallback func(ai.Request) (string, error)
	Requests []ai.Request
}

func NewScript(steps ...Step) *Script {
	return &Script{steps: steps}
}

func (s *Script) Generate(ctx context.Context, req ai.Request) (ai.Response, error) {
	if err := ctx.Err(); err != nil {
		return ai.Response{}, err
	}
	s.mu.Lock()
	idx := len(s.Requests)
	s.Requests = append(s.Requests, req)
	var step Step
	switch {
	case idx < len(s.steps):
		step = s.steps[idx]
	case s.Fallback != nil:
		step = Step{Reply: s.Fallback}
	default:
		s.mu.Unlock()
		return ai.Response{}, fmt.Errorf("aitest: no scripted step for request %d", idx+1)
	}
	s.mu.Unlock()

	text, err := step.Text, step.Err
	if step.Reply != nil {
		text, err = step.Reply(req)
	}
	if err != nil {
		return ai.Response{}, err
	}
	n := len([]rune(text))
	return ai.Response{Text: text, Usage: ai.Usage{CompletionTokens: n / 4, TotalTokens: n / 4}}, nil
}

// Calls returns how many requests were issued.
func (s *Script) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}
