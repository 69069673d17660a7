// Package ai is the contract with the external text-generation service and
// its backends. A request carries the prior conversation turns plus one new
// turn; a response carries the generated text and token usage.
package ai

import (
	"context"
	"errors"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role+text unit of a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
	}
}

type Request struct {
	Prior           []Turn
	Turn            Turn
	MaxOutputTokens int
	Temperature     float64
}

type Response struct {
	Text  string
	Usage Usage
}

// Generator issues one request to the generation service. Errors are
// classified with failure kinds (see APIError) so callers can decide whether
// to retry.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// ErrDisabled is returned by Disabled for every request.
var ErrDisabled = errors.New("generation service disabled")

// Disabled is the generator used when generation is switched off in
// configuration. Callers detect it up front with IsDisabled.
type Disabled struct{}

func (Disabled) Generate(ctx context.Context, req Request) (Response, error) {
	return Response{}, ErrDisabled
}

// IsDisabled reports whether g cannot produce text at all.
func IsDisabled(g Generator) bool {
	if g == nil {
		return true
	}
	_, ok := g.(Disabled)
	return ok
}

// Settings configures a backend.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}
