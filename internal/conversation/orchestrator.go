// Package conversation drives the multi-turn dialogue with the generation
// service for one report run: a bounded context buffer, retries, and
// validation of large responses.
package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thywilljoshua/survey-report/internal/ai"
	"github.com/thywilljoshua/survey-report/internal/failure"
	"github.com/thywilljoshua/survey-report/internal/retry"
)

// Policy holds request sizing and validation constants.
type Policy struct {
	Temperature float64
	// MaxOutputTokens caps every request.
	MaxOutputTokens int
	// LargeRequestChars marks page requests whose reply must be validated.
	// Zero disables the check.
	LargeRequestChars int
	// MinLargeResponseChars is the shortest acceptable reply to a large request.
	MinLargeResponseChars int
	// RequestTimeout bounds a single request attempt.
	RequestTimeout time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		Temperature:           0.7,
		MaxOutputTokens:       8000,
		LargeRequestChars:     1000,
		MinLargeResponseChars: 1000,
		RequestTimeout:        5 * time.Minute,
	}
}

// Reply is the outcome of one request.
type Reply struct {
	Text  string
	Usage ai.Usage
}

// Stats counts what the orchestrator did so far.
type Stats struct {
	Calls        int      `json:"calls"`
	Retries      int      `json:"retries"`
	TrimmedTurns int      `json:"trimmed_turns"`
	Usage        ai.Usage `json:"usage"`
}

type Orchestrator struct {
	gen    ai.Generator
	buf    *Buffer
	policy Policy
	retry  retry.Policy
	log    *zap.Logger
	stats  Stats
}

func New(gen ai.Generator, buf *Buffer, policy Policy, rp retry.Policy, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{gen: gen, buf: buf, policy: policy, retry: rp, log: log}
}

func (o *Orchestrator) Stats() Stats { return o.stats }

// Turns returns a copy of the conversation so far.
func (o *Orchestrator) Turns() []ai.Turn { return o.buf.Turns() }

// Bootstrap seeds the conversation with the system instructions. It does not
// call the service; the first request is Submit.
func (o *Orchestrator) Bootstrap(systemInstructions string) error {
	if o.buf.Len() != 0 {
		return errors.New("conversation already bootstrapped")
	}
	if strings.TrimSpace(systemInstructions) == "" {
		return errors.New("empty system instructions")
	}
	o.buf.Append(ai.Turn{Role: ai.RoleSystem, Content: systemInstructions})
	return nil
}

// Submit sends the user's data; the reply is the acknowledgment that, with
// the system turn and the data turn, forms the retained prefix.
func (o *Orchestrator) Submit(ctx context.Context, data string) (Reply, error) {
	if o.buf.Len() != 1 {
		return Reply{}, errors.New("submit must directly follow bootstrap")
	}
	return o.exchange(ctx, data, 0)
}

// RequestSection sends the instructions for one section.
func (o *Orchestrator) RequestSection(ctx context.Context, instructions string) (Reply, error) {
	return o.exchange(ctx, instructions, 0)
}

// RequestPage asks for page content of roughly expectedLength characters.
// Replies to large requests shorter than the policy minimum are rejected.
func (o *Orchestrator) RequestPage(ctx context.Context, prompt string, expectedLength int) (Reply, error) {
	return o.exchange(ctx, prompt, expectedLength)
}

func (o *Orchestrator) exchange(ctx context.Context, content string, expectedLength int) (Reply, error) {
	if o.buf.Len() == 0 {
		return Reply{}, errors.New("conversation not bootstrapped")
	}
	turn := ai.Turn{Role: ai.RoleUser, Content: content}

	if dropped := o.buf.Trim(turn); dropped > 0 {
		o.stats.TrimmedTurns += dropped
		o.log.Info("conversation trimmed",
			zap.Int("dropped_turns", dropped),
			zap.Int("estimate_tokens", o.buf.Estimate(turn)))
	}

	req := ai.Request{
		Prior:           o.buf.Turns(),
		Turn:            turn,
		MaxOutputTokens: o.maxOutput(expectedLength),
		Temperature:     o.policy.Temperature,
	}

	rp := o.retry
	rp.OnRetry = func(attempt int, kind failure.Kind, delay time.Duration, err error) {
		o.stats.Retries++
		o.log.Warn("generation request failed, retrying",
			zap.Int("attempt", attempt),
			zap.String("kind", string(kind)),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	var resp ai.Response
	err := rp.Do(ctx, func(ctx context.Context) error {
		o.stats.Calls++
		callCtx := ctx
		if o.policy.RequestTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, o.policy.RequestTimeout)
			defer cancel()
		}
		r, err := o.gen.Generate(callCtx, req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return Reply{}, err
	}

	text := strings.TrimSpace(resp.Text)
	if o.policy.LargeRequestChars > 0 && expectedLength >= o.policy.LargeRequestChars {
		if n := len([]rune(text)); n < o.policy.MinLargeResponseChars {
			return Reply{}, &failure.DegenerateError{What: "page response", Got: n, Min: o.policy.MinLargeResponseChars}
		}
	}

	o.stats.Usage = o.stats.Usage.Add(resp.Usage)
	o.buf.Append(turn, ai.Turn{Role: ai.RoleAssistant, Content: text})
	o.log.Debug("generation reply",
		zap.Int("chars", len([]rune(text))),
		zap.Int("expected", expectedLength),
		zap.Int("turns", o.buf.Len()))
	return Reply{Text: text, Usage: resp.Usage}, nil
}

// maxOutput sizes the token cap for an expected reply length, leaving room
// for markup and overshoot.
func (o *Orchestrator) maxOutput(expectedLength int) int {
	limit := o.policy.MaxOutputTokens
	if expectedLength <= 0 {
		return limit
	}
	want := o.buf.budget.EstimateTokens(expectedLength)*2 + 256
	if limit > 0 && want > limit {
		return limit
	}
	return want
}
