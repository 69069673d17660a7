package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/survey-report/internal/ai"
	"github.com/thywilljoshua/survey-report/internal/ai/aitest"
	"github.com/thywilljoshua/survey-report/internal/failure"
	"github.com/thywilljoshua/survey-report/internal/retry"
)

type sleeps struct{ got []time.Duration }

func (s *sleeps) policy() retry.Policy {
	p := retry.Default()
	p.Jitter = 0
	p.Sleep = func(_ context.Context, d time.Duration) error {
		s.got = append(s.got, d)
		return nil
	}
	return p
}

func newOrchestrator(t *testing.T, gen ai.Generator, budget Budget) (*Orchestrator, *sleeps) {
	t.Helper()
	s := &sleeps{}
	o := New(gen, NewBuffer(budget, nil), DefaultPolicy(), s.policy(), nil)
	require.NoError(t, o.Bootstrap("system instructions"))
	return o, s
}

func TestBootstrapAndSubmitFormPrefix(t *testing.T) {
	gen := aitest.NewScript(aitest.Step{Text: "Понял, данные получены."})
	o, _ := newOrchestrator(t, gen, DefaultBudget())

	reply, err := o.Submit(context.Background(), "Q1: ... A1: ...")
	require.NoError(t, err)
	assert.Equal(t, "Понял, данные получены.", reply.Text)

	turns := o.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, ai.RoleSystem, turns[0].Role)
	assert.Equal(t, ai.RoleUser, turns[1].Role)
	assert.Equal(t, ai.RoleAssistant, turns[2].Role)

	require.Len(t, gen.Requests, 1)
	assert.Len(t, gen.Requests[0].Prior, 1)
	assert.Equal(t, "Q1: ... A1: ...", gen.Requests[0].Turn.Content)
	assert.Equal(t, 1, o.Stats().Calls)
}

func TestBootstrapTwiceFails(t *testing.T) {
	o, _ := newOrchestrator(t, aitest.NewScript(), DefaultBudget())
	assert.Error(t, o.Bootstrap("again"))
}

func TestRequestBeforeBootstrapFails(t *testing.T) {
	o := New(aitest.NewScript(), NewBuffer(DefaultBudget(), nil), DefaultPolicy(), retry.Default(), nil)
	_, err := o.RequestSection(context.Background(), "x")
	assert.Error(t, err)
}

func TestTransientFailuresAreRetriedWithBackoff(t *testing.T) {
	transient := &ai.APIError{Provider: "test", Status: 503, Kind: failure.KindNetworkTransient, Err: errors.New("unavailable")}
	gen := aitest.NewScript(
		aitest.Step{Text: "ack"},
		aitest.Step{Err: transient},
		aitest.Step{Err: transient},
		aitest.Step{Text: "section ok"},
	)
	o, s := newOrchestrator(t, gen, DefaultBudget())
	_, err := o.Submit(context.Background(), "data")
	require.NoError(t, err)

	reply, err := o.RequestSection(context.Background(), "section")
	require.NoError(t, err)
	assert.Equal(t, "section ok", reply.Text)
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, s.got)
	assert.Equal(t, 4, o.Stats().Calls)
	assert.Equal(t, 2, o.Stats().Retries)
	assert.Equal(t, 5, len(o.Turns()))
}

func TestRateLimitUsesLongerBackoffAndGivesUp(t *testing.T) {
	limited := &ai.APIError{Provider: "test", Status: 429, Kind: failure.KindRateLimited, Err: errors.New("slow down")}
	gen := aitest.NewScript(aitest.Step{Text: "ack"})
	gen.Fallback = func(ai.Request) (string, error) { return "", limited }
	o, s := newOrchestrator(t, gen, DefaultBudget())
	_, err := o.Submit(context.Background(), "data")
	require.NoError(t, err)

	_, err = o.RequestSection(context.Background(), "section")
	require.Error(t, err)
	assert.Equal(t, failure.KindRateLimited, failure.KindOf(err))
	assert.Equal(t, []time.Duration{10 * time.Second, 20 * time.Second, 40 * time.Second}, s.got)
	assert.Len(t, o.Turns(), 3, "failed request must not touch the conversation")
}

func TestFatalErrorIsNotRetried(t *testing.T) {
	fatal := &ai.APIError{Provider: "test", Status: 401, Kind: failure.KindFatalAPI, Err: errors.New("bad key")}
	gen := aitest.NewScript(aitest.Step{Err: fatal})
	o, s := newOrchestrator(t, gen, DefaultBudget())

	_, err := o.Submit(context.Background(), "data")
	require.Error(t, err)
	assert.Equal(t, failure.KindFatalAPI, failure.KindOf(err))
	assert.Empty(t, s.got)
	assert.Equal(t, 1, gen.Calls())
}

func TestShortReplyToLargeRequestIsDegenerate(t *testing.T) {
	gen := aitest.NewScript(aitest.Step{Text: "ack"}, aitest.Step{Text: "слишком коротко"})
	o, s := newOrchestrator(t, gen, DefaultBudget())
	_, err := o.Submit(context.Background(), "data")
	require.NoError(t, err)

	_, err = o.RequestPage(context.Background(), "write 3000 chars", 3000)
	require.Error(t, err)
	var de *failure.DegenerateError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, len([]rune("слишком коротко")), de.Got)
	assert.Empty(t, s.got, "degenerate replies are not retried")
	assert.Len(t, o.Turns(), 3)
}

func TestShortReplyToSmallRequestIsAccepted(t *testing.T) {
	gen := aitest.NewScript(aitest.Step{Text: "ack"}, aitest.Step{Text: "short"})
	o, _ := newOrchestrator(t, gen, DefaultBudget())
	_, err := o.Submit(context.Background(), "data")
	require.NoError(t, err)

	reply, err := o.RequestPage(context.Background(), "tiny", 200)
	require.NoError(t, err)
	assert.Equal(t, "short", reply.Text)
}

func TestLongConversationIsTrimmedKeepingPrefix(t *testing.T) {
	page := strings.Repeat("текст ", 500) // 3000 runes
	gen := aitest.NewScript(aitest.Step{Text: "ack"})
	gen.Fallback = func(ai.Request) (string, error) { return page, nil }

	budget := Budget{CharsPerToken: 1, Upper: 20_000, Lower: 14_000}
	o, _ := newOrchestrator(t, gen, budget)
	_, err := o.Submit(context.Background(), "submitted data")
	require.NoError(t, err)

	for i := 1; i <= 20; i++ {
		_, err := o.RequestPage(context.Background(), fmt.Sprintf("page %d", i), 3000)
		require.NoError(t, err)
	}

	turns := o.Turns()
	assert.Equal(t, "system instructions", turns[0].Content)
	assert.Equal(t, "submitted data", turns[1].Content)
	assert.Equal(t, "ack", turns[2].Content)
	assert.Equal(t, "page 20", turns[len(turns)-2].Content)
	assert.Less(t, len(turns), 3+40)
	assert.Positive(t, o.Stats().TrimmedTurns)

	for i, req := range gen.Requests {
		est := budget.EstimateTokens(chars(req.Prior) + chars([]ai.Turn{req.Turn}))
		assert.LessOrEqual(t, est, budget.Upper, "request %d over budget", i)
	}
	// Pairs stay aligned after trimming.
	for i := 3; i < len(turns); i++ {
		want := ai.RoleUser
		if (i-3)%2 == 1 {
			want = ai.RoleAssistant
		}
		assert.Equal(t, want, turns[i].Role)
	}
}

func TestUsageAccumulates(t *testing.T) {
	gen := aitest.NewScript(aitest.Step{Text: "abcd"}, aitest.Step{Text: "abcdefgh"})
	o, _ := newOrchestrator(t, gen, DefaultBudget())
	_, err := o.Submit(context.Background(), "data")
	require.NoError(t, err)
	_, err = o.RequestSection(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, 3, o.Stats().Usage.CompletionTokens)
}
