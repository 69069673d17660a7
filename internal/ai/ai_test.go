package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/survey-report/internal/failure"
)

func TestClassifyStatus(t *testing.T) {
	cases := map[int]failure.Kind{
		http.StatusTooManyRequests:     failure.KindRateLimited,
		http.StatusServiceUnavailable:  failure.KindNetworkTransient,
		http.StatusBadGateway:          failure.KindNetworkTransient,
		http.StatusGatewayTimeout:      failure.KindNetworkTransient,
		http.StatusBadRequest:          failure.KindFatalAPI,
		http.StatusUnauthorized:        failure.KindFatalAPI,
		http.StatusInternalServerError: failure.KindNetworkTransient,
	}
	for status, want := range cases {
		assert.Equal(t, want, classifyStatus(status), "status %d", status)
	}
}

func TestClassifyTransport(t *testing.T) {
	assert.Equal(t, failure.KindNetworkTransient, classifyTransport(fmt.Errorf("read: %w", io.ErrUnexpectedEOF)))
	assert.Equal(t, failure.KindNetworkTransient, classifyTransport(context.DeadlineExceeded))
	assert.Equal(t, failure.KindFatalAPI, classifyTransport(context.Canceled))
	assert.Equal(t, failure.KindFatalAPI, classifyTransport(errors.New("bad json")))
}

func TestAPIErrorCarriesKind(t *testing.T) {
	err := fmt.Errorf("call: %w", &APIError{Provider: "perplexity", Status: 429, Kind: failure.KindRateLimited, Err: errors.New("slow down")})
	assert.Equal(t, failure.KindRateLimited, failure.KindOf(err))
}

func TestDisabled(t *testing.T) {
	assert.True(t, IsDisabled(Disabled{}))
	assert.True(t, IsDisabled(nil))

	_, err := Disabled{}.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewSelectsBackend(t *testing.T) {
	ctx := context.Background()

	g, err := New(ctx, Settings{Provider: "disabled"})
	require.NoError(t, err)
	assert.True(t, IsDisabled(g))

	_, err = New(ctx, Settings{Provider: "perplexity", Model: "sonar-pro"})
	assert.Error(t, err, "missing api key must be rejected")

	g, err = New(ctx, Settings{Provider: "perplexity", Model: "sonar-pro", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, g)

	_, err = New(ctx, Settings{Provider: "deepseek", Model: "m", APIKey: "k"})
	assert.Error(t, err)

	_, err = New(ctx, Settings{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestUsageAdd(t *testing.T) {
	u := Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}.Add(Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30})
	assert.Equal(t, Usage{PromptTokens: 11, CompletionTokens: 22, TotalTokens: 33}, u)
}
