package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsInnerKind(t *testing.T) {
	inner := &DegenerateError{What: "response", Got: 50, Min: 1000}
	err := Wrap(StagePage, KindInternal, fmt.Errorf("page 3: %w", inner))

	assert.Equal(t, KindDegenerateResponse, err.Kind)
	assert.Equal(t, StagePage, err.Stage)

	var de *DegenerateError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 50, de.Got)
}

func TestWrapFallbackKind(t *testing.T) {
	err := Wrap(StageWrite, KindIO, errors.New("disk full"))
	assert.Equal(t, KindIO, err.Kind)
	assert.Contains(t, err.Error(), "write [io]: disk full")
}

func TestIsMatchesStageAndKind(t *testing.T) {
	err := fmt.Errorf("run: %w", Wrap(StageAssemble, KindIO, &MissingTemplateError{Key: "basic/cover", Path: "/x"}))

	assert.True(t, errors.Is(err, &Error{Kind: KindMissingTemplate}))
	assert.True(t, errors.Is(err, &Error{Stage: StageAssemble}))
	assert.False(t, errors.Is(err, &Error{Stage: StageRender}))
}

func TestContextIsSortedInMessage(t *testing.T) {
	err := Wrap(StagePage, KindFatalAPI, errors.New("boom")).With("section", "thinking").With("page", "4")
	assert.Equal(t, "page [fatal_api] page=4 section=thinking: boom", err.Error())
}

func TestRetryable(t *testing.T) {
	assert.True(t, KindNetworkTransient.Retryable())
	assert.True(t, KindRateLimited.Retryable())
	assert.False(t, KindFatalAPI.Retryable())
	assert.False(t, KindDegenerateResponse.Retryable())
}
