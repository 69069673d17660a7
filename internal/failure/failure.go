// Package failure defines the labeled failures a report run can end with.
// Every stage of the pipeline reports errors as *Error so that callers get
// one value naming where the run stopped and why.
package failure

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a failure for retry and abort decisions.
type Kind string

const (
	KindNetworkTransient   Kind = "network_transient"   // retryable
	KindRateLimited        Kind = "rate_limited"        // retryable, longer backoff
	KindFatalAPI           Kind = "fatal_api"           // abort
	KindDegenerateResponse Kind = "degenerate_response" // abort
	KindMissingTemplate    Kind = "missing_template"    // abort, configuration bug
	KindLayoutOverflow     Kind = "layout_overflow"     // logged, line dropped
	KindConfig             Kind = "config"
	KindIO                 Kind = "io"
	KindInternal           Kind = "internal"
)

// Retryable reports whether a failure of this kind may succeed on another attempt.
func (k Kind) Retryable() bool {
	return k == KindNetworkTransient || k == KindRateLimited
}

// Stage names the pipeline step that failed.
type Stage string

const (
	StagePlan      Stage = "plan"
	StageBootstrap Stage = "bootstrap"
	StageSubmit    Stage = "submit"
	StageSection   Stage = "section"
	StagePage      Stage = "page"
	StageParse     Stage = "parse"
	StageLayout    Stage = "layout"
	StageRender    Stage = "render"
	StageAssemble  Stage = "assemble"
	StageWrite     Stage = "write"
)

// Error is a failure labeled with the stage it happened in.
type Error struct {
	Stage   Stage
	Kind    Kind
	Cause   error
	Context map[string]string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Stage))
	b.WriteString(" [")
	b.WriteString(string(e.Kind))
	b.WriteString("]")
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, e.Context[k])
		}
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error with the same stage and kind. Empty fields on the
// target act as wildcards.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Stage != "" && t.Stage != e.Stage {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	return true
}

// With adds a context key-value pair and returns the error for chaining.
func (e *Error) With(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// Wrap labels a non-nil err with stage. The kind is taken from err when it
// already carries one, otherwise fallback is used.
func Wrap(stage Stage, fallback Kind, err error) *Error {
	kind := KindOf(err)
	if kind == "" {
		kind = fallback
	}
	return &Error{Stage: stage, Kind: kind, Cause: err}
}

// KindOf returns the kind carried anywhere in err's chain, or "" if none.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	var k interface{ FailureKind() Kind }
	if errors.As(err, &k) {
		return k.FailureKind()
	}
	return ""
}

// DegenerateError reports generated text too short to be accepted.
type DegenerateError struct {
	What string // "response", "chunk 2", ...
	Got  int    // characters received
	Min  int    // characters required
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("degenerate %s: %d characters, need at least %d", e.What, e.Got, e.Min)
}

func (e *DegenerateError) FailureKind() Kind { return KindDegenerateResponse }

// MissingTemplateError reports a template the catalog refers to but which is absent on disk.
type MissingTemplateError struct {
	Key  string
	Path string
	Err  error
}

func (e *MissingTemplateError) Error() string {
	msg := fmt.Sprintf("template %s missing", e.Key)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MissingTemplateError) Unwrap() error { return e.Err }

func (e *MissingTemplateError) FailureKind() Kind { return KindMissingTemplate }
