package report

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thywilljoshua/survey-report/internal/plan"
)

type BatchItem struct {
	Variant plan.Variant
	Request Request
}

// BatchOutcome is the result of one batch item; exactly one of Result and
// Err is set.
type BatchOutcome struct {
	RequesterID string  `json:"requester_id"`
	Result      *Result `json:"result,omitempty"`
	Err         error   `json:"-"`
	Error       string  `json:"error,omitempty"`
}

// Batch runs independent reports with at most limit in flight. A failed
// report does not stop the others. Outcomes keep the order of items.
func (s *Service) Batch(ctx context.Context, items []BatchItem, limit int) []BatchOutcome {
	out := make([]BatchOutcome, len(items))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, it := range items {
		g.Go(func() error {
			res, err := s.Generate(gctx, it.Variant, it.Request)
			o := BatchOutcome{RequesterID: it.Request.RequesterID}
			if err != nil {
				o.Err, o.Error = err, err.Error()
			} else {
				o.Result = &res
			}
			out[i] = o
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range out {
		if o.Err != nil {
			failed++
		}
	}
	s.log.Info("batch finished", zap.Int("reports", len(items)), zap.Int("failed", failed))
	return out
}
