// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package filters

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/solsniper/log"
	"github.com/luxfi/solsniper/metrics"
	"github.com/luxfi/solsniper/types"
)

// Engine holds an ordered sequence of filters, configured from boolean
// flags (spec §4.4). It evaluates all filters in parallel and ANDs their
// results.
type Engine struct {
	filters []Filter
	metrics *metrics.Metrics
}

// New builds an Engine over filters, in the order they should be reported
// (evaluation itself is unordered/parallel; order only affects log
// ordering determinism in tests).
func New(m *metrics.Metrics, filters ...Filter) *Engine {
	return &Engine{filters: filters, metrics: m}
}

// Execute evaluates every configured filter concurrently and returns true
// iff every one returned {ok: true}. A filter whose evaluation itself
// errors (spec §7 "Filter-fetch-error") is treated as {ok: false} for this
// iteration, not propagated.
func (e *Engine) Execute(ctx context.Context, keys types.PoolKeys) bool {
	if len(e.filters) == 0 {
		return true
	}

	results := make([]Result, len(e.filters))
	var g errgroup.Group
	for i, f := range e.filters {
		i, f := i, f
		g.Go(func() error {
			res, err := f.Execute(ctx, keys)
			if err != nil {
				log.Info("filters: evaluation error, treating as failure", "mint", keys.Pool.BaseMint.String(), "filter", f.Name(), "error", err)
				results[i] = Result{OK: false, Message: err.Error()}
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	allOK := true
	for i, res := range results {
		if !res.OK {
			allOK = false
			logFilterFailure(keys.Pool.BaseMint.String(), e.filters[i].Name(), res.Message)
		}
	}

	if e.metrics != nil {
		outcome := "pass"
		if !allOK {
			outcome = "fail"
		}
		e.metrics.FilterEvaluations.WithLabelValues(outcome).Inc()
	}
	return allOK
}

// RunConsecutiveWindow polls Execute in a loop bounded by
// checkDuration/checkInterval iterations. A counter tracks consecutive
// successes and resets to zero on any failure; the loop returns true as
// soon as the counter reaches consecutiveMatchCount, false if the
// iteration bound is exhausted. If either checkDuration or checkInterval
// is zero, the engine is bypassed and the result is true (spec §4.4).
func (e *Engine) RunConsecutiveWindow(ctx context.Context, keys types.PoolKeys, checkInterval, checkDuration time.Duration, consecutiveMatchCount int) bool {
	if checkInterval <= 0 || checkDuration <= 0 {
		return true
	}
	iterations := int(checkDuration / checkInterval)
	if iterations <= 0 {
		return true
	}

	consecutive := 0
	for i := 0; i < iterations; i++ {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if e.Execute(ctx, keys) {
			consecutive++
			if consecutive >= consecutiveMatchCount {
				return true
			}
		} else {
			consecutive = 0
		}

		if i < iterations-1 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(checkInterval):
			}
		}
	}
	return false
}
