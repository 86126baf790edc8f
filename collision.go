package overlap

import (
	"sync"

	"github.com/akmonengine/overlap/gjk"
	"github.com/akmonengine/overlap/shape"
	"github.com/akmonengine/overlap/vec"
	"go.uber.org/zap"
)

// Pair represents a pair of shapes to test for overlap.
// ID is chosen by the caller and copied to the report.
type Pair[V any] struct {
	ID int
	A  shape.Shape[V]
	B  shape.Shape[V]
}

// Report is the outcome of one pair.
// Fallback is set when the first query was inconclusive and Result comes from the retry
// on inflated shapes.
type Report[V any] struct {
	Pair     Pair[V]
	Result   gjk.Result[V]
	Fallback bool
}

// Detector runs overlap queries and applies the fallback policy for inconclusive ones.
//
// When FallbackMargin is positive, a pair whose query ends Inconclusive is tested once more
// with both shapes inflated by the margin. Shapes that only touch within round-off then
// report Overlapping instead of Inconclusive.
type Detector[V vec.Vector[V, S], S vec.Scalar] struct {
	Solver         *gjk.Solver[V, S]
	FallbackMargin S
	Logger         *zap.Logger
}

// NewDetector creates a detector without fallback.
func NewDetector[V vec.Vector[V, S], S vec.Scalar](solver *gjk.Solver[V, S]) *Detector[V, S] {
	return &Detector[V, S]{Solver: solver, Logger: zap.NewNop()}
}

// Detect tests a single pair.
func (d *Detector[V, S]) Detect(p Pair[V]) Report[V] {
	report := Report[V]{Pair: p, Result: d.Solver.Intersect(p.A, p.B)}
	if report.Result.Status != gjk.Inconclusive || d.FallbackMargin <= 0 {
		return report
	}

	retry := d.Solver.Intersect(
		shape.Inflate[V, S](p.A, d.FallbackMargin),
		shape.Inflate[V, S](p.B, d.FallbackMargin),
	)
	d.logger().Debug("retried inconclusive pair on inflated shapes",
		zap.Int("pair", p.ID),
		zap.Float64("margin", float64(d.FallbackMargin)),
		zap.NamedError("first", report.Result.Err),
		zap.Stringer("status", retry.Status),
	)
	report.Result = retry
	report.Fallback = true
	return report
}

func (d *Detector[V, S]) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Detect fans the pairs out to workersCount goroutines. The returned channel is closed once
// pairChan is closed and every pair is reported. Reports arrive in completion order.
func Detect[V vec.Vector[V, S], S vec.Scalar](detector *Detector[V, S], pairChan <-chan Pair[V], workersCount int) <-chan Report[V] {
	workersCount = max(workersCount, 1)
	reportChan := make(chan Report[V], workersCount)

	go func() {
		var wg sync.WaitGroup
		defer close(reportChan)

		for range workersCount {
			wg.Add(1)
			go func() {
				defer wg.Done()

				for p := range pairChan {
					reportChan <- detector.Detect(p)
				}
			}()
		}
		wg.Wait()
	}()

	return reportChan
}

// DetectAll tests every pair and returns the reports in pair order.
func DetectAll[V vec.Vector[V, S], S vec.Scalar](detector *Detector[V, S], pairs []Pair[V], workersCount int) []Report[V] {
	reports := make([]Report[V], len(pairs))
	task(max(workersCount, 1), pairs, func(i int, p Pair[V]) {
		reports[i] = detector.Detect(p)
	})
	return reports
}

// Summary counts reports per status.
type Summary struct {
	Separated    int
	Overlapping  int
	Inconclusive int
	Invalid      int
	Fallbacks    int
}

// Summarize counts the reports.
func Summarize[V any](reports []Report[V]) Summary {
	var s Summary
	for _, r := range reports {
		switch r.Result.Status {
		case gjk.Separated:
			s.Separated++
		case gjk.Overlapping:
			s.Overlapping++
		case gjk.Inconclusive:
			s.Inconclusive++
		case gjk.Invalid:
			s.Invalid++
		}
		if r.Fallback {
			s.Fallbacks++
		}
	}
	return s
}
