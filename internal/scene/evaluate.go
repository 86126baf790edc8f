package scene

import (
	"fmt"

	"github.com/akmonengine/overlap"
	"github.com/akmonengine/overlap/gjk"
	"github.com/akmonengine/overlap/vec"
	"github.com/cespare/xxhash/v2"
)

// Entry is the outcome of one pair of a scene.
type Entry struct {
	Pair     NamedPair
	Result   gjk.Result[vec.N]
	Fallback bool
	Expected gjk.Status
	Checked  bool
}

// Mismatch reports whether the entry has an expectation it does not meet.
func (e Entry) Mismatch() bool {
	return e.Checked && e.Result.Status != e.Expected
}

// Report is the outcome of a whole scene.
//
// Fingerprint hashes the status of every pair in pair order. Two runs on the same scene
// have the same fingerprint, whatever the number of workers.
type Report struct {
	Scene       string
	Entries     []Entry
	Summary     overlap.Summary
	Fingerprint uint64
}

// Mismatches returns the entries whose status differs from the expected one.
func (r *Report) Mismatches() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Mismatch() {
			out = append(out, e)
		}
	}
	return out
}

// Evaluate builds the scene and tests every pair with the detector.
// The solver of the detector must have the dimension of the scene.
func Evaluate(detector *overlap.Detector[vec.N, float64], s *Scene, workers int) (*Report, error) {
	m, err := s.Build()
	if err != nil {
		return nil, err
	}
	if dim := detector.Solver.Dimension(); dim != m.Dimension {
		return nil, fmt.Errorf("%w: solver dimension %d, scene dimension %d", ErrInvalidScene, dim, m.Dimension)
	}

	pairs := make([]overlap.Pair[vec.N], len(m.Pairs))
	for i, p := range m.Pairs {
		pairs[i] = overlap.Pair[vec.N]{ID: i, A: m.Shapes[p.A], B: m.Shapes[p.B]}
	}
	reports := overlap.DetectAll(detector, pairs, workers)

	report := &Report{
		Scene:   s.Name,
		Entries: make([]Entry, len(reports)),
		Summary: overlap.Summarize(reports),
	}
	for i, r := range reports {
		entry := Entry{Pair: m.Pairs[i], Result: r.Result, Fallback: r.Fallback}
		entry.Expected, entry.Checked = m.Expectation(entry.Pair)
		report.Entries[i] = entry
	}
	report.Fingerprint = Fingerprint(report.Entries)
	return report, nil
}

// Fingerprint hashes the "a|b|status" line of every entry.
func Fingerprint(entries []Entry) uint64 {
	h := xxhash.New()
	for _, e := range entries {
		_, _ = h.WriteString(e.Pair.String())
		_, _ = h.WriteString("|")
		_, _ = h.WriteString(e.Result.Status.String())
		_, _ = h.WriteString("\n")
	}
	return h.Sum64()
}
