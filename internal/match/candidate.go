package match

import (
	"sort"
	"strings"
)

// Target is a field a column could map to.
type Target struct {
	// Value is the dotted field path, e.g. "collectingEvent.dwcCountry".
	Value string
	// Label is the display label, e.g. "Dwc Country".
	Label string
}

// Candidate is a scored Target for one column header.
type Candidate struct {
	Target Target

	// Scoring components
	LabelScore float64 // similarity of header and label
	PathScore  float64 // similarity of header and the last path segment

	// Score is the combined score used for ranking (higher is better).
	Score float64

	NormalizedHeader string
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// Rank scores every target against header and returns them best first.
func Rank(header string, targets []Target) CandidateList {
	norm := NormalizeHeader(header)

	candidates := make(CandidateList, 0, len(targets))

	for _, t := range targets {
		labelScore := Similarity(norm, NormalizeHeader(t.Label))
		pathScore := Similarity(norm, NormalizeHeader(lastSegment(t.Value)))

		candidates = append(candidates, Candidate{
			Target:           t,
			LabelScore:       labelScore,
			PathScore:        pathScore,
			Score:            combinedScore(labelScore, pathScore),
			NormalizedHeader: norm,
		})
	}

	sort.Sort(candidates)

	return candidates
}

// combinedScore weights the better of the two scores at 80% and the other at 20%.
func combinedScore(labelScore, pathScore float64) float64 {
	const (
		bestWeight  = 0.8
		otherWeight = 0.2
	)

	hi, lo := max(labelScore, pathScore), min(labelScore, pathScore)

	return hi*bestWeight + lo*otherWeight
}

func lastSegment(path string) string {
	return path[strings.LastIndex(path, ".")+1:]
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by a shallower path, then alphabetically.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	di, dj := strings.Count(c[i].Target.Value, "."), strings.Count(c[j].Target.Value, ".")
	if di != dj {
		return di < dj
	}

	return c[i].Target.Value < c[j].Target.Value
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// IsAmbiguous returns true if the top two candidates are within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].Score-c[1].Score < threshold
}

// AboveThreshold returns candidates with a score of at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Suggestion thresholds.
const (
	// DefaultMinScore is the minimum score for a suggestion to be shown.
	DefaultMinScore = 0.6
	// DefaultAmbiguityThreshold is the score difference that marks ambiguity.
	DefaultAmbiguityThreshold = 0.05
)
