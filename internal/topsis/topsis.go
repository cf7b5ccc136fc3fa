// Package topsis ranks alternatives with the Technique for Order of Preference
// by Similarity to Ideal Solution.
package topsis

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrNoAlternatives        = errors.New("no rows to rank")
	ErrDimensionMismatch     = errors.New("Number of weights, impacts and columns must be same")
	ErrZeroColumn            = errors.New("criterion column is all zeros")
	ErrIdenticalAlternatives = errors.New("all alternatives are identical")
)

// Result holds one score and rank per input row, in input order.
type Result struct {
	Scores []float64
	Ranks  []int
}

// Compute scores every row of matrix against the criteria. Rows are
// alternatives, columns are criteria.
func Compute(matrix [][]float64, c Criteria) (*Result, error) {
	if len(matrix) == 0 {
		return nil, ErrNoAlternatives
	}
	n := c.Len()
	if n == 0 || len(c.Impacts) != n {
		return nil, ErrDimensionMismatch
	}
	for _, row := range matrix {
		if len(row) != n {
			return nil, ErrDimensionMismatch
		}
	}
	for _, w := range c.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, ErrWeightsNotNumeric
		}
	}

	weighted := make([][]float64, len(matrix))
	for i := range weighted {
		weighted[i] = make([]float64, n)
	}
	best := make([]float64, n)
	worst := make([]float64, n)

	for j := 0; j < n; j++ {
		var sq float64
		for _, row := range matrix {
			sq += row[j] * row[j]
		}
		norm := math.Sqrt(sq)
		if norm == 0 {
			return nil, fmt.Errorf("column %d: %w", j+1, ErrZeroColumn)
		}

		hi, lo := math.Inf(-1), math.Inf(1)
		for i, row := range matrix {
			v := row[j] / norm * c.Weights[j]
			weighted[i][j] = v
			hi = math.Max(hi, v)
			lo = math.Min(lo, v)
		}
		if c.Impacts[j] == Cost {
			hi, lo = lo, hi
		}
		best[j], worst[j] = hi, lo
	}

	scores := make([]float64, len(matrix))
	for i, row := range weighted {
		dPos := distance(row, best)
		dNeg := distance(row, worst)
		if dPos+dNeg == 0 {
			return nil, ErrIdenticalAlternatives
		}
		scores[i] = dNeg / (dPos + dNeg)
	}

	return &Result{Scores: scores, Ranks: Rank(scores)}, nil
}

func distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Rank assigns rank 1 to the highest score. Tied scores share the average of
// the positions they span, truncated to an integer.
func Rank(scores []float64) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	ranks := make([]int, len(scores))
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && scores[idx[end]] == scores[idx[start]] {
			end++
		}
		// positions start+1..end averaged
		avg := float64(start+1+end) / 2
		for _, i := range idx[start:end] {
			ranks[i] = int(avg)
		}
		start = end
	}
	return ranks
}
