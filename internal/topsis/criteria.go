package topsis

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Impact says whether larger values of a criterion are better (+) or worse (-).
type Impact string

const (
	Benefit Impact = "+"
	Cost    Impact = "-"
)

var (
	ErrWeightsNotNumeric = errors.New("Weights must be numeric values separated by commas")
	ErrBadImpact         = errors.New("Impacts must be '+' or '-'")
	ErrCountMismatch     = errors.New("Number of weights and impacts must be equal")
)

// Criteria holds parsed weights and impacts, one entry per criterion column.
type Criteria struct {
	Weights []float64
	Impacts []Impact
}

// Len returns the number of criteria.
func (c Criteria) Len() int { return len(c.Weights) }

// ParseCriteria parses comma-separated weights and impacts. Weights are checked
// first, then the counts, then the impact signs.
func ParseCriteria(weights, impacts string) (Criteria, error) {
	w, err := ParseWeights(weights)
	if err != nil {
		return Criteria{}, err
	}
	tokens := split(impacts)
	if len(tokens) != len(w) {
		return Criteria{}, ErrCountMismatch
	}
	im, err := parseImpactTokens(tokens)
	if err != nil {
		return Criteria{}, err
	}
	return Criteria{Weights: w, Impacts: im}, nil
}

// ParseWeights accepts finite numbers only; NaN and infinities are rejected.
func ParseWeights(s string) ([]float64, error) {
	tokens := split(s)
	out := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrWeightsNotNumeric
		}
		out = append(out, v)
	}
	return out, nil
}

func ParseImpacts(s string) ([]Impact, error) {
	return parseImpactTokens(split(s))
}

func parseImpactTokens(tokens []string) ([]Impact, error) {
	out := make([]Impact, 0, len(tokens))
	for _, tok := range tokens {
		switch Impact(tok) {
		case Benefit, Cost:
			out = append(out, Impact(tok))
		default:
			return nil, ErrBadImpact
		}
	}
	return out, nil
}

func split(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
