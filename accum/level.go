// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package accum

import (
	"fmt"
	"math"

	"github.com/js-arias/diversity/community"
)

// CoverageAt returns the expected sample coverage
// at a given sample size:
// the exact expectation below the observed size,
// and the Chao deficit decay above it.
func (a *Accumulator) CoverageAt(level int) float64 {
	if level < 1 {
		return math.NaN()
	}
	n := float64(a.n)

	if level < a.n {
		fm := float64(level)
		lcm := logBinom(n-1, fm)
		var s float64
		for _, v := range a.counts {
			if v <= 0 {
				continue
			}
			if n-v < fm {
				continue
			}
			s += v / n * math.Exp(logBinom(n-v, fm)-lcm)
		}
		return 1 - s
	}

	if a.f1 == 0 {
		return 1
	}
	// odds of a true singleton
	var odds float64
	if a.f2 > 0 {
		odds = (n - 1) * a.f1 / ((n-1)*a.f1 + 2*a.f2)
	} else if a.f1 > 1 {
		odds = (n - 1) * (a.f1 - 1) / ((n-1)*(a.f1-1) + 2)
	} else {
		odds = 0
	}
	j := float64(level - a.n)
	return 1 - a.f1/n*math.Pow(odds, j+1)
}

// LevelAtCoverage returns the smallest sample size
// whose expected coverage reaches the target,
// a fraction in (0,1).
func (a *Accumulator) LevelAtCoverage(target float64) (int, error) {
	if target <= 0 || target >= 1 || math.IsNaN(target) {
		return 0, fmt.Errorf("coverage target %v out of (0,1): %w", target, community.ErrInvalidInput)
	}

	// upper bracket by doubling
	hi := a.n
	for a.CoverageAt(hi) < target {
		hi *= 2
		if hi > 1000*a.n {
			return 0, fmt.Errorf("coverage target %v is not reachable: %w", target, community.ErrInvalidInput)
		}
	}

	lo := 1
	for lo < hi {
		mid := (lo + hi) / 2
		if a.CoverageAt(mid) < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

// EntropyAtCoverage returns the expected entropy of order q
// at the sample size that reaches
// the target coverage.
func (a *Accumulator) EntropyAtCoverage(q, target float64) (community.Result, error) {
	level, err := a.LevelAtCoverage(target)
	if err != nil {
		return community.Result{}, err
	}
	return a.Entropy(q, level), nil
}

// DiversityAtCoverage returns the expected Hill number
// of order q
// at the sample size that reaches
// the target coverage.
func (a *Accumulator) DiversityAtCoverage(q, target float64) (community.Result, error) {
	level, err := a.LevelAtCoverage(target)
	if err != nil {
		return community.Result{}, err
	}
	return a.Diversity(q, level), nil
}
