// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package coverage estimates the sample coverage
// of a species abundance sample:
// the probability mass of the population
// already represented by the observed species.
package coverage

import (
	"fmt"
	"math"
)

// Estimator is a sample coverage estimator.
type Estimator string

// Valid coverage estimators.
const (
	// Turing is the classic Good-Turing estimator,
	// one minus the fraction of singletons.
	Turing Estimator = "turing"

	// Good adjusts the singleton count
	// with the number of doubletons.
	Good Estimator = "good"

	// Chao weights the singleton fraction
	// by the odds of a true singleton,
	// estimated from the doubleton count.
	Chao Estimator = "chao"

	// ZhangHuang sums a correction term
	// per frequency class.
	// It is the most accurate estimator
	// at moderate sample sizes,
	// and the default.
	ZhangHuang Estimator = "zhang-huang"
)

// Parse returns the coverage estimator
// for a given keyword.
func Parse(s string) (Estimator, error) {
	switch e := Estimator(s); e {
	case Turing, Good, Chao, ZhangHuang:
		return e, nil
	case "":
		return ZhangHuang, nil
	}
	return "", fmt.Errorf("unknown coverage estimator %q", s)
}

// Estimate returns the sample coverage of an abundance sample
// under the given estimator,
// with a diagnostic notice for degenerate samples
// (an empty sample,
// or a sample in which every species is a singleton;
// in the latter case the coverage is zero,
// or NaN for the Chao estimator,
// which requires doubletons).
func Estimate(counts []float64, e Estimator) (float64, string) {
	var n float64
	fc := make(map[int]int)
	for _, v := range counts {
		if v <= 0 {
			continue
		}
		n += v
		c := int(math.Round(v))
		if c < 1 {
			c = 1
		}
		fc[c]++
	}
	if n == 0 {
		return math.NaN(), "degenerate sample: no observed individuals"
	}
	f1 := float64(fc[1])
	f2 := float64(fc[2])

	if allSingletons(fc) {
		notice := "degenerate sample: all species are singletons, coverage is zero"
		if e == Chao {
			return math.NaN(), notice
		}
		return 0, notice
	}

	switch e {
	case Turing:
		return 1 - f1/n, ""
	case Good:
		adj := f1 - 2*f2/(n-1)
		if adj < 0 {
			adj = 0
		}
		return 1 - adj/n, ""
	case Chao:
		if f1 == 0 {
			return 1, ""
		}
		if f2 > 0 {
			return 1 - (f1/n)*((n-1)*f1/((n-1)*f1+2*f2)), ""
		}
		// one-term fallback
		// using the bias corrected singleton count
		return 1 - (f1/n)*((n-1)*(f1-1)/((n-1)*(f1-1)+2)), ""
	case ZhangHuang:
		if f1 == 0 {
			return 1, ""
		}
		c := zhangHuang(fc, n)
		if c < 0 {
			c = 0
		}
		if c > 1 {
			c = 1
		}
		return c, ""
	}
	return math.NaN(), fmt.Sprintf("unknown coverage estimator %q", e)
}

// ZhangHuang computes the alternating series
// sum of f(v) / binomial(n, v)
// over the occupied frequency classes.
func zhangHuang(fc map[int]int, n float64) float64 {
	c := 1.0
	inv := 1.0 // 1 / binomial(n, v)
	sign := 1.0
	for v := 1.0; v <= n; v++ {
		inv *= v / (n - v + 1)
		if f := fc[int(v)]; f > 0 {
			c -= sign * float64(f) * inv
		}
		sign = -sign
		if inv < 1e-17 {
			break
		}
	}
	return c
}

// Deficit returns the coverage deficit
// (one minus the coverage)
// of an abundance sample.
func Deficit(counts []float64, e Estimator) (float64, string) {
	c, notice := Estimate(counts, e)
	return 1 - c, notice
}

func allSingletons(fc map[int]int) bool {
	for v, f := range fc {
		if v != 1 && f > 0 {
			return false
		}
	}
	return fc[1] > 0
}
