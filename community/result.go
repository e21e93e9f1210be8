// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package community

import "math"

// A Result is the outcome of a diversity estimation
// for a single community
// at a single order q.
// Results are created per call
// and never mutated afterwards.
type Result struct {
	// Community is the name of the community.
	Community string

	// Order is the order q of the estimation.
	Order float64

	// Estimator is the name of the estimator
	// actually used,
	// after any fallback substitution.
	Estimator string

	// Coverage is the sample coverage
	// used by the estimation,
	// or NaN if no coverage was required.
	Coverage float64

	// Value is the estimated entropy or diversity.
	// It is NaN for degenerate samples.
	Value float64

	// StdErr is the standard error of the estimate,
	// or NaN when no error estimate is available.
	StdErr float64

	// Notice records a diagnostic
	// (a degenerate sample,
	// or an estimator substitution),
	// and is empty otherwise.
	Notice string
}

// NewResult creates a result record
// with no coverage,
// no standard error,
// and no notice.
func NewResult(name string, q float64, estimator string, value float64) Result {
	return Result{
		Community: name,
		Order:     q,
		Estimator: estimator,
		Coverage:  math.NaN(),
		Value:     value,
		StdErr:    math.NaN(),
	}
}
