// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package unveil reconstructs the full species probability
// distribution of a population
// from an abundance sample,
// allocating the unobserved probability mass
// to hypothesized unseen species.
package unveil

import (
	"fmt"
	"math"

	"github.com/js-arias/diversity/community"
	"github.com/js-arias/diversity/coverage"
)

// Estimator is a probability vector estimator.
type Estimator string

// Valid probability estimators.
const (
	// Naive uses the empirical frequencies.
	Naive Estimator = "naive"

	// ChaoShen rescales the empirical frequencies
	// by the sample coverage.
	ChaoShen Estimator = "chao-shen"

	// Chao2013 is the one-parameter model:
	// observed frequencies are tuned down
	// and the unseen mass is spread uniformly
	// over the estimated unseen species.
	Chao2013 Estimator = "chao-2013"

	// Chao2015 is the two-parameter model:
	// observed frequencies are tuned down
	// and the unseen mass decreases geometrically.
	// It requires doubletons
	// and falls back to Chao2013 without them.
	Chao2015 Estimator = "chao-2015"
)

// Parse returns the probability estimator
// for a given keyword.
func Parse(s string) (Estimator, error) {
	switch e := Estimator(s); e {
	case Naive, ChaoShen, Chao2013, Chao2015:
		return e, nil
	case "":
		return Chao2015, nil
	}
	return "", fmt.Errorf("unknown probability estimator %q", s)
}

// Unveiling is the shape used to spread
// the unseen probability mass.
type Unveiling string

// Valid unveiling shapes.
const (
	// None adds no unseen species.
	None Unveiling = "none"

	// Uniform spreads the unseen mass equally.
	Uniform Unveiling = "uniform"

	// Geometric spreads the unseen mass
	// in a decreasing geometric sequence.
	Geometric Unveiling = "geometric"
)

// ParseUnveiling returns the unveiling shape
// for a given keyword.
func ParseUnveiling(s string) (Unveiling, error) {
	switch u := Unveiling(s); u {
	case None, Uniform, Geometric:
		return u, nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("unknown unveiling %q", s)
}

// Options collects the parameters
// of a probability reconstruction.
// The zero value selects the defaults:
// the Chao2015 estimator,
// its own unveiling shape,
// the jackknife richness estimator,
// and the default coverage estimator.
type Options struct {
	// Estimator of the observed probabilities.
	Estimator Estimator

	// Unveiling of the unseen mass.
	// Empty selects the estimator's own shape
	// (uniform for Chao2013,
	// geometric for Chao2015,
	// none for the others).
	Unveiling Unveiling

	// Richness estimator for the unseen species count.
	Richness Richness

	// Coverage estimator.
	Coverage coverage.Estimator

	// Jackknife order selection parameters.
	JackMax   int
	JackAlpha float64
}

func (o *Options) fill() {
	if o.Estimator == "" {
		o.Estimator = Chao2015
	}
	if o.Richness == "" {
		o.Richness = Jackknife
	}
	if o.Coverage == "" {
		o.Coverage = coverage.ZhangHuang
	}
	if o.Unveiling == "" {
		switch o.Estimator {
		case Chao2013:
			o.Unveiling = Uniform
		case Chao2015:
			o.Unveiling = Geometric
		default:
			o.Unveiling = None
		}
	}
}

// A Distribution is a reconstructed species
// probability distribution:
// the estimated probabilities of the observed species
// followed by the probabilities
// of the hypothesized unseen species.
type Distribution struct {
	// Probs is the probability vector.
	// The first Observed entries correspond,
	// in order,
	// to the species of the source sample.
	Probs []float64

	// Observed is the number of entries
	// for observed species.
	Observed int

	// Estimator actually used,
	// after any fallback.
	Estimator Estimator

	// Unveiling actually used.
	Unveiling Unveiling

	// Richness estimator actually used
	// for the unseen species count,
	// or empty if no tail was added.
	Richness Richness

	// Coverage used by the reconstruction,
	// or NaN for the naive estimator.
	Coverage float64

	// Notice records fallbacks and degeneracies.
	Notice string
}

// Probabilities reconstructs the species probability
// distribution of the population
// sampled by an abundance vector.
func Probabilities(counts []float64, o Options) (*Distribution, error) {
	o.fill()

	var n float64
	obs := 0
	fc := make(map[int]int)
	for _, v := range counts {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("abundance vector: invalid value %v: %w", v, community.ErrInvalidInput)
		}
		if v == 0 {
			continue
		}
		n += v
		obs++
		fc[freqClass(v)]++
	}
	if n == 0 {
		return nil, fmt.Errorf("abundance vector: no observed individuals: %w", community.ErrInvalidInput)
	}

	if o.Estimator == Naive {
		d := &Distribution{
			Probs:     make([]float64, 0, obs),
			Observed:  obs,
			Estimator: Naive,
			Unveiling: None,
			Coverage:  math.NaN(),
		}
		for _, v := range counts {
			if v <= 0 {
				continue
			}
			d.Probs = append(d.Probs, v/n)
		}
		return d, nil
	}

	est := o.Estimator
	var notice string
	if est == Chao2015 && fc[2] == 0 {
		est = Chao2013
		if o.Unveiling == Geometric {
			o.Unveiling = Uniform
		}
		notice = "chao-2015 requires doubletons, using chao-2013"
	}

	c, covNote := coverage.Estimate(counts, o.Coverage)
	if covNote != "" {
		notice = appendNotice(notice, covNote)
	}
	if math.IsNaN(c) || c <= 0 {
		return nil, fmt.Errorf("abundance vector: coverage is zero: %w", community.ErrInvalidInput)
	}

	// observed species
	ps := make([]float64, 0, obs)
	switch est {
	case ChaoShen:
		for _, v := range counts {
			if v <= 0 {
				continue
			}
			ps = append(ps, c*v/n)
		}
	case Chao2013, Chao2015:
		// tuning parameter lambda
		var den float64
		for _, v := range counts {
			if v <= 0 {
				continue
			}
			p := v / n
			den += p * math.Pow(1-p, n)
		}
		lambda := 0.0
		if den > 0 {
			lambda = (1 - c) / den
		}
		for _, v := range counts {
			if v <= 0 {
				continue
			}
			p := v / n
			tp := p * (1 - lambda*math.Pow(1-p, n))
			if tp < 0 {
				return nil, fmt.Errorf("abundance vector: negative tuned probability for count %v: %w", v, community.ErrInvalidInput)
			}
			ps = append(ps, tp)
		}
	}

	d := &Distribution{
		Observed:  obs,
		Estimator: est,
		Unveiling: o.Unveiling,
		Coverage:  c,
	}

	if o.Unveiling == None || c >= 1 {
		d.Probs = ps
		d.Unveiling = None
		d.Notice = notice
		return d, nil
	}

	// unseen species tail
	var obsMass float64
	for _, p := range ps {
		obsMass += p
	}
	deficit := 1 - obsMass
	if deficit < 0 {
		deficit = 0
	}

	rich, rUsed, rNote := RichnessEstimate(counts, o.Richness, o.JackMax, o.JackAlpha)
	if rNote != "" {
		notice = appendNotice(notice, rNote)
	}
	d.Richness = rUsed
	s0 := int(math.Ceil(rich)) - obs
	if s0 < 1 && deficit > 0 {
		s0 = 1
	}

	tail := make([]float64, 0, s0)
	switch o.Unveiling {
	case Uniform:
		for range s0 {
			tail = append(tail, deficit/float64(s0))
		}
	case Geometric:
		f1 := float64(fc[1])
		f2 := float64(fc[2])
		r := 2 * f2 / ((n - 1) * f1)
		if f1 == 0 || r <= 0 || r >= 1 || s0 == 1 {
			// degenerate ratio, spread uniformly
			if s0 > 1 {
				notice = appendNotice(notice, "geometric unveiling is degenerate, using uniform")
				d.Unveiling = Uniform
			}
			for range s0 {
				tail = append(tail, deficit/float64(s0))
			}
			break
		}
		w := deficit * (1 - r) / (1 - math.Pow(r, float64(s0)))
		for range s0 {
			tail = append(tail, w)
			w *= r
		}
	}

	d.Probs = append(ps, tail...)
	d.Notice = notice
	return d, nil
}

func appendNotice(notice, add string) string {
	if notice == "" {
		return add
	}
	return notice + "; " + add
}
