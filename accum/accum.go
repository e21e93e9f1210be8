// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package accum predicts the expected entropy
// and diversity of a community
// at sample sizes different from the observed one:
// exact hypergeometric rarefaction below the sample size,
// and asymptotic anchored extrapolation above it.
//
// Extrapolation much beyond two or three times
// the observed sample size
// is known to be statistically unreliable;
// requested levels are never clamped.
package accum

import (
	"fmt"
	"math"
	"sync"

	"github.com/js-arias/diversity/community"
	"github.com/js-arias/diversity/coverage"
	"github.com/js-arias/diversity/tsallis"
	"github.com/js-arias/diversity/unveil"
	"gonum.org/v1/gonum/stat/combin"
)

// Options collects the parameters
// of an accumulation.
// The zero value selects the defaults.
type Options struct {
	// Coverage estimator.
	Coverage coverage.Estimator

	// Probability estimator
	// for the asymptotic distribution.
	Probability unveil.Estimator

	// Unveiling shape for the unseen mass.
	Unveiling unveil.Unveiling

	// Richness estimator for the unseen species count.
	Richness unveil.Richness

	// Jackknife order selection parameters.
	JackMax   int
	JackAlpha float64
}

// An Accumulator predicts entropy and diversity
// of a single community
// at arbitrary sample sizes.
// It memoizes the shared intermediates
// (sample size, frequency counts, coverage,
// and the unveiled asymptotic distribution)
// so repeated calls at different levels
// do not recompute them.
// An accumulator is safe for concurrent use.
type Accumulator struct {
	c      *community.Community
	counts []float64
	n      int
	f1, f2 float64
	cov    float64
	notice string
	dist   *unveil.Distribution
	o      Options

	mu   sync.Mutex
	asym map[float64]float64 // per order asymptotic entropy
}

// New creates an accumulator for a community
// of integer abundances.
func New(c *community.Community, o Options) (*Accumulator, error) {
	if c == nil {
		return nil, fmt.Errorf("nil community: %w", community.ErrInvalidInput)
	}
	if c.IsProb() {
		return nil, fmt.Errorf("community %q: accumulation requires abundance data: %w", c.Name(), community.ErrInvalidInput)
	}
	if c.Richness() == 0 {
		return nil, fmt.Errorf("community %q: no observed individuals: %w", c.Name(), community.ErrInvalidInput)
	}
	if o.Coverage == "" {
		o.Coverage = coverage.ZhangHuang
	}

	a := &Accumulator{
		c:      c,
		counts: c.Counts(),
		n:      int(math.Round(c.N())),
		o:      o,
		asym:   make(map[float64]float64),
	}
	fc := c.FreqCount()
	a.f1 = float64(fc[1])
	a.f2 = float64(fc[2])

	a.cov, a.notice = coverage.Estimate(a.counts, o.Coverage)

	d, err := unveil.Probabilities(a.counts, unveil.Options{
		Estimator: o.Probability,
		Unveiling: o.Unveiling,
		Richness:  o.Richness,
		Coverage:  o.Coverage,
		JackMax:   o.JackMax,
		JackAlpha: o.JackAlpha,
	})
	if err != nil {
		// a coverage of zero
		// leaves no asymptotic distribution;
		// interpolation still works
		a.dist = nil
	} else {
		a.dist = d
	}
	return a, nil
}

// N returns the observed sample size.
func (a *Accumulator) N() int {
	return a.n
}

// Coverage returns the estimated sample coverage
// of the observed sample.
func (a *Accumulator) Coverage() float64 {
	return a.cov
}

// Entropy returns the expected Tsallis entropy of order q
// at the given sample size.
// Levels at or below the observed size
// use the exact expectation
// under hypergeometric subsampling;
// larger levels use the asymptotic anchored extrapolation.
func (a *Accumulator) Entropy(q float64, level int) community.Result {
	res := community.NewResult(a.c.Name(), q, estimatorName(level, a.n), math.NaN())
	res.Coverage = a.cov
	if a.notice != "" {
		res.Notice = a.notice
	}
	if level < 1 || q < 0 || math.IsNaN(q) {
		res.Notice = appendNotice(res.Notice, fmt.Sprintf("invalid level %d or order %v", level, q))
		return res
	}

	if level <= a.n {
		res.Value = a.interpolate(q, level)
		return res
	}

	if a.dist == nil {
		res.Notice = appendNotice(res.Notice, "degenerate sample: no asymptotic distribution for extrapolation")
		return res
	}
	res.Value = a.extrapolate(q, level)
	return res
}

// Diversity returns the expected Hill number of order q
// at the given sample size.
func (a *Accumulator) Diversity(q float64, level int) community.Result {
	res := a.Entropy(q, level)
	res.Value = tsallis.Expq(res.Value, q)
	return res
}

func estimatorName(level, n int) string {
	if level <= n {
		return "interpolation"
	}
	return "extrapolation"
}

// Interpolate computes the exact expected entropy
// at a size m at or below the observed size:
// closed forms at orders zero and two,
// and the combinatorial hypergeometric expectation
// at any other order.
func (a *Accumulator) interpolate(q float64, m int) float64 {
	n := float64(a.n)
	fm := float64(m)

	switch q {
	case 0:
		var s float64
		lcm := logBinom(n, fm)
		for _, v := range a.counts {
			if v <= 0 {
				continue
			}
			if n-v < fm {
				s++
				continue
			}
			s += 1 - math.Exp(logBinom(n-v, fm)-lcm)
		}
		return s - 1
	case 2:
		var e float64
		for _, v := range a.counts {
			if v <= 0 {
				continue
			}
			e += v / (n * fm)
			if a.n > 1 {
				e += (fm - 1) / fm * v * (v - 1) / (n * (n - 1))
			}
		}
		return 1 - e
	}

	// expectation under the hypergeometric
	// distribution of each species count
	var e float64
	lcm := logBinom(n, fm)
	for _, v := range a.counts {
		if v <= 0 {
			continue
		}
		top := int(math.Round(v))
		if top > m {
			top = m
		}
		for x := 1; x <= top; x++ {
			fx := float64(x)
			if n-v < fm-fx {
				continue
			}
			lp := logBinom(v, fx) + logBinom(n-v, fm-fx) - lcm
			p := math.Exp(lp)
			if q == 1 {
				e -= fx / fm * math.Log(fx/fm) * p
				continue
			}
			e += math.Pow(fx/fm, q) * p
		}
	}
	if q == 1 {
		return e
	}
	return (1 - e) / (q - 1)
}

// Extrapolate computes the expected entropy
// at a size m above the observed size.
// Order zero uses the unseen species formula
// of the Chao estimator;
// other orders follow a second order expansion
// of the plug-in entropy
// under the asymptotic distribution,
// shifted so the curve is continuous
// at the observed size.
func (a *Accumulator) extrapolate(q float64, m int) float64 {
	n := float64(a.n)
	fm := float64(m)

	if q == 0 {
		s := float64(a.c.Richness())
		if a.f1 == 0 {
			return s - 1
		}
		var f0 float64
		if a.f2 > 0 {
			f0 = a.f1 * a.f1 / (2 * a.f2)
		} else {
			f0 = a.f1 * (a.f1 - 1) / 2
		}
		if f0 == 0 {
			return s - 1
		}
		g := 1 - math.Pow(1-a.f1/(n*f0+a.f1), fm-n)
		return s + f0*g - 1
	}

	hAsym := a.asymptotic(q)
	bm := hAsym - a.bias(q)/fm
	bn := hAsym - a.bias(q)/n
	obs := a.interpolate(q, a.n)
	return bm + (obs-bn)*(n/fm)
}

// Asymptotic returns the entropy of order q
// of the unveiled distribution,
// memoized per order.
func (a *Accumulator) asymptotic(q float64) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if h, ok := a.asym[q]; ok {
		return h
	}
	h := tsallis.EntropyProbs(a.dist.Probs, q)
	a.asym[q] = h
	return h
}

// Bias returns the first order coefficient
// of the small sample bias of the plug-in entropy
// under the asymptotic distribution:
// (q/2) times the sum of p^(q-1)(1-p).
func (a *Accumulator) bias(q float64) float64 {
	var s float64
	for _, p := range a.dist.Probs {
		if p <= 0 {
			continue
		}
		s += math.Pow(p, q-1) * (1 - p)
	}
	return q / 2 * s
}

func logBinom(n, k float64) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	if k == 0 || k == n {
		return 0
	}
	return combin.LogGeneralizedBinomial(n, k)
}

func appendNotice(notice, add string) string {
	if notice == "" {
		return add
	}
	return notice + "; " + add
}
