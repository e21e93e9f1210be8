// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tsallis

import (
	"fmt"
	"math"

	"github.com/js-arias/diversity/community"
	"github.com/js-arias/diversity/coverage"
	"github.com/js-arias/diversity/unveil"
)

// Estimator is a Tsallis entropy estimator.
type Estimator string

// Valid entropy estimators.
const (
	// Naive is the plug-in estimator
	// on the empirical frequencies.
	Naive Estimator = "naive"

	// ChaoShen applies the Horvitz-Thompson correction
	// to the coverage rescaled frequencies.
	ChaoShen Estimator = "chao-shen"

	// ZhangHuang evaluates a correction series
	// per frequency class.
	ZhangHuang Estimator = "zhang-huang"

	// MarconZhang takes the larger
	// of the ChaoShen and ZhangHuang corrections.
	MarconZhang Estimator = "marcon-zhang"

	// UnveilC evaluates the entropy
	// on a distribution unveiled
	// with the Chao1 richness estimator.
	UnveilC Estimator = "unveil-c"

	// UnveiliC evaluates the entropy
	// on a distribution unveiled
	// with the improved Chao1 richness estimator.
	UnveiliC Estimator = "unveil-ic"

	// UnveilJ evaluates the entropy
	// on a distribution unveiled
	// with the jackknife richness estimator.
	// It is the recommended default.
	UnveilJ Estimator = "unveil-j"
)

// Best is the recommended estimator.
const Best = UnveilJ

// Parse returns the entropy estimator
// for a given keyword.
func Parse(s string) (Estimator, error) {
	switch e := Estimator(s); e {
	case Naive, ChaoShen, ZhangHuang, MarconZhang, UnveilC, UnveiliC, UnveilJ:
		return e, nil
	case "best", "":
		return Best, nil
	}
	return "", fmt.Errorf("unknown entropy estimator %q", s)
}

// Options collects the parameters
// of an entropy estimation.
// The zero value selects the defaults.
type Options struct {
	// Estimator of the entropy.
	Estimator Estimator

	// Coverage estimator
	// used by the coverage dependent estimators.
	Coverage coverage.Estimator

	// Probability estimator
	// used by the unveil family.
	Probability unveil.Estimator

	// Unveiling shape for the unseen mass.
	// Empty selects the probability estimator's own shape.
	Unveiling unveil.Unveiling

	// Jackknife order selection parameters.
	JackMax   int
	JackAlpha float64
}

func (o *Options) fill() {
	if o.Estimator == "" {
		o.Estimator = Best
	}
	if o.Coverage == "" {
		o.Coverage = coverage.ZhangHuang
	}
	if o.Probability == "" {
		o.Probability = unveil.Chao2015
	}
}

// The fallback table maps an estimator
// to its prerequisite on the input sample
// and the estimator substituted
// when the prerequisite fails.
type prerequisite struct {
	ok     func(c *community.Community) bool
	reason string
	next   Estimator
}

var needCounts = prerequisite{
	ok:     func(c *community.Community) bool { return !c.IsProb() },
	reason: "probability data, using naive",
	next:   Naive,
}

var fallbacks = map[Estimator][]prerequisite{
	ChaoShen:    {needCounts},
	ZhangHuang:  {needCounts},
	MarconZhang: {needCounts},
	UnveilC:     {needCounts},
	UnveiliC:    {needCounts},
	UnveilJ:     {needCounts},
}

// Resolve returns the estimator to be used
// on a given community,
// after walking the fallback table,
// and a notice recording any substitution.
func resolve(e Estimator, c *community.Community) (Estimator, string) {
	var notice string
	for {
		subst := false
		for _, p := range fallbacks[e] {
			if p.ok(c) {
				continue
			}
			notice = appendNotice(notice, fmt.Sprintf("%s: %s", e, p.reason))
			e = p.next
			subst = true
			break
		}
		if !subst {
			return e, notice
		}
	}
}

// Entropy estimates the Tsallis entropy of order q
// of a community.
// The result records the estimator actually used,
// the coverage it required,
// and any diagnostic notice;
// degenerate samples yield a NaN value
// instead of an error.
func Entropy(c *community.Community, q float64, o Options) (community.Result, error) {
	o.fill()
	if c == nil {
		return community.Result{}, fmt.Errorf("nil community: %w", community.ErrInvalidInput)
	}
	if q < 0 || math.IsNaN(q) {
		return community.Result{}, fmt.Errorf("community %q: invalid order %v: %w", c.Name(), q, community.ErrInvalidInput)
	}

	est, notice := resolve(o.Estimator, c)
	res := community.NewResult(c.Name(), q, string(est), math.NaN())
	res.Notice = notice

	if c.Richness() == 0 {
		res.Notice = appendNotice(res.Notice, "degenerate sample: no observed individuals")
		return res, nil
	}

	switch est {
	case Naive:
		res.Value = EntropyProbs(c.Probs(), q)
	case ChaoShen:
		cov, cNote := coverage.Estimate(c.Counts(), o.Coverage)
		res.Coverage = cov
		if cNote != "" {
			res.Notice = appendNotice(res.Notice, cNote)
		}
		if math.IsNaN(cov) || cov <= 0 {
			res.Notice = appendNotice(res.Notice, "degenerate sample: zero coverage")
			return res, nil
		}
		res.Value = chaoShen(c.Counts(), c.N(), q, cov)
	case ZhangHuang:
		res.Value = zhangGrabchak(c.Counts(), q)
	case MarconZhang:
		cov, cNote := coverage.Estimate(c.Counts(), o.Coverage)
		res.Coverage = cov
		if cNote != "" {
			res.Notice = appendNotice(res.Notice, cNote)
		}
		zg := zhangGrabchak(c.Counts(), q)
		if math.IsNaN(cov) || cov <= 0 {
			res.Value = zg
			break
		}
		cs := chaoShen(c.Counts(), c.N(), q, cov)
		res.Value = math.Max(cs, zg)
	case UnveilC, UnveiliC, UnveilJ:
		r, err := unveiled(c, q, est, o)
		if err != nil {
			return res, err
		}
		r.Notice = appendNotice(notice, r.Notice)
		return r, nil
	}

	flagNegative(&res, q)
	return res, nil
}

// Diversity estimates the Hill number of order q
// of a community:
// the deformed exponential of its entropy.
func Diversity(c *community.Community, q float64, o Options) (community.Result, error) {
	res, err := Entropy(c, q, o)
	if err != nil {
		return res, err
	}
	res.Value = Expq(res.Value, q)
	return res, nil
}

// Unveiled runs the probability reconstruction
// for the unveil family
// and evaluates the plug-in entropy
// on the completed distribution.
func unveiled(c *community.Community, q float64, est Estimator, o Options) (community.Result, error) {
	rich := unveil.Jackknife
	switch est {
	case UnveilC:
		rich = unveil.Chao1
	case UnveiliC:
		rich = unveil.IChao1
	}

	res := community.NewResult(c.Name(), q, string(est), math.NaN())

	cov, cNote := coverage.Estimate(c.Counts(), o.Coverage)
	res.Coverage = cov
	if cNote != "" {
		res.Notice = appendNotice(res.Notice, cNote)
	}
	if math.IsNaN(cov) || cov <= 0 {
		res.Notice = appendNotice(res.Notice, "degenerate sample: zero coverage")
		return res, nil
	}

	d, err := unveil.Probabilities(c.Counts(), unveil.Options{
		Estimator: o.Probability,
		Unveiling: o.Unveiling,
		Richness:  rich,
		Coverage:  o.Coverage,
		JackMax:   o.JackMax,
		JackAlpha: o.JackAlpha,
	})
	if err != nil {
		return res, err
	}
	if d.Notice != "" {
		res.Notice = appendNotice(res.Notice, d.Notice)
	}
	if est == UnveiliC && d.Richness == unveil.Chao1 {
		// the richness fallback changes the estimator
		res.Estimator = string(UnveilC)
	}

	res.Value = EntropyProbs(d.Probs, q)
	flagNegative(&res, q)
	return res, nil
}

// ChaoShen computes the Horvitz-Thompson corrected
// Tsallis entropy of order q
// on the coverage rescaled frequencies.
func chaoShen(counts []float64, n, q, cov float64) float64 {
	var h float64
	for _, v := range counts {
		if v <= 0 {
			continue
		}
		cp := cov * v / n
		den := 1 - math.Pow(1-cp, n)
		if den <= 0 {
			continue
		}
		if q == 1 {
			h += cp * math.Log(1/cp) / den
			continue
		}
		h += (cp - math.Pow(cp, q)) / den
	}
	if q == 1 {
		return h
	}
	return h / (q - 1)
}

// FlagNegative records the diagnostic
// for a mathematically negative entropy estimate,
// which can occur for q below one
// on small samples,
// and is reported rather than clipped.
func flagNegative(res *community.Result, q float64) {
	if q < 1 && !math.IsNaN(res.Value) && res.Value < 0 {
		res.Notice = appendNotice(res.Notice, "negative entropy estimate on a small sample")
	}
}

func appendNotice(notice, add string) string {
	if notice == "" {
		return add
	}
	return notice + "; " + add
}
