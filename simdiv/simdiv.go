// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package simdiv generalizes the Tsallis entropy
// to communities with a species similarity matrix:
// each species probability is replaced
// by its ordinariness,
// the expected similarity weighted mass
// near the species.
package simdiv

import (
	"fmt"
	"math"

	"github.com/js-arias/diversity/community"
	"github.com/js-arias/diversity/coverage"
	"github.com/js-arias/diversity/tsallis"
	"github.com/js-arias/diversity/unveil"
	"gonum.org/v1/gonum/mat"
)

// A Matrix is a species similarity matrix:
// square,
// with entries in [0,1]
// and a unit diagonal.
type Matrix struct {
	z       *mat.Dense
	species []string
}

// NewMatrix creates a similarity matrix
// from a dense gonum matrix.
// Species names are optional;
// if given they must match the matrix
// in length.
func NewMatrix(z *mat.Dense, species []string) (*Matrix, error) {
	r, c := z.Dims()
	if r != c {
		return nil, fmt.Errorf("similarity matrix: %d x %d is not square: %w", r, c, community.ErrInvalidInput)
	}
	if species != nil && len(species) != r {
		return nil, fmt.Errorf("similarity matrix: %d species for %d rows: %w", len(species), r, community.ErrInvalidInput)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := z.At(i, j)
			if math.IsNaN(v) || v < 0 || v > 1 {
				return nil, fmt.Errorf("similarity matrix: entry (%d,%d) is %v: %w", i, j, v, community.ErrInvalidInput)
			}
		}
		if z.At(i, i) != 1 {
			return nil, fmt.Errorf("similarity matrix: diagonal entry %d is %v: %w", i, z.At(i, i), community.ErrInvalidInput)
		}
	}
	m := &Matrix{z: z}
	if species != nil {
		m.species = make([]string, len(species))
		copy(m.species, species)
	}
	return m, nil
}

// Len returns the number of species
// covered by the matrix.
func (m *Matrix) Len() int {
	r, _ := m.z.Dims()
	return r
}

// Align returns the row indices of the matrix
// corresponding, in order,
// to the species of the community:
// by name when both carry species names,
// by position otherwise.
func (m *Matrix) align(c *community.Community) ([]int, error) {
	if c.Len() != m.Len() && (m.species == nil || c.Species() == nil) {
		return nil, fmt.Errorf("community %q: %d species for a %d species matrix: %w", c.Name(), c.Len(), m.Len(), community.ErrInvalidInput)
	}
	sp := c.Species()
	if sp == nil || m.species == nil {
		idx := make([]int, c.Len())
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	}
	byName := make(map[string]int, len(m.species))
	for i, s := range m.species {
		byName[s] = i
	}
	idx := make([]int, len(sp))
	for i, s := range sp {
		j, ok := byName[s]
		if !ok {
			return nil, fmt.Errorf("community %q: species %q not in similarity matrix: %w", c.Name(), s, community.ErrInvalidInput)
		}
		idx[i] = j
	}
	return idx, nil
}

// Ordinariness returns the similarity weighted mass
// near each species:
// the product of the similarity matrix
// and the probability vector.
func (m *Matrix) ordinariness(idx []int, p []float64) []float64 {
	zp := make([]float64, len(p))
	for i := range p {
		var s float64
		for j := range p {
			if p[j] == 0 {
				continue
			}
			s += m.z.At(idx[i], idx[j]) * p[j]
		}
		zp[i] = s
	}
	return zp
}

// Entropy estimates the similarity weighted
// Tsallis entropy of order q
// of a community.
// The supported estimators are Naive, ChaoShen,
// MarconZhang and the unveil family;
// a ZhangHuang request falls back to ChaoShen.
// There is no rarefaction or extrapolation
// for similarity weighted entropy;
// this is a property of the estimation theory.
func Entropy(c *community.Community, m *Matrix, q float64, o tsallis.Options) (community.Result, error) {
	if o.Estimator == "" {
		o.Estimator = tsallis.Best
	}
	if o.Coverage == "" {
		o.Coverage = coverage.ZhangHuang
	}
	if c == nil || m == nil {
		return community.Result{}, fmt.Errorf("nil community or matrix: %w", community.ErrInvalidInput)
	}
	if q < 0 || math.IsNaN(q) {
		return community.Result{}, fmt.Errorf("community %q: invalid order %v: %w", c.Name(), q, community.ErrInvalidInput)
	}
	idx, err := m.align(c)
	if err != nil {
		return community.Result{}, err
	}

	est := o.Estimator
	var notice string
	if est == tsallis.ZhangHuang {
		est = tsallis.ChaoShen
		notice = "zhang-huang: not defined for similarity weighted entropy, using chao-shen"
	}
	if c.IsProb() && est != tsallis.Naive {
		notice = appendNotice(notice, fmt.Sprintf("%s: probability data, using naive", est))
		est = tsallis.Naive
	}

	res := community.NewResult(c.Name(), q, string(est), math.NaN())
	res.Notice = notice
	if c.Richness() == 0 {
		res.Notice = appendNotice(res.Notice, "degenerate sample: no observed individuals")
		return res, nil
	}

	switch est {
	case tsallis.Naive:
		res.Value = naive(m, idx, c.Probs(), q)
	case tsallis.ChaoShen:
		cov, cNote := coverage.Estimate(c.Counts(), o.Coverage)
		res.Coverage = cov
		if cNote != "" {
			res.Notice = appendNotice(res.Notice, cNote)
		}
		if math.IsNaN(cov) || cov <= 0 {
			res.Notice = appendNotice(res.Notice, "degenerate sample: zero coverage")
			return res, nil
		}
		res.Value = chaoShen(c, m, idx, q, cov)
	case tsallis.MarconZhang:
		r1, err := Entropy(c, m, q, withEstimator(o, tsallis.ChaoShen))
		if err != nil {
			return res, err
		}
		r2, err := Entropy(c, m, q, withEstimator(o, tsallis.UnveilJ))
		if err != nil {
			return res, err
		}
		res.Coverage = r1.Coverage
		res.Value = math.Max(r1.Value, r2.Value)
		if math.IsNaN(r1.Value) {
			res.Value = r2.Value
		}
		if math.IsNaN(r2.Value) {
			res.Value = r1.Value
		}
	case tsallis.UnveilC, tsallis.UnveiliC, tsallis.UnveilJ:
		r, err := unveiledEntropy(c, m, idx, q, est, o)
		if err != nil {
			return res, err
		}
		r.Notice = appendNotice(notice, r.Notice)
		return r, nil
	}

	if q < 1 && !math.IsNaN(res.Value) && res.Value < 0 {
		res.Notice = appendNotice(res.Notice, "negative entropy estimate on a small sample")
	}
	return res, nil
}

// Diversity estimates the similarity weighted
// Hill number of order q of a community.
func Diversity(c *community.Community, m *Matrix, q float64, o tsallis.Options) (community.Result, error) {
	res, err := Entropy(c, m, q, o)
	if err != nil {
		return res, err
	}
	res.Value = tsallis.Expq(res.Value, q)
	return res, nil
}

func withEstimator(o tsallis.Options, e tsallis.Estimator) tsallis.Options {
	o.Estimator = e
	return o
}

func naive(m *Matrix, idx []int, p []float64, q float64) float64 {
	zp := m.ordinariness(idx, p)
	var h float64
	for i, pi := range p {
		if pi <= 0 || zp[i] <= 0 {
			continue
		}
		if q == 1 {
			h -= pi * math.Log(zp[i])
			continue
		}
		h += pi * math.Pow(zp[i], q-1)
	}
	if q == 1 {
		return h
	}
	return (1 - h) / (q - 1)
}

// ChaoShen applies the Horvitz-Thompson correction
// to the coverage rescaled frequencies
// and their ordinariness.
func chaoShen(c *community.Community, m *Matrix, idx []int, q, cov float64) float64 {
	n := c.N()
	p := c.Probs()
	cp := make([]float64, len(p))
	for i, v := range p {
		cp[i] = cov * v
	}
	zp := m.ordinariness(idx, cp)

	var h float64
	for i, ci := range cp {
		if ci <= 0 || zp[i] <= 0 {
			continue
		}
		den := 1 - math.Pow(1-ci, n)
		if den <= 0 {
			continue
		}
		if q == 1 {
			h += ci * math.Log(1/zp[i]) / den
			continue
		}
		h += ci * (math.Pow(zp[i], q-1) - 1) / (1 - q) / den
	}
	return h
}

// UnveiledEntropy evaluates the plug-in
// similarity weighted entropy
// on a completed distribution,
// in which each unseen species is fully distinct:
// similar only to itself.
func unveiledEntropy(c *community.Community, m *Matrix, idx []int, q float64, est tsallis.Estimator, o tsallis.Options) (community.Result, error) {
	rich := unveil.Jackknife
	switch est {
	case tsallis.UnveilC:
		rich = unveil.Chao1
	case tsallis.UnveiliC:
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
	if est == tsallis.UnveiliC && d.Richness == unveil.Chao1 {
		res.Estimator = string(tsallis.UnveilC)
	}

	// observed species keep their matrix rows;
	// the probabilities of the unveil distribution
	// follow the positive abundances in order
	var obsIdx []int
	for i, v := range c.Counts() {
		if v > 0 {
			obsIdx = append(obsIdx, idx[i])
		}
	}

	obs := d.Probs[:d.Observed]
	zpObs := make([]float64, len(obs))
	for i := range obs {
		var s float64
		for j := range obs {
			s += m.z.At(obsIdx[i], obsIdx[j]) * obs[j]
		}
		zpObs[i] = s
	}

	var h float64
	add := func(pi, zi float64) {
		if pi <= 0 || zi <= 0 {
			return
		}
		if q == 1 {
			h -= pi * math.Log(zi)
			return
		}
		h += pi * math.Pow(zi, q-1)
	}
	for i, pi := range obs {
		add(pi, zpObs[i])
	}
	for _, pi := range d.Probs[d.Observed:] {
		add(pi, pi)
	}
	if q != 1 {
		h = (1 - h) / (q - 1)
	}

	res.Value = h
	if q < 1 && !math.IsNaN(res.Value) && res.Value < 0 {
		res.Notice = appendNotice(res.Notice, "negative entropy estimate on a small sample")
	}
	return res, nil
}

func appendNotice(notice, add string) string {
	if notice == "" {
		return add
	}
	return notice + "; " + add
}
