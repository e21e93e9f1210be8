// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package phylodiv generalizes the Tsallis entropy
// to communities structured by a phylogenetic tree:
// the tree is sliced at its node ages,
// the entropy of the pooled clade abundances
// is estimated per slice,
// and the slices are combined
// as a branch length weighted mean,
// yielding a Hill number consistent
// phylogenetic diversity.
package phylodiv

import (
	"fmt"
	"math"
	"slices"

	"github.com/js-arias/diversity/community"
	"github.com/js-arias/diversity/tsallis"
	"github.com/js-arias/timetree"
)

// A Slice is a time interval of a phylogenetic tree
// in which no branching happens:
// every terminal maps to the single branch
// that contains its lineage
// during the interval.
type Slice struct {
	// Age bounds of the slice,
	// in years,
	// youngest first.
	From, To int64

	// Branch is the id of the tree branch
	// containing each terminal lineage,
	// keyed by terminal name.
	Branch map[string]int
}

// Duration returns the time span of the slice
// in years.
func (s Slice) Duration() int64 {
	return s.To - s.From
}

// Slices decomposes a tree
// into the intervals defined by its node ages,
// from the present to the root.
func Slices(t *timetree.Tree) []Slice {
	ageSet := make(map[int64]bool)
	ageSet[0] = true
	for _, id := range t.Nodes() {
		ageSet[t.Age(id)] = true
	}
	ages := make([]int64, 0, len(ageSet))
	for a := range ageSet {
		ages = append(ages, a)
	}
	slices.Sort(ages)

	terms := t.Terms()
	var sl []Slice
	for i := 1; i < len(ages); i++ {
		s := Slice{
			From:   ages[i-1],
			To:     ages[i],
			Branch: make(map[string]int, len(terms)),
		}
		for _, term := range terms {
			id, ok := t.TaxNode(term)
			if !ok {
				continue
			}
			s.Branch[term] = branchAt(t, id, s.From)
		}
		sl = append(sl, s)
	}
	return sl
}

// BranchAt returns the id of the branch
// that contains the lineage of a terminal
// at the given age:
// the most inclusive ancestor
// not older than the age.
func branchAt(t *timetree.Tree, id int, age int64) int {
	for !t.IsRoot(id) {
		p := t.Parent(id)
		if t.Age(p) > age {
			break
		}
		id = p
	}
	return id
}

// Entropy estimates the phylogenetic Tsallis entropy
// of order q of a community
// over a time calibrated tree.
// Community species must be named
// and be terminals of the tree;
// an unmatched species is an error.
// There is no rarefaction or extrapolation
// for phylogenetic entropy;
// this is a property of the estimation theory.
func Entropy(t *timetree.Tree, c *community.Community, q float64, o tsallis.Options) (community.Result, error) {
	if t == nil || c == nil {
		return community.Result{}, fmt.Errorf("nil tree or community: %w", community.ErrInvalidInput)
	}
	sp := c.Species()
	if sp == nil {
		return community.Result{}, fmt.Errorf("community %q: species names are required on a tree: %w", c.Name(), community.ErrInvalidInput)
	}
	for _, s := range sp {
		if _, ok := t.TaxNode(s); !ok {
			return community.Result{}, fmt.Errorf("community %q: species %q is not a terminal of tree %q: %w", c.Name(), s, t.Name(), community.ErrInvalidInput)
		}
	}

	root := t.Age(t.Root())
	if root == 0 {
		return community.Result{}, fmt.Errorf("tree %q: zero height: %w", t.Name(), community.ErrInvalidInput)
	}

	res := community.NewResult(c.Name(), q, string(o.Estimator), math.NaN())
	counts := c.Counts()

	var h float64
	var used string
	for _, s := range Slices(t) {
		// pool abundances per branch
		pool := make(map[int]float64)
		for i, nm := range sp {
			if counts[i] <= 0 {
				continue
			}
			pool[s.Branch[nm]] += counts[i]
		}
		pv := make([]float64, 0, len(pool))
		for _, v := range pool {
			pv = append(pv, v)
		}
		sc, err := community.New(c.Name(), nil, pv)
		if err != nil {
			return res, err
		}
		sr, err := tsallis.Entropy(sc, q, o)
		if err != nil {
			return res, err
		}
		if math.IsNaN(sr.Value) {
			res.Estimator = sr.Estimator
			res.Notice = sr.Notice
			return res, nil
		}
		w := float64(s.Duration()) / float64(root)
		h += w * sr.Value
		used = sr.Estimator
		if sr.Notice != "" && res.Notice == "" {
			res.Notice = sr.Notice
		}
	}

	res.Estimator = used
	res.Value = h
	return res, nil
}

// Diversity estimates the phylogenetic Hill number
// of order q of a community
// over a time calibrated tree:
// the deformed exponential
// of the phylogenetic entropy.
func Diversity(t *timetree.Tree, c *community.Community, q float64, o tsallis.Options) (community.Result, error) {
	res, err := Entropy(t, c, q, o)
	if err != nil {
		return res, err
	}
	res.Value = tsallis.Expq(res.Value, q)
	return res, nil
}
