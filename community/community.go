// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package community provides the species abundance data
// used for diversity estimation:
// communities,
// weighted metacommunities,
// and the result records produced by the estimators.
package community

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidInput is returned when an input violates
// the data model
// (negative abundances,
// mismatched species,
// empty samples where data is required).
var ErrInvalidInput = errors.New("invalid input")

// A Community is a sample of species abundances
// (or species probabilities)
// taken at a single site.
// A community is immutable after construction.
type Community struct {
	name    string
	species []string
	counts  []float64

	n    float64 // sample size
	rich int     // observed richness
}

// New creates a new community from a vector of abundances
// (or probabilities).
// Species names are optional;
// if given they must match the abundance vector
// in length.
func New(name string, species []string, counts []float64) (*Community, error) {
	name = canon(name)
	if name == "" {
		return nil, fmt.Errorf("community without name: %w", ErrInvalidInput)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("community %q: empty abundance vector: %w", name, ErrInvalidInput)
	}
	if species != nil && len(species) != len(counts) {
		return nil, fmt.Errorf("community %q: %d species for %d abundances: %w", name, len(species), len(counts), ErrInvalidInput)
	}

	c := &Community{
		name:   name,
		counts: slices.Clone(counts),
	}
	if species != nil {
		c.species = make([]string, len(species))
		for i, sp := range species {
			sp = canon(sp)
			if sp == "" {
				return nil, fmt.Errorf("community %q: species %d without name: %w", name, i, ErrInvalidInput)
			}
			c.species[i] = sp
		}
	}

	for i, v := range counts {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("community %q: abundance %d: invalid value %v: %w", name, i, v, ErrInvalidInput)
		}
		c.n += v
		if v > 0 {
			c.rich++
		}
	}
	return c, nil
}

// Name returns the name of the community.
func (c *Community) Name() string {
	return c.name
}

// Len returns the number of species slots
// in the community,
// including species with zero abundance.
func (c *Community) Len() int {
	return len(c.counts)
}

// N returns the sample size
// (the sum of all abundances).
func (c *Community) N() float64 {
	return c.n
}

// Richness returns the number of observed species
// (species with abundance greater than zero).
func (c *Community) Richness() int {
	return c.rich
}

// Counts returns a copy of the abundance vector.
func (c *Community) Counts() []float64 {
	return slices.Clone(c.counts)
}

// Count returns the abundance of the i-th species.
func (c *Community) Count(i int) float64 {
	return c.counts[i]
}

// Probs returns the empirical frequencies
// of the community
// (each abundance divided by the sample size).
func (c *Community) Probs() []float64 {
	p := make([]float64, len(c.counts))
	if c.n == 0 {
		return p
	}
	for i, v := range c.counts {
		p[i] = v / c.n
	}
	return p
}

// IsProb returns true if the community stores
// a probability vector
// (values in [0,1] that sum to one)
// instead of integer abundances.
func (c *Community) IsProb() bool {
	if math.Abs(c.n-1) > 1e-9 {
		return false
	}
	for _, v := range c.counts {
		if v > 0 && v != math.Trunc(v) {
			return true
		}
	}
	// a single species with probability 1
	// is indistinguishable from a single individual
	return len(c.counts) > 0 && c.rich > 1
}

// Species returns the species names of the community,
// or nil if the community is unnamed.
func (c *Community) Species() []string {
	return slices.Clone(c.species)
}

// FreqCount returns the frequency count of the community:
// the number of species observed exactly v times,
// for each abundance v present in the sample.
// Non-integer abundances are assigned
// to their rounded class.
func (c *Community) FreqCount() map[int]int {
	fc := make(map[int]int)
	for _, v := range c.counts {
		if v <= 0 {
			continue
		}
		cl := int(math.Round(v))
		if cl < 1 {
			cl = 1
		}
		fc[cl]++
	}
	return fc
}

// Singletons returns the number of species
// observed exactly once.
func (c *Community) Singletons() int {
	return c.FreqCount()[1]
}

// Doubletons returns the number of species
// observed exactly twice.
func (c *Community) Doubletons() int {
	return c.FreqCount()[2]
}

// A Metacommunity is an ordered collection of communities
// sharing a single species list,
// each with a site weight.
type Metacommunity struct {
	species []string
	sites   []*Community
	weights []float64
}

// NewMetacommunity creates an empty metacommunity
// for the given species list.
// The species list may be nil;
// then all communities must be unnamed
// and share the same vector length.
func NewMetacommunity(species []string) (*Metacommunity, error) {
	m := &Metacommunity{}
	if species == nil {
		return m, nil
	}
	m.species = make([]string, len(species))
	for i, sp := range species {
		sp = canon(sp)
		if sp == "" {
			return nil, fmt.Errorf("metacommunity: species %d without name: %w", i, ErrInvalidInput)
		}
		m.species[i] = sp
	}
	return m, nil
}

// Add adds a community with the given site weight.
// The community species must align with the metacommunity
// species list
// (by name if both are named,
// by position otherwise).
func (m *Metacommunity) Add(c *Community, weight float64) error {
	if weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("site %q: invalid weight %v: %w", c.Name(), weight, ErrInvalidInput)
	}
	ln := len(m.species)
	if ln == 0 && len(m.sites) > 0 {
		ln = m.sites[0].Len()
	}
	if ln > 0 && c.Len() != ln {
		return fmt.Errorf("site %q: %d species, want %d: %w", c.Name(), c.Len(), ln, ErrInvalidInput)
	}
	if m.species != nil && c.species != nil {
		for i, sp := range c.species {
			if sp != m.species[i] {
				return fmt.Errorf("site %q: species %d is %q, want %q: %w", c.Name(), i, sp, m.species[i], ErrInvalidInput)
			}
		}
	}
	m.sites = append(m.sites, c)
	m.weights = append(m.weights, weight)
	return nil
}

// Len returns the number of sites
// in the metacommunity.
func (m *Metacommunity) Len() int {
	return len(m.sites)
}

// Site returns the i-th community.
func (m *Metacommunity) Site(i int) *Community {
	return m.sites[i]
}

// Species returns the shared species list,
// or nil for positional metacommunities.
func (m *Metacommunity) Species() []string {
	return slices.Clone(m.species)
}

// Weights returns the site weights,
// normalized to sum to one.
func (m *Metacommunity) Weights() []float64 {
	w := make([]float64, len(m.weights))
	var sum float64
	for _, v := range m.weights {
		sum += v
	}
	for i, v := range m.weights {
		w[i] = v / sum
	}
	return w
}

// Gamma returns the gamma community:
// the weight-normalized pooled distribution,
// as a probability vector.
func (m *Metacommunity) Gamma() (*Community, error) {
	if len(m.sites) == 0 {
		return nil, fmt.Errorf("empty metacommunity: %w", ErrInvalidInput)
	}
	w := m.Weights()
	p := make([]float64, m.sites[0].Len())
	for j, c := range m.sites {
		cp := c.Probs()
		for i, v := range cp {
			p[i] += w[j] * v
		}
	}
	return New("gamma", m.species, p)
}

// Pooled returns the pooled sample of the metacommunity:
// the per-species sums of the site abundances.
// The pooled sample keeps the count structure
// required by the bias-corrected estimators,
// at the cost of ignoring the site weights.
func (m *Metacommunity) Pooled() (*Community, error) {
	if len(m.sites) == 0 {
		return nil, fmt.Errorf("empty metacommunity: %w", ErrInvalidInput)
	}
	sum := make([]float64, m.sites[0].Len())
	for _, c := range m.sites {
		for i, v := range c.counts {
			sum[i] += v
		}
	}
	return New("gamma", m.species, sum)
}

// Canon returns a name in its canonical form.
func canon(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	r, n := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[n:]
}
