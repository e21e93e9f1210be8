// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package community_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/js-arias/diversity/community"
)

func TestCommunity(t *testing.T) {
	c, err := community.New("creek", []string{"Tapirus terrestris", "Panthera onca", "Mazama americana"}, []float64{10, 2, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Name() != "Creek" {
		t.Errorf("name: got %q, want %q", c.Name(), "Creek")
	}
	if c.N() != 12 {
		t.Errorf("sample size: got %.6f, want 12", c.N())
	}
	if c.Richness() != 2 {
		t.Errorf("richness: got %d, want 2", c.Richness())
	}
	if c.Len() != 3 {
		t.Errorf("length: got %d, want 3", c.Len())
	}

	p := c.Probs()
	want := []float64{10.0 / 12, 2.0 / 12, 0}
	for i, v := range p {
		if math.Abs(v-want[i]) > 1e-10 {
			t.Errorf("probs %d: got %.6f, want %.6f", i, v, want[i])
		}
	}
	if c.IsProb() {
		t.Errorf("abundance community reported as probabilities")
	}
}

func TestCommunityInvalid(t *testing.T) {
	tests := map[string]struct {
		species []string
		counts  []float64
	}{
		"negative abundance": {counts: []float64{1, -1, 3}},
		"NaN abundance":      {counts: []float64{1, math.NaN()}},
		"empty vector":       {counts: []float64{}},
		"species mismatch":   {species: []string{"A"}, counts: []float64{1, 2}},
	}
	for name, p := range tests {
		if _, err := community.New("site", p.species, p.counts); !errors.Is(err, community.ErrInvalidInput) {
			t.Errorf("%s: got error %v, want %v", name, err, community.ErrInvalidInput)
		}
	}
}

func TestProbCommunity(t *testing.T) {
	c, err := community.New("uniform", nil, []float64{0.25, 0.25, 0.25, 0.25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsProb() {
		t.Errorf("probability community not detected")
	}
}

func TestFreqCount(t *testing.T) {
	c, err := community.New("site", nil, []float64{1, 1, 1, 2, 2, 3, 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := c.Singletons(); s != 3 {
		t.Errorf("singletons: got %d, want 3", s)
	}
	if d := c.Doubletons(); d != 2 {
		t.Errorf("doubletons: got %d, want 2", d)
	}
	fc := c.FreqCount()
	if fc[3] != 1 || fc[10] != 1 {
		t.Errorf("frequency count: got %v", fc)
	}
}

func TestMetacommunity(t *testing.T) {
	m, err := community.NewMetacommunity(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	abund := [][]float64{
		{10, 0, 25, 10},
		{20, 15, 10, 35},
		{0, 10, 5, 2},
	}
	weights := []float64{1, 2, 1}
	for i, v := range abund {
		c, err := community.New(strings.Repeat("x", i+1), nil, v)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := m.Add(c, weights[i]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	w := m.Weights()
	wantW := []float64{0.25, 0.5, 0.25}
	for i, v := range w {
		if math.Abs(v-wantW[i]) > 1e-10 {
			t.Errorf("weight %d: got %.6f, want %.6f", i, v, wantW[i])
		}
	}

	g, err := m.Gamma()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(g.N()-1) > 1e-10 {
		t.Errorf("gamma: probabilities sum to %.6f, want 1", g.N())
	}
	// first species: 0.25*10/45 + 0.5*20/80 + 0
	want := 0.25*10.0/45 + 0.5*20.0/80
	if got := g.Count(0); math.Abs(got-want) > 1e-10 {
		t.Errorf("gamma species 0: got %.6f, want %.6f", got, want)
	}

	p, err := m.Pooled()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.N() != 45+80+17 {
		t.Errorf("pooled: sample size %.0f, want %d", p.N(), 45+80+17)
	}
	if p.Count(1) != 25 {
		t.Errorf("pooled species 1: got %.0f, want 25", p.Count(1))
	}
}

func TestMetacommunityMismatch(t *testing.T) {
	m, err := community.NewMetacommunity([]string{"Tapirus terrestris", "Panthera onca"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err := community.New("site", []string{"Panthera onca", "Tapirus terrestris"}, []float64{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Add(c, 1); !errors.Is(err, community.ErrInvalidInput) {
		t.Errorf("unmatched species: got error %v, want %v", err, community.ErrInvalidInput)
	}
}

var testTSV = `# example data
site	species	abundance	weight
creek	Tapirus terrestris	10	2
creek	Panthera onca	2	2
ridge	Tapirus terrestris	1	1
ridge	Mazama americana	8	1
`

func TestReadTSV(t *testing.T) {
	m, err := community.ReadTSV(strings.NewReader(testTSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("sites: got %d, want 2", m.Len())
	}
	sp := m.Species()
	wantSp := []string{"Mazama americana", "Panthera onca", "Tapirus terrestris"}
	if len(sp) != len(wantSp) {
		t.Fatalf("species: got %v, want %v", sp, wantSp)
	}
	for i, s := range sp {
		if s != wantSp[i] {
			t.Errorf("species %d: got %q, want %q", i, s, wantSp[i])
		}
	}

	creek := m.Site(0)
	if creek.Name() != "Creek" {
		t.Errorf("site 0: got %q, want %q", creek.Name(), "Creek")
	}
	if creek.N() != 12 {
		t.Errorf("site 0: sample size %.0f, want 12", creek.N())
	}

	w := m.Weights()
	if math.Abs(w[0]-2.0/3) > 1e-10 {
		t.Errorf("site 0: weight %.6f, want %.6f", w[0], 2.0/3)
	}

	var buf bytes.Buffer
	if err := m.TSV(&buf); err != nil {
		t.Fatalf("unable to write data: %v", err)
	}
	r, err := community.ReadTSV(&buf)
	if err != nil {
		t.Logf("output data:\n%s\n", buf.String())
		t.Fatalf("unable to re-read data: %v", err)
	}
	if r.Len() != m.Len() {
		t.Errorf("re-read: sites %d, want %d", r.Len(), m.Len())
	}
	for i := 0; i < m.Len(); i++ {
		if r.Site(i).N() != m.Site(i).N() {
			t.Errorf("re-read site %d: sample size %.0f, want %.0f", i, r.Site(i).N(), m.Site(i).N())
		}
	}
}
