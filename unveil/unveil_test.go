// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package unveil_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/js-arias/diversity/community"
	"github.com/js-arias/diversity/unveil"
)

func sum(p []float64) float64 {
	var s float64
	for _, v := range p {
		s += v
	}
	return s
}

func TestChao2015Fallback(t *testing.T) {
	// no doubletons,
	// the two-parameter model must fall back
	counts := []float64{5, 3, 1, 1, 1}
	d, err := unveil.Probabilities(counts, unveil.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Estimator != unveil.Chao2013 {
		t.Errorf("estimator: got %q, want %q", d.Estimator, unveil.Chao2013)
	}
	if d.Unveiling != unveil.Uniform {
		t.Errorf("unveiling: got %q, want %q", d.Unveiling, unveil.Uniform)
	}
	if !strings.Contains(d.Notice, "chao-2013") {
		t.Errorf("notice: got %q, want a fallback record", d.Notice)
	}
	if s := sum(d.Probs); math.Abs(s-1) > 1e-9 {
		t.Errorf("probability sum: got %.12f, want 1", s)
	}
	if d.Observed != 5 {
		t.Errorf("observed species: got %d, want 5", d.Observed)
	}
	if len(d.Probs) <= d.Observed {
		t.Errorf("expecting an unseen tail, got %d probabilities", len(d.Probs))
	}
}

func TestChao2015Geometric(t *testing.T) {
	counts := []float64{10, 5, 2, 2, 1, 1, 1}
	d, err := unveil.Probabilities(counts, unveil.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Estimator != unveil.Chao2015 {
		t.Errorf("estimator: got %q, want %q", d.Estimator, unveil.Chao2015)
	}
	if s := sum(d.Probs); math.Abs(s-1) > 1e-9 {
		t.Errorf("probability sum: got %.12f, want 1", s)
	}

	// the tail must decrease
	tail := d.Probs[d.Observed:]
	for i := 1; i < len(tail); i++ {
		if tail[i] > tail[i-1]+1e-12 {
			t.Errorf("tail probability %d: got %.9f, above %.9f", i, tail[i], tail[i-1])
		}
	}
}

func TestNaive(t *testing.T) {
	counts := []float64{4, 3, 2, 1}
	d, err := unveil.Probabilities(counts, unveil.Options{Estimator: unveil.Naive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Probs) != 4 {
		t.Fatalf("probabilities: got %d, want 4", len(d.Probs))
	}
	for i, v := range counts {
		if want := v / 10; math.Abs(d.Probs[i]-want) > 1e-12 {
			t.Errorf("probability %d: got %.6f, want %.6f", i, d.Probs[i], want)
		}
	}
	if !math.IsNaN(d.Coverage) {
		t.Errorf("coverage: got %.6f, want NaN", d.Coverage)
	}
}

func TestRichness(t *testing.T) {
	tests := map[string]struct {
		counts []float64
		e      unveil.Richness
		want   float64
	}{
		"chao1 without doubletons": {
			counts: []float64{5, 3, 1, 1, 1},
			e:      unveil.Chao1,
			want:   8,
		},
		"chao1 with doubletons": {
			counts: []float64{4, 3, 2, 2, 1, 1},
			e:      unveil.Chao1,
			want:   7,
		},
		"jackknife without singletons": {
			counts: []float64{5, 4, 3, 2},
			e:      unveil.Jackknife,
			want:   4,
		},
	}

	for name, test := range tests {
		got, _, _ := unveil.RichnessEstimate(test.counts, test.e, 0, 0)
		if math.Abs(got-test.want) > 1e-9 {
			t.Errorf("%s: got %.6f, want %.6f", name, got, test.want)
		}
	}
}

func TestIChao1Fallback(t *testing.T) {
	// no quadrupletons
	counts := []float64{4, 3, 2, 2, 1, 1}
	_, used, notice := unveil.RichnessEstimate(counts, unveil.IChao1, 0, 0)
	if used != unveil.Chao1 {
		t.Errorf("richness estimator: got %q, want %q", used, unveil.Chao1)
	}
	if notice == "" {
		t.Errorf("expecting a fallback notice")
	}
}

func TestInvalid(t *testing.T) {
	if _, err := unveil.Probabilities([]float64{4, -1, 2}, unveil.Options{}); !errors.Is(err, community.ErrInvalidInput) {
		t.Errorf("negative count: got error %v, want %v", err, community.ErrInvalidInput)
	}
	if _, err := unveil.Probabilities([]float64{0, 0}, unveil.Options{}); !errors.Is(err, community.ErrInvalidInput) {
		t.Errorf("empty sample: got error %v, want %v", err, community.ErrInvalidInput)
	}
}
