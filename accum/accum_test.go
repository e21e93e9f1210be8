// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package accum_test

import (
	"errors"
	"math"
	"testing"

	"github.com/js-arias/diversity/accum"
	"github.com/js-arias/diversity/community"
	"github.com/js-arias/diversity/tsallis"
)

func newAccum(t testing.TB, counts []float64) *accum.Accumulator {
	t.Helper()
	c, err := community.New("test", nil, counts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, err := accum.New(c, accum.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return a
}

func TestObservedSize(t *testing.T) {
	counts := []float64{4, 3, 2, 2, 1, 1}
	a := newAccum(t, counts)
	c, _ := community.New("test", nil, counts)

	// at the observed size
	// the interpolation is the plug-in estimate
	for _, q := range []float64{0, 0.5, 1, 1.5, 2} {
		res := a.Entropy(q, a.N())
		want := tsallis.EntropyProbs(c.Probs(), q)
		if math.Abs(res.Value-want) > 1e-9 {
			t.Errorf("entropy at n, q=%.1f: got %.9f, want %.9f", q, res.Value, want)
		}
		if res.Estimator != "interpolation" {
			t.Errorf("estimator: got %q, want %q", res.Estimator, "interpolation")
		}
	}
}

func TestSingleIndividual(t *testing.T) {
	a := newAccum(t, []float64{4, 3, 2, 2, 1, 1})
	for _, q := range []float64{0, 1, 2} {
		res := a.Entropy(q, 1)
		if math.Abs(res.Value) > 1e-12 {
			t.Errorf("entropy at level 1, q=%.0f: got %.9f, want 0", q, res.Value)
		}
		div := a.Diversity(q, 1)
		if math.Abs(div.Value-1) > 1e-12 {
			t.Errorf("diversity at level 1, q=%.0f: got %.9f, want 1", q, div.Value)
		}
	}
}

func TestRichnessAsymptote(t *testing.T) {
	// f1 = 2 and f2 = 2,
	// so the unseen richness term is one species
	a := newAccum(t, []float64{4, 3, 2, 2, 1, 1})
	res := a.Entropy(0, 100*a.N())
	if want := 6.0; math.Abs(res.Value-want) > 1e-6 {
		t.Errorf("extrapolated richness: got %.6f, want %.6f", res.Value, want)
	}
	if res.Estimator != "extrapolation" {
		t.Errorf("estimator: got %q, want %q", res.Estimator, "extrapolation")
	}
}

func TestCoverageMonotone(t *testing.T) {
	a := newAccum(t, []float64{25, 10, 5, 3, 2, 1, 1, 1})
	prev := 0.0
	for lv := 1; lv <= 3*a.N(); lv++ {
		cov := a.CoverageAt(lv)
		if cov < prev-1e-9 {
			t.Errorf("coverage at level %d: got %.9f, below %.9f", lv, cov, prev)
		}
		if cov < 0 || cov > 1 {
			t.Errorf("coverage at level %d: got %.9f, out of range", lv, cov)
		}
		prev = cov
	}
}

func TestLevelAtCoverage(t *testing.T) {
	a := newAccum(t, []float64{25, 10, 5, 3, 2, 1, 1, 1})
	target := 0.97
	lv, err := a.LevelAtCoverage(target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cov := a.CoverageAt(lv); cov < target {
		t.Errorf("coverage at level %d: got %.6f, below target %.6f", lv, cov, target)
	}
	if lv > 1 {
		if cov := a.CoverageAt(lv - 1); cov >= target {
			t.Errorf("coverage at level %d: got %.6f, already at target %.6f", lv-1, cov, target)
		}
	}

	if _, err := a.LevelAtCoverage(1.5); !errors.Is(err, community.ErrInvalidInput) {
		t.Errorf("target above one: got error %v, want %v", err, community.ErrInvalidInput)
	}
}

func TestCurveReproducible(t *testing.T) {
	counts := []float64{25, 10, 5, 3, 2, 1, 1, 1}
	levels := []int{10, 24, 48, 96}

	a := newAccum(t, counts)
	one := a.Curve(1, levels, 50, 7, 1)
	b := newAccum(t, counts)
	four := b.Curve(1, levels, 50, 7, 4)

	if len(one) != len(levels) || len(four) != len(levels) {
		t.Fatalf("curve length: got %d and %d, want %d", len(one), len(four), len(levels))
	}
	for i := range levels {
		if math.Abs(one[i].Value-four[i].Value) > 1e-12 {
			t.Errorf("level %d: got %.9f and %.9f with different workers", levels[i], one[i].Value, four[i].Value)
		}
		sd1, sd4 := one[i].StdErr, four[i].StdErr
		if math.IsNaN(sd1) != math.IsNaN(sd4) {
			t.Errorf("level %d: standard error %v and %v with different workers", levels[i], sd1, sd4)
			continue
		}
		if !math.IsNaN(sd1) && math.Abs(sd1-sd4) > 1e-12 {
			t.Errorf("level %d: standard error %.9f and %.9f with different workers", levels[i], sd1, sd4)
		}
	}

	// extrapolated levels carry a bootstrap error
	for i, lv := range levels {
		if lv <= a.N() {
			continue
		}
		if math.IsNaN(one[i].StdErr) {
			t.Errorf("level %d: expecting a bootstrap standard error", lv)
		}
	}
}

func TestProbabilityData(t *testing.T) {
	c, err := community.New("test", nil, []float64{0.5, 0.3, 0.2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := accum.New(c, accum.Options{}); !errors.Is(err, community.ErrInvalidInput) {
		t.Errorf("probability data: got error %v, want %v", err, community.ErrInvalidInput)
	}
}
