// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tsallis_test

import (
	"math"
	"testing"

	"github.com/js-arias/diversity/tsallis"
)

var orders = []float64{0, 0.3, 0.5, 1, 2, 3, 5}

func TestRoundTrip(t *testing.T) {
	for _, q := range orders {
		for _, d := range []float64{1, 1.5, 3, 10} {
			got := tsallis.Expq(tsallis.Lnq(d, q), q)
			if math.Abs(got-d) > 1e-9 {
				t.Errorf("round trip q=%.2f d=%.2f: got %.12f, want %.12f", q, d, got, d)
			}
		}
	}
}

func TestExpqContinuity(t *testing.T) {
	for _, x := range []float64{0.1, 1, 3} {
		want := math.Exp(x)
		for _, q := range []float64{1 - 1e-9, 1 + 1e-9} {
			got := tsallis.Expq(x, q)
			if math.Abs(got-want)/want > 1e-6 {
				t.Errorf("expq(%g, %g): got %.12f, want %.12f", x, q, got, want)
			}
		}
	}
	for _, x := range []float64{0.5, 2, 10} {
		want := math.Log(x)
		for _, q := range []float64{1 - 1e-9, 1 + 1e-9} {
			got := tsallis.Lnq(x, q)
			if math.Abs(got-want) > 1e-6 {
				t.Errorf("lnq(%g, %g): got %.12f, want %.12f", x, q, got, want)
			}
		}
	}
}

func TestUniformExactness(t *testing.T) {
	for _, s := range []int{2, 4, 10} {
		p := make([]float64, s)
		for i := range p {
			p[i] = 1 / float64(s)
		}
		for _, q := range []float64{0, 1, 2} {
			got := tsallis.EntropyProbs(p, q)
			want := tsallis.Lnq(float64(s), q)
			if math.Abs(got-want) > 1e-12 {
				t.Errorf("uniform S=%d q=%.0f: got %.12f, want %.12f", s, q, got, want)
			}

			// the Hill number of a uniform distribution
			// is the number of species
			if d := tsallis.HillNumber(got, q); math.Abs(d-float64(s)) > 1e-9 {
				t.Errorf("uniform S=%d q=%.0f: got %.9f effective species", s, q, d)
			}
			if e := tsallis.EntropyFromDiversity(float64(s), q); math.Abs(e-got) > 1e-9 {
				t.Errorf("uniform S=%d q=%.0f: got entropy %.9f back, want %.9f", s, q, e, got)
			}
		}
	}
}

func TestShannonLimit(t *testing.T) {
	p := []float64{0.5, 0.3, 0.2}
	want := tsallis.EntropyProbs(p, 1)
	got := tsallis.EntropyProbs(p, 1+1e-7)
	if math.Abs(got-want) > 1e-5 {
		t.Errorf("entropy near q=1: got %.9f, want %.9f", got, want)
	}
}
