// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package simdiv_test

import (
	"errors"
	"math"
	"testing"

	"github.com/js-arias/diversity/community"
	"github.com/js-arias/diversity/simdiv"
	"github.com/js-arias/diversity/tsallis"
	"gonum.org/v1/gonum/mat"
)

func identity(n int) *mat.Dense {
	z := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		z.Set(i, i, 1)
	}
	return z
}

func TestIdentityMatrix(t *testing.T) {
	// with a naive estimator and no cross similarity
	// the entropy is the plain Tsallis entropy
	c, err := community.New("test", nil, []float64{4, 3, 2, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := simdiv.NewMatrix(identity(4), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, q := range []float64{0, 1, 2} {
		res, err := simdiv.Entropy(c, m, q, tsallis.Options{Estimator: tsallis.Naive})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := tsallis.EntropyProbs(c.Probs(), q)
		if math.Abs(res.Value-want) > 1e-12 {
			t.Errorf("identity matrix q=%.0f: got %.12f, want %.12f", q, res.Value, want)
		}
	}
}

func TestIndistinctSpecies(t *testing.T) {
	// with all species fully similar
	// there is a single effective species
	c, err := community.New("test", nil, []float64{4, 3, 2, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ones := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			ones.Set(i, j, 1)
		}
	}
	m, err := simdiv.NewMatrix(ones, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, q := range []float64{0, 1, 2} {
		res, err := simdiv.Entropy(c, m, q, tsallis.Options{Estimator: tsallis.Naive})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(res.Value) > 1e-12 {
			t.Errorf("indistinct species q=%.0f: got entropy %.12f, want 0", q, res.Value)
		}
		div, err := simdiv.Diversity(c, m, q, tsallis.Options{Estimator: tsallis.Naive})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(div.Value-1) > 1e-12 {
			t.Errorf("indistinct species q=%.0f: got diversity %.12f, want 1", q, div.Value)
		}
	}
}

func TestNameAlignment(t *testing.T) {
	z := mat.NewDense(3, 3, []float64{
		1, 0.5, 0.1,
		0.5, 1, 0.2,
		0.1, 0.2, 1,
	})
	m, err := simdiv.NewMatrix(z, []string{"Alpha", "Beta", "Gamma"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := community.New("test", []string{"Alpha", "Beta", "Gamma"}, []float64{5, 3, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := community.New("test", []string{"Gamma", "Alpha", "Beta"}, []float64{2, 5, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, q := range []float64{0.5, 1, 2} {
		ra, err := simdiv.Entropy(a, m, q, tsallis.Options{Estimator: tsallis.Naive})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rb, err := simdiv.Entropy(b, m, q, tsallis.Options{Estimator: tsallis.Naive})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(ra.Value-rb.Value) > 1e-12 {
			t.Errorf("q=%.1f: got %.12f and %.12f for reordered species", q, ra.Value, rb.Value)
		}
	}

	// the similarity lowers the effective diversity
	res, err := simdiv.Diversity(a, m, 1, tsallis.Options{Estimator: tsallis.Naive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plain := tsallis.Expq(tsallis.EntropyProbs(a.Probs(), 1), 1)
	if res.Value >= plain {
		t.Errorf("similarity weighted diversity: got %.6f, not below %.6f", res.Value, plain)
	}
}

func TestZhangHuangFallback(t *testing.T) {
	c, err := community.New("test", nil, []float64{4, 3, 2, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := simdiv.NewMatrix(identity(4), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := simdiv.Entropy(c, m, 1, tsallis.Options{Estimator: tsallis.ZhangHuang})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Estimator != string(tsallis.ChaoShen) {
		t.Errorf("estimator: got %q, want %q", res.Estimator, tsallis.ChaoShen)
	}
	if res.Notice == "" {
		t.Errorf("expecting a fallback notice")
	}
}

func TestInvalidMatrix(t *testing.T) {
	if _, err := simdiv.NewMatrix(mat.NewDense(2, 3, nil), nil); !errors.Is(err, community.ErrInvalidInput) {
		t.Errorf("non square matrix: got error %v, want %v", err, community.ErrInvalidInput)
	}

	bad := identity(2)
	bad.Set(0, 1, 1.5)
	if _, err := simdiv.NewMatrix(bad, nil); !errors.Is(err, community.ErrInvalidInput) {
		t.Errorf("out of range entry: got error %v, want %v", err, community.ErrInvalidInput)
	}

	noDiag := mat.NewDense(2, 2, []float64{1, 0, 0, 0.5})
	if _, err := simdiv.NewMatrix(noDiag, nil); !errors.Is(err, community.ErrInvalidInput) {
		t.Errorf("broken diagonal: got error %v, want %v", err, community.ErrInvalidInput)
	}

	c, err := community.New("test", nil, []float64{4, 3, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := simdiv.NewMatrix(identity(2), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := simdiv.Entropy(c, m, 1, tsallis.Options{Estimator: tsallis.Naive}); !errors.Is(err, community.ErrInvalidInput) {
		t.Errorf("size mismatch: got error %v, want %v", err, community.ErrInvalidInput)
	}
}
