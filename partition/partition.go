// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package partition decomposes the gamma diversity
// of a weighted metacommunity
// into its alpha and beta components.
// The decomposition is additive in entropy space
// at order one,
// and multiplicative in diversity space
// at any order;
// the two framings are connected
// only through the deformed exponential.
package partition

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/js-arias/diversity/community"
	"github.com/js-arias/diversity/tsallis"
	"gonum.org/v1/gonum/stat"
)

// A Decomposition is the result
// of an alpha-beta-gamma partition
// of a metacommunity
// at a single order q.
type Decomposition struct {
	// Entropy records:
	// gamma on the pooled community,
	// alpha as the site weighted mean,
	// beta derived as gamma minus alpha.
	GammaEntropy community.Result
	AlphaEntropy community.Result
	BetaEntropy  community.Result

	// Diversity records,
	// through the Hill transform:
	// gamma equals alpha times beta.
	GammaDiversity community.Result
	AlphaDiversity community.Result
	BetaDiversity  community.Result

	// Sites records the per community entropy,
	// including failed rows.
	Sites []community.Result
}

// Decompose partitions the diversity of a metacommunity
// at order q.
// Per community entropies are estimated
// in parallel;
// a degenerate community yields a NaN record
// and is left out of the alpha mean
// without aborting the partition.
// Use cpu to define the number of workers;
// the default (zero) uses all available CPU.
func Decompose(m *community.Metacommunity, q float64, o tsallis.Options, cpu int) (*Decomposition, error) {
	if m == nil || m.Len() == 0 {
		return nil, fmt.Errorf("empty metacommunity: %w", community.ErrInvalidInput)
	}
	if cpu == 0 {
		cpu = runtime.NumCPU()
	}

	d := &Decomposition{
		Sites: make([]community.Result, m.Len()),
	}
	errs := make([]error, m.Len())

	ch := make(chan int, cpu*2)
	var wg sync.WaitGroup
	for range cpu {
		go func() {
			for i := range ch {
				d.Sites[i], errs[i] = tsallis.Entropy(m.Site(i), q, o)
				wg.Done()
			}
		}()
	}
	for i := range d.Sites {
		wg.Add(1)
		ch <- i
	}
	wg.Wait()
	close(ch)

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// alpha: weighted mean of the valid site entropies
	w := m.Weights()
	var hs, ws []float64
	var skipped int
	for i, r := range d.Sites {
		if math.IsNaN(r.Value) {
			skipped++
			continue
		}
		hs = append(hs, r.Value)
		ws = append(ws, w[i])
	}
	alpha := community.NewResult("alpha", q, d.Sites[0].Estimator, math.NaN())
	if len(hs) > 0 {
		alpha.Value = stat.Mean(hs, ws)
	}
	if skipped > 0 {
		alpha.Notice = fmt.Sprintf("%d degenerate communities left out of the alpha mean", skipped)
	}
	d.AlphaEntropy = alpha

	// gamma: the weight normalized pooled community
	gc, err := gammaCommunity(m, o)
	if err != nil {
		return nil, err
	}
	gamma, err := tsallis.Entropy(gc, q, o)
	if err != nil {
		return nil, err
	}
	d.GammaEntropy = gamma

	// beta: derived from gamma and alpha
	beta := community.NewResult("beta", q, "derived", gamma.Value-alpha.Value)
	d.BetaEntropy = beta

	d.GammaDiversity = gamma
	d.GammaDiversity.Value = tsallis.Expq(gamma.Value, q)
	d.AlphaDiversity = alpha
	d.AlphaDiversity.Value = tsallis.Expq(alpha.Value, q)
	d.BetaDiversity = beta
	d.BetaDiversity.Value = tsallis.Expq(beta.Value/(1+(1-q)*alpha.Value), q)

	return d, nil
}

// GammaCommunity returns the community
// used for the gamma estimation:
// the weighted probability pool for the naive estimator,
// and the pooled abundance sample
// for the bias corrected estimators,
// which need the count structure.
func gammaCommunity(m *community.Metacommunity, o tsallis.Options) (*community.Community, error) {
	if o.Estimator == tsallis.Naive {
		return m.Gamma()
	}
	return m.Pooled()
}

// Profile decomposes the diversity of a metacommunity
// across a set of orders.
func Profile(m *community.Metacommunity, qs []float64, o tsallis.Options, cpu int) ([]*Decomposition, error) {
	prof := make([]*Decomposition, 0, len(qs))
	for _, q := range qs {
		d, err := Decompose(m, q, o, cpu)
		if err != nil {
			return nil, err
		}
		prof = append(prof, d)
	}
	return prof, nil
}
