// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package accum

import (
	"math"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"

	"github.com/js-arias/diversity/community"
	"github.com/montanaflynn/stats"
)

// Curve returns the diversity accumulation curve
// of the community:
// one result per requested level,
// in the given order.
// For extrapolated levels,
// reps bootstrap repetitions from the asymptotic distribution
// give the standard error of the estimate;
// each repetition owns a generator
// seeded from the seed and the repetition number,
// so results are reproducible
// regardless of worker count.
// Use cpu to define the number of workers;
// the default (zero) uses all available CPU.
func (a *Accumulator) Curve(q float64, levels []int, reps int, seed uint64, cpu int) []community.Result {
	if cpu == 0 {
		cpu = runtime.NumCPU()
	}

	res := make([]community.Result, len(levels))
	lvCh := make(chan int, cpu*2)
	var wg sync.WaitGroup
	for range cpu {
		go func() {
			for i := range lvCh {
				res[i] = a.Diversity(q, levels[i])
				wg.Done()
			}
		}()
	}
	for i := range levels {
		wg.Add(1)
		lvCh <- i
	}
	wg.Wait()
	close(lvCh)

	if reps < 2 || a.dist == nil {
		return res
	}

	// bootstrap standard errors
	// for the extrapolated levels
	var ext []int
	for i, lv := range levels {
		if lv > a.n && !math.IsNaN(res[i].Value) {
			ext = append(ext, i)
		}
	}
	if len(ext) == 0 {
		return res
	}

	vals := make([][]float64, len(ext))
	for i := range vals {
		vals[i] = make([]float64, reps)
	}

	repCh := make(chan int, cpu*2)
	for range cpu {
		go func() {
			for r := range repCh {
				rng := rand.New(rand.NewPCG(seed, uint64(r)))
				rb := a.resample(rng)
				if rb == nil {
					for i := range ext {
						vals[i][r] = math.NaN()
					}
					wg.Done()
					continue
				}
				for i, li := range ext {
					rv := rb.Diversity(q, levels[li])
					vals[i][r] = rv.Value
				}
				wg.Done()
			}
		}()
	}
	for r := range reps {
		wg.Add(1)
		repCh <- r
	}
	wg.Wait()
	close(repCh)

	for i, li := range ext {
		vv := vals[i][:0:0]
		for _, v := range vals[i] {
			if !math.IsNaN(v) {
				vv = append(vv, v)
			}
		}
		if len(vv) < 2 {
			continue
		}
		se, err := stats.StandardDeviationSample(vv)
		if err != nil {
			continue
		}
		res[li].StdErr = se
	}
	return res
}

// Resample draws a bootstrap community
// of the observed sample size
// from the asymptotic distribution
// and wraps it in a fresh accumulator.
func (a *Accumulator) resample(rng *rand.Rand) *Accumulator {
	probs := a.dist.Probs
	cum := make([]float64, len(probs))
	var sum float64
	for i, p := range probs {
		sum += p
		cum[i] = sum
	}

	counts := make([]float64, len(probs))
	for range a.n {
		u := rng.Float64() * sum
		i := sort.SearchFloat64s(cum, u)
		if i >= len(counts) {
			i = len(counts) - 1
		}
		counts[i]++
	}

	c, err := community.New(a.c.Name(), nil, counts)
	if err != nil {
		return nil
	}
	rb, err := New(c, a.o)
	if err != nil {
		return nil
	}
	return rb
}
