// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tsallis

import "math"

// ZhangGrabchak computes the Zhang-Huang family estimator
// of the Tsallis entropy of order q
// for an integer abundance sample:
// a per-frequency-class correction series
// evaluated with running products.
// At q = 1 it reduces to the Zhang estimator
// of the Shannon entropy,
// and at q = 0 to the observed richness minus one.
func zhangGrabchak(counts []float64, q float64) float64 {
	var n float64
	for _, v := range counts {
		if v > 0 {
			n += v
		}
	}
	nn := int(math.Round(n))
	if nn < 1 {
		return math.NaN()
	}

	var sum float64
	for _, v := range counts {
		if v <= 0 {
			continue
		}
		nv := int(math.Round(v))
		if nv < 1 {
			nv = 1
		}
		p := v / n

		if q == 1 {
			inner := 0.0
			prod := 1.0
			for k := 1; k <= nn-nv; k++ {
				prod *= 1 - float64(nv-1)/float64(nn-k)
				inner += prod / float64(k)
			}
			sum += p * inner
			continue
		}

		inner := 1.0 // zero order term
		prodQ := 1.0
		prodP := 1.0
		for k := 1; k <= nn-nv; k++ {
			prodQ *= (float64(k) - q) / float64(k)
			prodP *= 1 - float64(nv-1)/float64(nn-k)
			if prodQ == 0 {
				break
			}
			inner += prodQ * prodP
		}
		sum += p * inner
	}

	if q == 1 {
		return sum
	}
	return (1 - sum) / (q - 1)
}
