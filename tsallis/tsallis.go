// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tsallis implements bias corrected estimators
// of the Tsallis entropy of order q
// for species abundance samples,
// and the deformed exponential and logarithm
// that connect entropy with Hill number diversity.
package tsallis

import "math"

// Lnq returns the deformed logarithm of order q
// of x.
// At q = 1 it is the natural logarithm.
func Lnq(x, q float64) float64 {
	if x < 0 {
		return math.NaN()
	}
	if x == 0 {
		if q < 1 {
			return -1 / (1 - q)
		}
		return math.Inf(-1)
	}
	if q == 1 {
		return math.Log(x)
	}
	return math.Expm1((1-q)*math.Log(x)) / (1 - q)
}

// Expq returns the deformed exponential of order q
// of x,
// the inverse of Lnq.
// At q = 1 it is the exponential function.
func Expq(x, q float64) float64 {
	if q == 1 {
		return math.Exp(x)
	}
	u := 1 + (1-q)*x
	if u <= 0 {
		if q > 1 {
			return math.Inf(1)
		}
		return 0
	}
	return math.Exp(math.Log(u) / (1 - q))
}

// HillNumber transforms an entropy value of order q
// into its Hill number,
// the effective number of equally common species.
func HillNumber(entropy, q float64) float64 {
	return Expq(entropy, q)
}

// EntropyFromDiversity transforms a Hill number of order q
// back into its entropy.
func EntropyFromDiversity(d, q float64) float64 {
	return Lnq(d, q)
}

// EntropyProbs returns the naive Tsallis entropy
// of a probability vector.
// Orders zero and one use their closed forms
// (richness minus one,
// and the Shannon entropy).
func EntropyProbs(p []float64, q float64) float64 {
	switch q {
	case 0:
		rich := 0
		for _, v := range p {
			if v > 0 {
				rich++
			}
		}
		return float64(rich - 1)
	case 1:
		var h float64
		for _, v := range p {
			if v <= 0 {
				continue
			}
			h -= v * math.Log(v)
		}
		return h
	}
	var sum float64
	for _, v := range p {
		if v <= 0 {
			continue
		}
		sum += math.Pow(v, q)
	}
	return (1 - sum) / (q - 1)
}
