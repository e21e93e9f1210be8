// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package unveil

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/combin"
	"gonum.org/v1/gonum/stat/distuv"
)

// Richness is a non-parametric estimator
// of the number of species in the population,
// observed or not.
type Richness string

// Valid richness estimators.
const (
	// Chao1 adds the classic singleton-doubleton term
	// to the observed richness.
	Chao1 Richness = "chao1"

	// IChao1 improves Chao1 with a correction
	// based on the tripleton and quadrupleton counts.
	// It requires quadrupletons
	// and falls back to Chao1 without them.
	IChao1 Richness = "ichao1"

	// Jackknife uses leave-one-out resampling
	// at an automatically selected order.
	Jackknife Richness = "jackknife"
)

// ParseRichness returns the richness estimator
// for a given keyword.
func ParseRichness(s string) (Richness, error) {
	switch r := Richness(s); r {
	case Chao1, IChao1, Jackknife:
		return r, nil
	case "":
		return Jackknife, nil
	}
	return "", fmt.Errorf("unknown richness estimator %q", s)
}

// DefJackMax is the default maximum order
// for the jackknife richness estimator.
const DefJackMax = 10

// DefJackAlpha is the default significance level
// for the jackknife order selection.
const DefJackAlpha = 0.05

// RichnessEstimate returns the estimated species richness
// of an abundance sample.
// The returned estimator is the one actually used,
// after any fallback,
// with a notice recording the substitution.
// The jackknife parameters are ignored
// by the other estimators;
// zero values select the defaults.
func RichnessEstimate(counts []float64, r Richness, jackMax int, jackAlpha float64) (float64, Richness, string) {
	var n float64
	obs := 0
	fc := make(map[int]int)
	for _, v := range counts {
		if v <= 0 {
			continue
		}
		n += v
		obs++
		fc[freqClass(v)]++
	}
	if obs == 0 {
		return math.NaN(), r, "degenerate sample: no observed individuals"
	}

	switch r {
	case Chao1:
		return chao1(obs, fc), Chao1, ""
	case IChao1:
		if fc[4] == 0 {
			return chao1(obs, fc), Chao1, "ichao1 requires quadrupletons, using chao1"
		}
		f1 := float64(fc[1])
		f2 := float64(fc[2])
		f3 := float64(fc[3])
		f4 := float64(fc[4])
		add := f1 - f2*f3/(2*f4)
		if add < 0 {
			add = 0
		}
		return chao1(obs, fc) + f3/(4*f4)*add, IChao1, ""
	case Jackknife:
		if jackMax <= 0 {
			jackMax = DefJackMax
		}
		if jackAlpha <= 0 || jackAlpha >= 1 {
			jackAlpha = DefJackAlpha
		}
		return jackknife(obs, fc, jackMax, jackAlpha), Jackknife, ""
	}
	return math.NaN(), r, fmt.Sprintf("unknown richness estimator %q", r)
}

// FreqClass returns the frequency class of an abundance,
// never below one for a positive value.
func freqClass(v float64) int {
	c := int(math.Round(v))
	if c < 1 {
		c = 1
	}
	return c
}

func chao1(obs int, fc map[int]int) float64 {
	f1 := float64(fc[1])
	f2 := float64(fc[2])
	if f2 > 0 {
		return float64(obs) + f1*f1/(2*f2)
	}
	return float64(obs) + f1*(f1-1)/2
}

// Jackknife returns the jackknife richness estimate
// at the smallest order
// whose increment to the next order
// is not significant at level alpha.
// The selection is deterministic:
// orders are scanned from zero upwards
// and the frequency counts fully determine the tests.
func jackknife(obs int, fc map[int]int, max int, alpha float64) float64 {
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - alpha/2)

	order := func(k int) float64 {
		s := float64(obs)
		for j := 1; j <= k; j++ {
			f := float64(fc[j])
			if f == 0 {
				continue
			}
			sign := 1.0
			if j%2 == 0 {
				sign = -1
			}
			s += sign * float64(combin.Binomial(k, j)) * f
		}
		return s
	}

	for k := 0; k < max; k++ {
		d := order(k+1) - order(k)
		if d == 0 {
			return order(k)
		}

		// variance of the increment
		var v float64
		for j := 1; j <= k+1; j++ {
			f := float64(fc[j])
			if f == 0 {
				continue
			}
			var bk float64
			if j <= k {
				bk = float64(combin.Binomial(k, j))
			}
			b := float64(combin.Binomial(k+1, j)) - bk
			v += b * b * f
		}
		v -= d * d / float64(obs)
		if v <= 0 {
			return order(k)
		}
		if math.Abs(d)/math.Sqrt(v) <= z {
			return order(k)
		}
	}
	return order(max)
}
