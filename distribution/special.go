// SPDX-License-Identifier: MIT

package distribution

import (
	"math"
	"sort"
)

// StdNormalCDF is Φ(x).
func StdNormalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// StdNormalQuantile is Φ⁻¹(p); ±Inf at the endpoints.
func StdNormalQuantile(p float64) float64 {
	switch {
	case p <= 0:
		return math.Inf(-1)
	case p >= 1:
		return math.Inf(1)
	}

	return -math.Sqrt2 * math.Erfcinv(2*p)
}

const (
	betaCFMaxIter = 300
	betaCFEps     = 3e-16
	betaCFTiny    = 1e-300
)

// regIncBeta is the regularized incomplete beta function I_x(a, b).
// It evaluates the continued fraction directly when x < (a+1)/(a+b+2) and
// through the symmetry I_x(a,b) = 1 − I_{1−x}(b,a) otherwise.
func regIncBeta(x, a, b float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	lab, _ := math.Lgamma(a + b)
	front := math.Exp(lab - la - lb + a*math.Log(x) + b*math.Log1p(-x))

	if x < (a+1)/(a+b+2) {
		return front * betaCF(x, a, b) / a
	}

	return 1 - front*betaCF(1-x, b, a)/b
}

// betaCF evaluates the incomplete-beta continued fraction with modified Lentz.
func betaCF(x, a, b float64) float64 {
	qab, qap, qam := a+b, a+1, a-1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < betaCFTiny {
		d = betaCFTiny
	}
	d = 1 / d
	h := d

	var m2, aa, del float64
	for m := 1; m <= betaCFMaxIter; m++ {
		fm := float64(m)
		m2 = 2 * fm

		aa = fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < betaCFTiny {
			d = betaCFTiny
		}
		c = 1 + aa/c
		if math.Abs(c) < betaCFTiny {
			c = betaCFTiny
		}
		d = 1 / d
		h *= d * c

		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < betaCFTiny {
			d = betaCFTiny
		}
		c = 1 + aa/c
		if math.Abs(c) < betaCFTiny {
			c = betaCFTiny
		}
		d = 1 / d
		del = d * c
		h *= del
		if math.Abs(del-1) < betaCFEps {
			break
		}
	}

	return h
}

// invertCDF finds x in [lo, hi] with cdf(x) ≈ p by bisection.
// cdf must be non-decreasing on the interval.
func invertCDF(cdf func(float64) float64, p, lo, hi float64) float64 {
	for i := 0; i < 200 && hi-lo > 1e-15*math.Max(1, math.Abs(lo)); i++ {
		mid := 0.5 * (lo + hi)
		if cdf(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
	}

	return 0.5 * (lo + hi)
}

// KSStatistic returns the one-sample Kolmogorov–Smirnov statistic
// D = sup |F_n(x) − F(x)| of xs against cdf. xs is not modified.
func KSStatistic(xs []float64, cdf func(float64) float64) float64 {
	n := len(xs)
	if n == 0 {
		return 1
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)

	var d, f, lo, hi float64
	fn := float64(n)
	for i, x := range s {
		f = cdf(x)
		lo = f - float64(i)/fn
		hi = float64(i+1)/fn - f
		d = math.Max(d, math.Max(lo, hi))
	}

	return math.Min(1, math.Max(0, d))
}

// KSTwoSample returns the two-sample Kolmogorov–Smirnov statistic between a and b.
func KSTwoSample(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 1
	}
	x := append([]float64(nil), a...)
	y := append([]float64(nil), b...)
	sort.Float64s(x)
	sort.Float64s(y)

	na, nb := float64(len(x)), float64(len(y))
	var i, j int
	var d float64
	for i < len(x) && j < len(y) {
		v := math.Min(x[i], y[j])
		for i < len(x) && x[i] == v {
			i++
		}
		for j < len(y) && y[j] == v {
			j++
		}
		d = math.Max(d, math.Abs(float64(i)/na-float64(j)/nb))
	}

	return d
}
