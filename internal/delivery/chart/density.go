package chart

import (
	"math"
	"sort"
)

// densityCut is how many bandwidths the curve extends past the data
const densityCut = 3.0

// GaussianKDE estimates the density of samples on an evenly spaced grid.
// The bandwidth follows Scott's rule; degenerate samples fall back to a unit bandwidth.
func GaussianKDE(samples []float64, points int) (xs, ys []float64) {
	n := len(samples)
	if n == 0 || points < 2 {
		return nil, nil
	}

	bw := scottBandwidth(samples)
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	lo := sorted[0] - densityCut*bw
	hi := sorted[n-1] + densityCut*bw

	norm := 1 / (float64(n) * bw * math.Sqrt(2*math.Pi))
	xs = make([]float64, points)
	ys = make([]float64, points)
	for i := range xs {
		x := lo + (hi-lo)*float64(i)/float64(points-1)
		var sum float64
		for _, s := range sorted {
			z := (x - s) / bw
			sum += math.Exp(-0.5 * z * z)
		}
		xs[i] = x
		ys[i] = sum * norm
	}
	return xs, ys
}

func scottBandwidth(samples []float64) float64 {
	n := float64(len(samples))
	if n < 2 {
		return 1
	}

	var mean float64
	for _, s := range samples {
		mean += s
	}
	mean /= n

	var ss float64
	for _, s := range samples {
		ss += (s - mean) * (s - mean)
	}
	std := math.Sqrt(ss / (n - 1))

	bw := std * math.Pow(n, -0.2)
	if bw == 0 || math.IsNaN(bw) || math.IsInf(bw, 0) {
		return 1
	}
	return bw
}
