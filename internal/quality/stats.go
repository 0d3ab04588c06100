package quality

import "math"

// meanStd returns the mean and the sample standard deviation (divisor n-1)
// of xs. ok is false when fewer than two values are given. A column whose
// values are all equal has sd exactly 0, whatever rounding the mean picks up.
func meanStd(xs []float64) (mean, sd float64, ok bool) {
	n := len(xs)
	if n < 2 {
		return 0, 0, false
	}
	var sum float64
	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		sum += x
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo == hi {
		return lo, 0, true
	}
	mean = sum / float64(n)

	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(n-1)), true
}

// countOutliers counts values with |(x-mean)/sd| > threshold. ok is false
// when the standard deviation is zero or undefined.
func countOutliers(xs []float64, threshold float64) (n int64, ok bool) {
	mean, sd, ok := meanStd(xs)
	if !ok || sd == 0 {
		return 0, false
	}
	for _, x := range xs {
		if math.Abs((x-mean)/sd) > threshold {
			n++
		}
	}
	return n, true
}
