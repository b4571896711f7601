package features

import "sort"

// FindPeaks returns the indices of local maxima of x, ascending. Flat peaks
// report the (lower) middle index of the plateau. When distance > 1, peaks
// closer than distance samples to a higher peak are dropped, highest first.
func FindPeaks(x []float64, distance int) []int {
	var peaks []int
	n := len(x)
	for i := 1; i < n-1; {
		if x[i-1] >= x[i] {
			i++
			continue
		}
		ahead := i + 1
		for ahead < n-1 && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			peaks = append(peaks, (i+ahead-1)/2)
		}
		i = ahead
	}
	if distance <= 1 || len(peaks) < 2 {
		return peaks
	}

	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x[peaks[order[a]]] > x[peaks[order[b]]]
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}
	for _, j := range order {
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < distance; k++ {
			keep[k] = false
		}
	}

	out := peaks[:0]
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}
