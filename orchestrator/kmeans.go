package orchestrator

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

const (
	kmeansRestarts = 10
	kmeansMaxIter  = 300
	kmeansTol      = 1e-4
)

// KMeans partitions points into k clusters with k-means++ seeding and Lloyd
// iterations, keeping the lowest-inertia run out of several restarts. The
// random source is seeded with seed, so equal inputs give equal labels.
// Labels are renumbered in order of first appearance.
func KMeans(points [][]float64, k int, seed uint64) []int {
	n := len(points)
	if n == 0 || k <= 0 {
		return nil
	}
	k = min(k, n)
	rng := rand.New(rand.NewPCG(seed, seed))

	var best []int
	bestInertia := math.Inf(1)
	for r := 0; r < kmeansRestarts; r++ {
		labels, inertia := lloyd(points, seedCenters(points, k, rng))
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
	}
	return renumber(best)
}

func seedCenters(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := [][]float64{clone(points[rng.IntN(len(points))])}
	d2 := make([]float64, len(points))
	for len(centers) < k {
		total := 0.0
		for i, p := range points {
			d2[i] = math.Inf(1)
			for _, c := range centers {
				d2[i] = math.Min(d2[i], sqDist(p, c))
			}
			total += d2[i]
		}
		if total == 0 {
			centers = append(centers, clone(points[rng.IntN(len(points))]))
			continue
		}
		target := rng.Float64() * total
		pick := len(points) - 1
		for i, d := range d2 {
			if target < d {
				pick = i
				break
			}
			target -= d
		}
		centers = append(centers, clone(points[pick]))
	}
	return centers
}

func lloyd(points, centers [][]float64) ([]int, float64) {
	labels := make([]int, len(points))
	dim := len(points[0])
	for iter := 0; iter < kmeansMaxIter; iter++ {
		for i, p := range points {
			labels[i] = nearest(p, centers)
		}

		sums := make([][]float64, len(centers))
		counts := make([]int, len(centers))
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range points {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}
		shift := 0.0
		for c := range centers {
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			shift += sqDist(sums[c], centers[c])
			centers[c] = sums[c]
		}
		if shift <= kmeansTol {
			break
		}
	}

	inertia := 0.0
	for i, p := range points {
		labels[i] = nearest(p, centers)
		inertia += sqDist(p, centers[labels[i]])
	}
	return labels, inertia
}

func nearest(p []float64, centers [][]float64) int {
	best, bestD := 0, math.Inf(1)
	for c, center := range centers {
		if d := sqDist(p, center); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(p []float64) []float64 { return append([]float64(nil), p...) }

func renumber(labels []int) []int {
	ids := map[int]int{}
	out := make([]int, len(labels))
	for i, l := range labels {
		id, ok := ids[l]
		if !ok {
			id = len(ids)
			ids[l] = id
		}
		out[i] = id
	}
	return out
}
