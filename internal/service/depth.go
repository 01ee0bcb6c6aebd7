package service

import "sort"

const depthTrim = 0.1

// Median of xs; zero for an empty slice.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := sortedCopy(xs)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// TrimmedMean drops int(n*trim) values from each end before averaging. When
// that would leave nothing, all values are averaged.
func TrimmedMean(xs []float64, trim float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := sortedCopy(xs)
	k := int(float64(len(s)) * trim)
	core := s
	if len(s) > 2*k {
		core = s[k : len(s)-k]
	}
	var sum float64
	for _, v := range core {
		sum += v
	}
	return sum / float64(len(core))
}

func sortedCopy(xs []float64) []float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	return s
}
