package track

// Stats summarizes a collection of error values
type Stats struct {
	Max  float64
	Min  float64
	Mean float64
}

// ComputeStats returns nil when vals is empty
func ComputeStats(vals []float64) *Stats {
	if len(vals) == 0 {
		return nil
	}
	s := &Stats{Max: vals[0], Min: vals[0]}
	var sum float64
	for _, v := range vals {
		s.Max = max(s.Max, v)
		s.Min = min(s.Min, v)
		sum += v
	}
	s.Mean = sum / float64(len(vals))
	return s
}
