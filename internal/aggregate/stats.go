package aggregate

import "sort"

// Summary describes one numeric column: how many cells exist, how many
// carry a value, and the usual location statistics over the non-null ones.
type Summary struct {
	Count   int
	NonNull int
	Mean    float64
	Median  float64
	Min     float64
	Max     float64
}

// SummaryStats computes column statistics over nullable values. All of the
// location fields are zero when every cell is null.
func SummaryStats(values []*float64) Summary {
	s := Summary{Count: len(values)}

	present := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			present = append(present, *v)
		}
	}
	s.NonNull = len(present)
	if len(present) == 0 {
		return s
	}

	sort.Float64s(present)
	s.Min = present[0]
	s.Max = present[len(present)-1]

	var sum float64
	for _, v := range present {
		sum += v
	}
	s.Mean = sum / float64(len(present))

	mid := len(present) / 2
	if len(present)%2 == 1 {
		s.Median = present[mid]
	} else {
		s.Median = (present[mid-1] + present[mid]) / 2
	}
	return s
}
