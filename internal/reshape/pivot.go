// Package reshape pivots tidy long-format observations into wide analytical
// rows, one column per measure.
package reshape

import (
	"log"
	"strings"

	"arbetsdata/internal/stat"
)

// Strategy decides what happens when two observations share the same
// identifying tuple and measure. FirstWins mirrors the historical behavior
// and is the default; Sum and Mean are available for callers that want
// deliberate merge semantics.
type Strategy int

const (
	FirstWins Strategy = iota
	Sum
	Mean
)

// Wide is one pivoted row: the identifying dimension codes plus one nullable
// value per measure.
type Wide struct {
	Keys     map[string]string
	Measures map[string]*float64
}

// Result carries either the pivoted rows or, when the measure dimension is
// absent or entirely empty, the untouched long-format input.
type Result struct {
	Wide []Wide
	Long []stat.Observation
}

// Pivoted reports whether reshaping took place.
func (r Result) Pivoted() bool { return r.Long == nil }

type cell struct {
	value *float64
	sum   float64
	count int
}

type wideRow struct {
	keys  map[string]string
	cells map[string]*cell
}

// Pivot reshapes observations into one row per distinct idDims tuple with
// one column per distinct measureDim value. Row order is the order in which
// key tuples are first encountered. Duplicate (tuple, measure) pairs are
// resolved by strategy; FirstWins logs a warning per duplicate.
func Pivot(obs []stat.Observation, idDims []string, measureDim string, strategy Strategy, logger *log.Logger) Result {
	if logger == nil {
		logger = log.Default()
	}

	hasMeasure := false
	for _, o := range obs {
		if strings.TrimSpace(o.Dims[measureDim]) != "" {
			hasMeasure = true
			break
		}
	}
	if !hasMeasure {
		logger.Printf("reshape: measure dimension %q absent or empty, keeping long format", measureDim)
		return Result{Long: obs}
	}

	var order []string
	rows := make(map[string]*wideRow)

	for _, o := range obs {
		measure := strings.TrimSpace(o.Dims[measureDim])
		if measure == "" {
			continue
		}

		keyParts := make([]string, 0, len(idDims))
		keys := make(map[string]string, len(idDims))
		for _, dim := range idDims {
			v := o.Dims[dim]
			keyParts = append(keyParts, v)
			keys[dim] = v
		}
		rowKey := strings.Join(keyParts, "\x1f")

		row, ok := rows[rowKey]
		if !ok {
			row = &wideRow{keys: keys, cells: make(map[string]*cell)}
			rows[rowKey] = row
			order = append(order, rowKey)
		}

		c, seen := row.cells[measure]
		if !seen {
			c = &cell{}
			row.cells[measure] = c
		}

		switch strategy {
		case Sum, Mean:
			if o.Value != nil {
				c.sum += *o.Value
				c.count++
			}
		default: // FirstWins
			if seen {
				logger.Printf("reshape: duplicate key %v measure=%s, keeping first value", keys, measure)
				continue
			}
			c.value = o.Value
		}
	}

	out := make([]Wide, 0, len(order))
	for _, rowKey := range order {
		row := rows[rowKey]
		measures := make(map[string]*float64, len(row.cells))
		for measure, c := range row.cells {
			measures[measure] = resolveCell(c, strategy)
		}
		out = append(out, Wide{Keys: row.keys, Measures: measures})
	}
	return Result{Wide: out}
}

func resolveCell(c *cell, strategy Strategy) *float64 {
	switch strategy {
	case Sum:
		if c.count == 0 {
			return nil
		}
		v := c.sum
		return &v
	case Mean:
		if c.count == 0 {
			return nil
		}
		v := c.sum / float64(c.count)
		return &v
	default:
		return c.value
	}
}
