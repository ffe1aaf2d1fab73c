package taxonomy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Crosswalk maps SSYK 2012 occupation codes to ISCO-08 codes. The official
// SCB translation key allows 1:1 and 1:many pairs; unresolved SSYK codes map
// to nothing and downstream enrichment passes them through as null.
type Crosswalk struct {
	bySSYK map[string][]string
}

var ErrCrosswalkColumns = errors.New("crosswalk: expected columns not found")

// crosswalk header cells, canonical name keyed by the SCB spreadsheet label.
// The ISCO column carries a trailing space in the published workbook, so
// matching trims whitespace.
var crosswalkColumns = map[string]string{
	"ssyk 2012 kod": "ssyk",
	"isco-08":       "isco",
}

// LoadCrosswalk parses the SCB SSYK2012→ISCO-08 translation workbook. The
// error return means "crosswalk unavailable"; callers degrade enrichment
// rather than aborting the run.
func LoadCrosswalk(path string) (*Crosswalk, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("crosswalk: open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("crosswalk: workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("crosswalk: read sheet %s: %w", sheets[0], err)
	}

	headerRow, cols := findCrosswalkHeader(rows)
	if cols == nil {
		return nil, ErrCrosswalkColumns
	}

	cw := &Crosswalk{bySSYK: make(map[string][]string)}
	for _, row := range rows[headerRow+1:] {
		ssyk := cellAt(row, cols["ssyk"])
		isco := cellAt(row, cols["isco"])
		if ssyk == "" || isco == "" {
			continue
		}
		cw.add(ssyk, isco)
	}
	return cw, nil
}

// findCrosswalkHeader scans the first rows for the header: the SCB workbook
// has title rows above it.
func findCrosswalkHeader(rows [][]string) (int, map[string]int) {
	limit := len(rows)
	if limit > 20 {
		limit = 20
	}
	for i := 0; i < limit; i++ {
		cols := make(map[string]int)
		for j, cell := range rows[i] {
			key := strings.ToLower(strings.TrimSpace(cell))
			if canonical, ok := crosswalkColumns[key]; ok {
				cols[canonical] = j
			}
		}
		if len(cols) == len(crosswalkColumns) {
			return i, cols
		}
	}
	return 0, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (c *Crosswalk) add(ssyk, isco string) {
	for _, existing := range c.bySSYK[ssyk] {
		if existing == isco {
			return
		}
	}
	c.bySSYK[ssyk] = append(c.bySSYK[ssyk], isco)
}

// Resolve returns the ISCO-08 codes for an SSYK code. Nil means unresolved.
func (c *Crosswalk) Resolve(ssyk string) []string {
	if c == nil {
		return nil
	}
	return c.bySSYK[strings.TrimSpace(ssyk)]
}

// SSYKCodes lists the mapped SSYK codes in sorted order.
func (c *Crosswalk) SSYKCodes() []string {
	if c == nil {
		return nil
	}
	codes := make([]string, 0, len(c.bySSYK))
	for code := range c.bySSYK {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// NewCrosswalk builds a crosswalk from in-memory pairs; used by tests and by
// fixture-backed runs.
func NewCrosswalk(pairs map[string][]string) *Crosswalk {
	cw := &Crosswalk{bySSYK: make(map[string][]string, len(pairs))}
	for ssyk, iscos := range pairs {
		for _, isco := range iscos {
			cw.add(strings.TrimSpace(ssyk), strings.TrimSpace(isco))
		}
	}
	return cw
}
