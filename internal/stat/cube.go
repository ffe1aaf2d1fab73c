// Package stat decodes JSON-stat2 dimensional cubes, as served by the SCB
// statistical API, into tidy one-row-per-observation form.
package stat

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Cube is a JSON-stat2 dataset: named dimensions with ordered category
// codes and a flat value array laid out row-major over the dimension order.
type Cube struct {
	ID        []string             `json:"id"`
	Size      []int                `json:"size"`
	Dimension map[string]Dimension `json:"dimension"`
	Value     []Cell               `json:"value"`
}

type Dimension struct {
	Label    string   `json:"label"`
	Category Category `json:"category"`
}

type Category struct {
	Index CategoryIndex     `json:"index"`
	Label map[string]string `json:"label"`
}

// CategoryIndex accepts both JSON-stat index encodings: an ordered array of
// codes, or a map of code to position.
type CategoryIndex struct {
	codes []string
}

func (ci *CategoryIndex) UnmarshalJSON(b []byte) error {
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		ci.codes = arr
		return nil
	}

	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return m[codes[i]] < m[codes[j]] })
	ci.codes = codes
	return nil
}

// Codes returns the category codes in declared order. When the cube carries
// no index at all, the label keys are used in sorted order so decoding stays
// deterministic.
func (c Category) Codes() []string {
	if len(c.Index.codes) > 0 {
		return c.Index.codes
	}
	codes := make([]string, 0, len(c.Label))
	for code := range c.Label {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Cell is one entry of the flat value array. Suppressed or missing cells
// (JSON null, or non-numeric sentinels like "..") carry a nil Number; they
// are never coerced to zero.
type Cell struct {
	Number *float64
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	// json.Unmarshal treats null as a no-op for a plain float64 target, so
	// the literal must be caught before the numeric attempt.
	if string(bytes.TrimSpace(b)) == "null" {
		c.Number = nil
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		c.Number = &f
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		var parsed float64
		if err := json.Unmarshal([]byte(s), &parsed); err == nil {
			c.Number = &parsed
		}
		return nil
	}

	// null and anything else decode as a missing value
	c.Number = nil
	return nil
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c.Number == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*c.Number)
}
