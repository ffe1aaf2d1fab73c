// Package taxonomy holds the reference data the pipeline joins against:
// code-to-label maps per dimension, the SSYK-to-ISCO crosswalk, and the
// ISCO-to-ESCO skill universe.
package taxonomy

import "strings"

// Unknown is returned for every code that has no mapping. Lookups are total:
// they never fail and never drop the row.
const Unknown = "unknown"

// CodeMap is an immutable code-to-label mapping scoped to one dimension.
type CodeMap struct {
	dimension string
	labels    map[string]string
}

func NewCodeMap(dimension string, labels map[string]string) CodeMap {
	copied := make(map[string]string, len(labels))
	for k, v := range labels {
		copied[strings.TrimSpace(k)] = v
	}
	return CodeMap{dimension: dimension, labels: copied}
}

func (m CodeMap) Dimension() string { return m.dimension }

// Resolve returns the label for code, or Unknown when unmapped.
func (m CodeMap) Resolve(code string) string {
	if label, ok := m.labels[strings.TrimSpace(code)]; ok {
		return label
	}
	return Unknown
}

// Has reports whether the code is mapped.
func (m CodeMap) Has(code string) bool {
	_, ok := m.labels[strings.TrimSpace(code)]
	return ok
}

// Regions maps NUTS region codes used by the SCB income table.
func Regions() CodeMap {
	return NewCodeMap("region", map[string]string{
		"SE":   "Sweden",
		"SE11": "Stockholm",
		"SE12": "East-Central Sweden",
		"SE21": "Småland and islands",
		"SE22": "South Sweden",
		"SE23": "West Sweden",
		"SE31": "North-Central Sweden",
		"SE32": "Central Norrland",
		"SE33": "Upper Norrland",
	})
}

func Genders() CodeMap {
	return NewCodeMap("gender", map[string]string{
		"1":   "men",
		"2":   "women",
		"1+2": "total",
	})
}

func Sectors() CodeMap {
	return NewCodeMap("sector", map[string]string{
		"0":   "All sectors",
		"1-3": "Public sector",
		"4-5": "Private sector",
	})
}

// Measures maps SCB contents codes for the income table.
func Measures() CodeMap {
	return NewCodeMap("measure", map[string]string{
		"000007AQ": "basic_salary",
		"000007AS": "monthly_salary",
		"000007AR": "gender_salary_ratio",
		"000007AP": "num_employees",
	})
}

// DispersionMeasures maps SCB contents codes for the salary dispersion table
// to canonical percentile names. Codes outside this map are dropped from the
// dispersion pivot rather than carried under their raw code.
func DispersionMeasures() CodeMap {
	return NewCodeMap("dispersion_measure", map[string]string{
		"000000NV": "mean",
		"000000O0": "p10",
		"000000OA": "p25",
		"000000O1": "median",
		"000000OB": "p75",
		"000000O2": "p90",
	})
}

// Occupations maps the SSYK 2012 codes the pipeline fetches by default:
// ICT, data-science and adjacent occupation groups.
func Occupations() CodeMap {
	return NewCodeMap("occupation", map[string]string{
		"2511": "System analysts and ICT-architects",
		"2512": "Software- and system developers",
		"2513": "Games and digital media developers",
		"2514": "System testers and test managers",
		"2515": "System administrators",
		"2516": "Security specialists (ICT)",
		"2519": "ICT-specialist professionals not elsewhere classified",
		"2121": "Mathematicians and actuaries",
		"2122": "Statisticians",
		"2173": "Game and digital media designers",
		"2143": "Engineering professionals in electrical, electronics and telecommunications",
	})
}

// DefaultSSYKCodes is the default occupation selection for both the income
// fetch and the job-ads fetch.
var DefaultSSYKCodes = []string{
	"2511", "2512", "2513", "2514", "2515", "2516", "2519",
	"2121", "2122",
	"2173", "2143",
}
