package stat

import (
	"log"
	"strings"
)

// Observation is one tidy row: a code per dimension plus a nullable value.
type Observation struct {
	Dims  map[string]string
	Value *float64
}

// canonicalDims renames SCB dimension codes to the one column-naming
// convention the rest of the pipeline consumes. Renaming happens here, at
// the ingestion boundary, so downstream code never probes alternate
// spellings.
var canonicalDims = map[string]string{
	"Tid":             "year",
	"Region":          "region_code",
	"Yrke2012":        "ssyk_code",
	"Kon":             "gender_code",
	"Sektor":          "sector_code",
	"ContentsCode":    "measure",
	"Alder":           "age_group",
	"UtbildningsNiva": "education_level",
}

// CanonicalDim maps a raw dimension ID to its canonical column name.
// Unknown dimensions pass through lowercased.
func CanonicalDim(id string) string {
	if name, ok := canonicalDims[id]; ok {
		return name
	}
	return strings.ToLower(id)
}

// Decode expands a cube into one observation per value-array entry by
// walking the Cartesian product of the per-dimension code lists in declared
// order, row-major, zipped position-for-position against the value array.
//
// When the value array length disagrees with the product of the dimension
// sizes, decoding stops at the shorter of the two and logs the mismatch
// rather than truncating silently. Duplicate coordinates indicate a
// malformed cube and are logged, never deduplicated.
func Decode(cube Cube, logger *log.Logger) []Observation {
	if logger == nil {
		logger = log.Default()
	}

	dimCodes := make([][]string, 0, len(cube.ID))
	dimNames := make([]string, 0, len(cube.ID))
	total := 1
	for _, id := range cube.ID {
		dim, ok := cube.Dimension[id]
		if !ok {
			logger.Printf("stat: dimension %q declared in id list but missing from dimension map", id)
			return nil
		}
		codes := dim.Category.Codes()
		if len(codes) == 0 {
			logger.Printf("stat: dimension %q has no categories", id)
			return nil
		}
		dimCodes = append(dimCodes, codes)
		dimNames = append(dimNames, CanonicalDim(id))
		total *= len(codes)
	}

	n := total
	if len(cube.Value) != total {
		logger.Printf("stat: size mismatch: product of dimension sizes is %d but value array has %d entries", total, len(cube.Value))
		if len(cube.Value) < n {
			n = len(cube.Value)
		}
	}

	obs := make([]Observation, 0, n)
	seen := make(map[string]struct{}, n)
	idx := make([]int, len(dimCodes))

	for i := 0; i < n; i++ {
		dims := make(map[string]string, len(dimNames))
		var keyParts []string
		for d, name := range dimNames {
			code := dimCodes[d][idx[d]]
			dims[name] = code
			keyParts = append(keyParts, code)
		}

		key := strings.Join(keyParts, "\x1f")
		if _, dup := seen[key]; dup {
			logger.Printf("stat: duplicate coordinate %v in decoded cube", dims)
		}
		seen[key] = struct{}{}

		obs = append(obs, Observation{Dims: dims, Value: cube.Value[i].Number})

		// advance the row-major odometer: last dimension varies fastest
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < len(dimCodes[d]) {
				break
			}
			idx[d] = 0
		}
	}

	return obs
}
