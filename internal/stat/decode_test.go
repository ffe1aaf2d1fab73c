package stat

import (
	"encoding/json"
	"log"
	"strings"
	"testing"
)

func cubeFromJSON(t *testing.T, raw string) Cube {
	t.Helper()
	var c Cube
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal cube: %v", err)
	}
	return c
}

const incomeCubeJSON = `{
	"id": ["Region", "Yrke2012", "Tid"],
	"size": [2, 2, 2],
	"dimension": {
		"Region":   {"category": {"index": {"SE11": 0, "SE12": 1}}},
		"Yrke2012": {"category": {"index": {"2511": 0, "2512": 1}}},
		"Tid":      {"category": {"index": {"2023": 0, "2024": 1}}}
	},
	"value": [100, 101, 110, 111, 200, 201, 210, 211]
}`

func TestDecodeRowMajorOrdering(t *testing.T) {
	cube := cubeFromJSON(t, incomeCubeJSON)
	obs := Decode(cube, nil)

	if len(obs) != 8 {
		t.Fatalf("expected 8 observations, got %d", len(obs))
	}

	// row-major: last dimension (Tid) varies fastest
	first := obs[0]
	if first.Dims["region_code"] != "SE11" || first.Dims["ssyk_code"] != "2511" || first.Dims["year"] != "2023" {
		t.Fatalf("unexpected first coordinate: %v", first.Dims)
	}
	if first.Value == nil || *first.Value != 100 {
		t.Fatalf("expected value 100, got %v", first.Value)
	}

	second := obs[1]
	if second.Dims["year"] != "2024" {
		t.Fatalf("expected Tid to vary fastest, got %v", second.Dims)
	}
	if second.Value == nil || *second.Value != 101 {
		t.Fatalf("expected value 101, got %v", second.Value)
	}

	last := obs[7]
	if last.Dims["region_code"] != "SE12" || last.Dims["ssyk_code"] != "2512" || last.Dims["year"] != "2024" {
		t.Fatalf("unexpected last coordinate: %v", last.Dims)
	}
	if last.Value == nil || *last.Value != 211 {
		t.Fatalf("expected value 211, got %v", last.Value)
	}
}

func TestDecodeUniqueCoordinates(t *testing.T) {
	cube := cubeFromJSON(t, incomeCubeJSON)
	obs := Decode(cube, nil)

	seen := make(map[string]bool)
	for _, o := range obs {
		key := o.Dims["region_code"] + "|" + o.Dims["ssyk_code"] + "|" + o.Dims["year"]
		if seen[key] {
			t.Fatalf("duplicate coordinate %s", key)
		}
		seen[key] = true
	}
}

func TestDecodePreservesNulls(t *testing.T) {
	raw := `{
		"id": ["Tid"],
		"size": [3],
		"dimension": {"Tid": {"category": {"index": {"2022": 0, "2023": 1, "2024": 2}}}},
		"value": [45000, "..", null]
	}`
	obs := Decode(cubeFromJSON(t, raw), nil)

	if len(obs) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(obs))
	}
	if obs[0].Value == nil || *obs[0].Value != 45000 {
		t.Fatalf("expected 45000, got %v", obs[0].Value)
	}
	if obs[1].Value != nil {
		t.Fatalf("suppressed cell \"..\" must decode to nil, got %v", *obs[1].Value)
	}
	if obs[2].Value != nil {
		t.Fatalf("null cell must decode to nil, got %v", *obs[2].Value)
	}
}

func TestDecodeSizeMismatchStopsShort(t *testing.T) {
	raw := `{
		"id": ["Tid"],
		"size": [3],
		"dimension": {"Tid": {"category": {"index": {"2022": 0, "2023": 1, "2024": 2}}}},
		"value": [1, 2]
	}`
	var buf strings.Builder
	logger := log.New(&buf, "", 0)

	obs := Decode(cubeFromJSON(t, raw), logger)
	if len(obs) != 2 {
		t.Fatalf("expected decode to stop at 2 rows, got %d", len(obs))
	}
	if !strings.Contains(buf.String(), "size mismatch") {
		t.Fatalf("expected size mismatch log, got %q", buf.String())
	}
}

func TestDecodeIndexAsArray(t *testing.T) {
	raw := `{
		"id": ["Kon"],
		"size": [2],
		"dimension": {"Kon": {"category": {"index": ["1", "2"]}}},
		"value": [10, 20]
	}`
	obs := Decode(cubeFromJSON(t, raw), nil)
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}
	if obs[0].Dims["gender_code"] != "1" || obs[1].Dims["gender_code"] != "2" {
		t.Fatalf("array index order not preserved: %v %v", obs[0].Dims, obs[1].Dims)
	}
}

func TestCanonicalDimFallback(t *testing.T) {
	if got := CanonicalDim("Tid"); got != "year" {
		t.Fatalf("expected year, got %s", got)
	}
	if got := CanonicalDim("SomethingNew"); got != "somethingnew" {
		t.Fatalf("expected lowercase passthrough, got %s", got)
	}
}
