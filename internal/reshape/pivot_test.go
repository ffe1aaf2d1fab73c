package reshape

import (
	"log"
	"strings"
	"testing"

	"arbetsdata/internal/stat"
)

func fp(v float64) *float64 { return &v }

func obsRow(dims map[string]string, v *float64) stat.Observation {
	return stat.Observation{Dims: dims, Value: v}
}

var incomeIDDims = []string{"year", "region_code", "ssyk_code", "gender_code"}

func TestPivotEndToEnd(t *testing.T) {
	obs := []stat.Observation{
		obsRow(map[string]string{
			"year": "2023", "region_code": "SE11", "ssyk_code": "2512",
			"gender_code": "1", "measure": "monthly_salary",
		}, fp(45000)),
		obsRow(map[string]string{
			"year": "2023", "region_code": "SE11", "ssyk_code": "2512",
			"gender_code": "1", "measure": "num_employees",
		}, fp(120)),
	}

	res := Pivot(obs, incomeIDDims, "measure", FirstWins, nil)
	if !res.Pivoted() {
		t.Fatalf("expected pivot to take place")
	}
	if len(res.Wide) != 1 {
		t.Fatalf("expected 1 wide row, got %d", len(res.Wide))
	}

	row := res.Wide[0]
	if row.Keys["year"] != "2023" || row.Keys["region_code"] != "SE11" ||
		row.Keys["ssyk_code"] != "2512" || row.Keys["gender_code"] != "1" {
		t.Fatalf("unexpected keys: %v", row.Keys)
	}
	if v := row.Measures["monthly_salary"]; v == nil || *v != 45000 {
		t.Fatalf("expected monthly_salary=45000, got %v", v)
	}
	if v := row.Measures["num_employees"]; v == nil || *v != 120 {
		t.Fatalf("expected num_employees=120, got %v", v)
	}
}

func TestPivotDuplicateKeyFirstWins(t *testing.T) {
	dims := map[string]string{
		"year": "2023", "region_code": "SE11", "ssyk_code": "2512",
		"gender_code": "1", "measure": "monthly_salary",
	}
	obs := []stat.Observation{
		obsRow(dims, fp(45000)),
		obsRow(dims, fp(99999)),
	}

	var buf strings.Builder
	logger := log.New(&buf, "", 0)

	res := Pivot(obs, incomeIDDims, "measure", FirstWins, logger)
	if len(res.Wide) != 1 {
		t.Fatalf("expected exactly 1 row for the duplicate tuple, got %d", len(res.Wide))
	}
	if v := res.Wide[0].Measures["monthly_salary"]; v == nil || *v != 45000 {
		t.Fatalf("first value must win, got %v", v)
	}
	if !strings.Contains(buf.String(), "duplicate key") {
		t.Fatalf("expected duplicate warning, got %q", buf.String())
	}
}

func TestPivotDuplicateKeySumAndMean(t *testing.T) {
	dims := map[string]string{"year": "2023", "measure": "ads"}
	obs := []stat.Observation{
		obsRow(dims, fp(2)),
		obsRow(dims, fp(4)),
	}

	sum := Pivot(obs, []string{"year"}, "measure", Sum, nil)
	if v := sum.Wide[0].Measures["ads"]; v == nil || *v != 6 {
		t.Fatalf("expected sum 6, got %v", v)
	}

	mean := Pivot(obs, []string{"year"}, "measure", Mean, nil)
	if v := mean.Wide[0].Measures["ads"]; v == nil || *v != 3 {
		t.Fatalf("expected mean 3, got %v", v)
	}
}

func TestPivotMissingMeasureKeepsLongFormat(t *testing.T) {
	obs := []stat.Observation{
		obsRow(map[string]string{"year": "2023", "region_code": "SE11"}, fp(1)),
		obsRow(map[string]string{"year": "2024", "region_code": "SE11"}, fp(2)),
	}

	res := Pivot(obs, []string{"year", "region_code"}, "measure", FirstWins, nil)
	if res.Pivoted() {
		t.Fatalf("expected long-format fallback")
	}
	if len(res.Long) != 2 {
		t.Fatalf("long format must pass through unchanged, got %d rows", len(res.Long))
	}
}

func TestPivotPreservesNullCells(t *testing.T) {
	obs := []stat.Observation{
		obsRow(map[string]string{"year": "2023", "measure": "monthly_salary"}, nil),
	}
	res := Pivot(obs, []string{"year"}, "measure", FirstWins, nil)
	v, ok := res.Wide[0].Measures["monthly_salary"]
	if !ok {
		t.Fatalf("null cell must still produce the column")
	}
	if v != nil {
		t.Fatalf("suppressed value must stay nil, got %v", *v)
	}
}

func TestPivotStableRowOrder(t *testing.T) {
	obs := []stat.Observation{
		obsRow(map[string]string{"year": "2024", "measure": "m"}, fp(1)),
		obsRow(map[string]string{"year": "2022", "measure": "m"}, fp(2)),
		obsRow(map[string]string{"year": "2023", "measure": "m"}, fp(3)),
	}
	res := Pivot(obs, []string{"year"}, "measure", FirstWins, nil)
	years := []string{res.Wide[0].Keys["year"], res.Wide[1].Keys["year"], res.Wide[2].Keys["year"]}
	if years[0] != "2024" || years[1] != "2022" || years[2] != "2023" {
		t.Fatalf("row order must follow first encounter, got %v", years)
	}
}
