package pipeline

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"testing"

	"arbetsdata/internal/config"
	"arbetsdata/internal/enrich"
	"arbetsdata/internal/reshape"
	"arbetsdata/internal/source/jobads"
	"arbetsdata/internal/source/scb"
	"arbetsdata/internal/stat"
	"arbetsdata/internal/store"
	"arbetsdata/internal/taxonomy"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// routingClient dispatches requests by host, standing in for every upstream
// API at once.
type routingClient struct {
	routes map[string]func(*http.Request) *http.Response
}

func (c *routingClient) Do(req *http.Request) (*http.Response, error) {
	handler, ok := c.routes[req.URL.Host]
	if !ok {
		return textResponse(http.StatusNotFound, "no route"), nil
	}
	return handler(req), nil
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

const incomeCube = `{
	"id": ["Region", "Sektor", "Yrke2012", "Kon", "ContentsCode", "Tid"],
	"size": [1, 1, 1, 1, 2, 1],
	"dimension": {
		"Region": {"category": {"index": ["SE11"], "label": {"SE11": "Stockholm"}}},
		"Sektor": {"category": {"index": ["0"], "label": {"0": "all sectors"}}},
		"Yrke2012": {"category": {"index": ["2512"], "label": {"2512": "Software- and system developers"}}},
		"Kon": {"category": {"index": ["1+2"], "label": {"1+2": "total"}}},
		"ContentsCode": {"category": {"index": ["000007AS", "000007AP"], "label": {}}},
		"Tid": {"category": {"index": ["2023"], "label": {"2023": "2023"}}}
	},
	"value": [52100, 31400]
}`

const dispersionCube = `{
	"id": ["Yrke2012", "Kon", "ContentsCode", "Tid"],
	"size": [1, 1, 2, 1],
	"dimension": {
		"Yrke2012": {"category": {"index": ["2512"], "label": {}}},
		"Kon": {"category": {"index": ["1+2"], "label": {}}},
		"ContentsCode": {"category": {"index": ["000000NV", "000000O1"], "label": {}}},
		"Tid": {"category": {"index": ["2023"], "label": {}}}
	},
	"value": [48800, 46500]
}`

// The education table reports salary under its own contents code; the lone
// measure column must still land in monthly_salary.
const educationCube = `{
	"id": ["Yrke2012", "UtbildningsNiva", "Kon", "ContentsCode", "Tid"],
	"size": [1, 1, 1, 1, 1],
	"dimension": {
		"Yrke2012": {"category": {"index": ["2512"], "label": {}}},
		"UtbildningsNiva": {"category": {"index": ["6"], "label": {"6": "post-secondary 3+ years"}}},
		"Kon": {"category": {"index": ["1+2"], "label": {}}},
		"ContentsCode": {"category": {"index": ["00000XYZ"], "label": {}}},
		"Tid": {"category": {"index": ["2023"], "label": {}}}
	},
	"value": [54300]
}`

const adsPage = `{
	"total": {"value": 2},
	"hits": [
		{
			"id": 900001,
			"headline": "Backend developer",
			"employer": {"name": "Acme AB"},
			"workplace_address": {"region": "Stockholms län", "region_code": "01"},
			"publication_date": "2023-03-10T08:00:00",
			"number_of_vacancies": 2,
			"description": {"text": "We are looking for a backend developer with several years of Go and Postgres experience."}
		},
		{
			"id": 900002,
			"headline": "Data engineer",
			"employer": {"name": "Nordic Data AB"},
			"workplace_address": {"region": "", "region_code": "CifL_Rzy_Mku"},
			"publication_date": "2023-06-01T08:00:00",
			"description": {"text": "Join our analytics platform team building pipelines in Python and Spark for large datasets."}
		}
	]
}`

const ssykConcepts = `[
	{"id": "DJh5_yyF_hEM", "ssyk-code-2012": "2512", "preferred-label": "Mjukvaru- och systemutvecklare", "type": "ssyk-level-4"}
]`

const regionConcepts = `[
	{"id": "CifL_Rzy_Mku", "preferred-label": "Stockholms län"}
]`

const enrichedDocs = `[
	{
		"doc_id": "900001",
		"enriched_candidates": {
			"occupations": [],
			"competencies": [{"term": "go", "concept_label": "Go", "prediction": 0.91}],
			"traits": []
		}
	},
	{
		"doc_id": "900002",
		"enriched_candidates": {
			"occupations": [],
			"competencies": [{"term": "python", "concept_label": "Python", "prediction": 0.88}],
			"traits": [{"term": "noise", "concept_label": "", "prediction": 0.2}]
		}
	}
]`

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	lg := discardLogger()

	mock := &routingClient{routes: map[string]func(*http.Request) *http.Response{
		"scb.test": func(req *http.Request) *http.Response {
			switch req.URL.Path {
			case "/income":
				return textResponse(http.StatusOK, incomeCube)
			case "/dispersion":
				return textResponse(http.StatusOK, dispersionCube)
			case "/education":
				return textResponse(http.StatusOK, educationCube)
			default:
				// the age table is down; the run must survive
				return textResponse(http.StatusInternalServerError, "maintenance")
			}
		},
		"ads.test": func(*http.Request) *http.Response {
			return textResponse(http.StatusOK, adsPage)
		},
		"taxo.test": func(req *http.Request) *http.Response {
			if strings.Contains(req.URL.Path, "region") {
				return textResponse(http.StatusOK, regionConcepts)
			}
			return textResponse(http.StatusOK, ssykConcepts)
		},
		"enrich.test": func(*http.Request) *http.Response {
			return textResponse(http.StatusOK, enrichedDocs)
		},
	}}

	cfg := config.Config{}
	cfg.SCB = config.SCBConfig{
		IncomeTable:     "/income",
		DispersionTable: "/dispersion",
		AgeTable:        "/age",
		EducationTable:  "/education",
	}
	cfg.ESCO = config.ESCOConfig{CrosswalkURL: "http://files.test/crosswalk.xlsx", RelationType: "essential"}
	cfg.Data = config.DataConfig{DataDir: t.TempDir(), RawDir: t.TempDir()}

	return &Pipeline{
		cfg:    cfg,
		logger: lg,
		scb:    scb.NewClient("http://scb.test", "", 0, 0, mock, lg),
		ads:    jobads.NewClient("http://ads.test", 0, 0, mock, lg),
		taxo:   jobads.NewTaxonomyClient("http://taxo.test", 0, mock, lg),
		enricher: enrich.NewClient("http://enrich.test", enrich.Options{
			Threshold:  0.5,
			MinTextLen: 50,
		}, mock, lg),
		fetcher: taxonomy.NewFetcher(cfg.Data.RawDir, mock, lg),
		sink:    store.NewSink(cfg.Data.DataDir, lg),
	}
}

func TestRunPublishesAllTables(t *testing.T) {
	p := testPipeline(t)

	err := p.Run(context.Background(), Options{
		Years:     []string{"2023"},
		SSYKCodes: []string{"2512"},
		Enrich:    true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	income, err := store.ReadTable[store.IncomeRow](p.sink, store.TableIncome)
	if err != nil {
		t.Fatalf("read income: %v", err)
	}
	if len(income) != 1 {
		t.Fatalf("income rows = %d, want 1", len(income))
	}
	row := income[0]
	if row.Region != "Stockholm" || row.Occupation != "Software- and system developers" {
		t.Errorf("income labels = %q/%q", row.Region, row.Occupation)
	}
	if row.MonthlySalary == nil || *row.MonthlySalary != 52100 {
		t.Errorf("monthly salary = %v, want 52100", row.MonthlySalary)
	}
	if row.NumEmployees == nil || *row.NumEmployees != 31400 {
		t.Errorf("num employees = %v, want 31400", row.NumEmployees)
	}

	dispersion, err := store.ReadTable[store.DispersionRow](p.sink, store.TableIncomeDispersion)
	if err != nil {
		t.Fatalf("read dispersion: %v", err)
	}
	if len(dispersion) != 1 {
		t.Fatalf("dispersion rows = %d, want 1", len(dispersion))
	}
	if dispersion[0].Median == nil || *dispersion[0].Median != 46500 {
		t.Errorf("median = %v, want 46500", dispersion[0].Median)
	}
	if dispersion[0].P10 != nil {
		t.Errorf("p10 = %v, want nil (not requested)", *dispersion[0].P10)
	}

	// the age table responded 500; its output must be empty, not missing
	byAge, err := store.ReadTable[store.IncomeByAgeRow](p.sink, store.TableIncomeByAge)
	if err != nil {
		t.Fatalf("read income_by_age: %v", err)
	}
	if len(byAge) != 0 {
		t.Errorf("income_by_age rows = %d, want 0", len(byAge))
	}

	byEdu, err := store.ReadTable[store.IncomeByEducationRow](p.sink, store.TableIncomeByEducation)
	if err != nil {
		t.Fatalf("read income_by_education: %v", err)
	}
	if len(byEdu) != 1 {
		t.Fatalf("income_by_education rows = %d, want 1", len(byEdu))
	}
	if byEdu[0].MonthlySalary == nil || *byEdu[0].MonthlySalary != 54300 {
		t.Errorf("education salary = %v, want 54300 via lone-measure fallback", byEdu[0].MonthlySalary)
	}

	ads, err := store.ReadTable[store.JobAdRow](p.sink, store.TableJobsDetail)
	if err != nil {
		t.Fatalf("read jobs_detail: %v", err)
	}
	if len(ads) != 2 {
		t.Fatalf("jobs_detail rows = %d, want 2", len(ads))
	}
	for _, ad := range ads {
		if ad.ID == "900002" && ad.Region != "Stockholms län" {
			t.Errorf("ad 900002 region = %q, want backfilled name", ad.Region)
		}
	}

	employers, err := store.ReadTable[store.TopEmployerRow](p.sink, store.TableTopEmployers)
	if err != nil {
		t.Fatalf("read top_employers: %v", err)
	}
	if len(employers) != 2 {
		t.Fatalf("top_employers rows = %d, want 2", len(employers))
	}

	skills, err := store.ReadTable[store.SkillRow](p.sink, store.TableSkills)
	if err != nil {
		t.Fatalf("read skills: %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("skills rows = %d, want 2 (trait below threshold dropped)", len(skills))
	}
	for _, s := range skills {
		if s.SSYKCode != "2512" {
			t.Errorf("skill %q ssyk = %q, want 2512", s.Skill, s.SSYKCode)
		}
		if s.Occurrences != 1 {
			t.Errorf("skill %q occurrences = %d, want 1", s.Skill, s.Occurrences)
		}
	}
}

func TestRunAbortsWhenIncomeFetchFails(t *testing.T) {
	p := testPipeline(t)
	p.scb = scb.NewClient("http://down.test", "", 0, 0, &routingClient{}, p.logger)

	err := p.Run(context.Background(), Options{Years: []string{"2023"}, SSYKCodes: []string{"2512"}})
	if err == nil {
		t.Fatal("expected run to abort on income fetch failure")
	}

	if _, statErr := store.ReadTable[store.IncomeRow](p.sink, store.TableIncome); statErr != nil {
		t.Fatalf("read income: %v", statErr)
	}
}

func TestOccupationLabelFallsBackToLiveLabels(t *testing.T) {
	p := testPipeline(t)
	p.liveLabels = map[string]string{"3513": "Drifttekniker, IT"}

	if got := p.occupationLabel("2512"); got != "Software- and system developers" {
		t.Errorf("built-in label = %q", got)
	}
	if got := p.occupationLabel("3513"); got != "Drifttekniker, IT" {
		t.Errorf("live label = %q", got)
	}
	if got := p.occupationLabel("9999"); got != "unknown" {
		t.Errorf("unmapped label = %q", got)
	}
}

func TestPublicationWindowSpansYears(t *testing.T) {
	after, before := publicationWindow([]string{"2022", "2020", "2023"})
	if after != "2020-01-01T00:00:00" {
		t.Errorf("after = %q", after)
	}
	if before != "2023-12-31T23:59:59" {
		t.Errorf("before = %q", before)
	}
}

func TestMeasureValueFallsBackToLoneColumn(t *testing.T) {
	v := 123.0
	w := reshape.Wide{Measures: map[string]*float64{"00000XYZ": &v}}

	if got := measureValue(w, "monthly_salary"); got == nil || *got != 123 {
		t.Errorf("lone-measure fallback = %v, want 123", got)
	}
	if got := measureValue(w, "num_employees"); got != nil {
		t.Errorf("num_employees = %v, want nil", got)
	}
}

func TestRenameMeasuresKeepsUnknownCodes(t *testing.T) {
	obs := []stat.Observation{
		{Dims: map[string]string{"measure": "000007AS"}},
		{Dims: map[string]string{"measure": "00000XYZ"}},
	}
	out := renameMeasures(obs)
	if out[0].Dims["measure"] != "monthly_salary" {
		t.Errorf("known code renamed to %q", out[0].Dims["measure"])
	}
	if out[1].Dims["measure"] != "00000XYZ" {
		t.Errorf("unknown code rewritten to %q", out[1].Dims["measure"])
	}
}
