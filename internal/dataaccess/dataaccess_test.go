package dataaccess

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"arbetsdata/internal/store"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func fp(v float64) *float64 { return &v }

func seededService(t *testing.T) *Service {
	t.Helper()
	sink := store.NewSink(t.TempDir(), discardLogger())

	income := []store.IncomeRow{
		{Year: "2023", RegionCode: "SE11", Region: "Stockholm", SSYKCode: "2512", GenderCode: "1+2", MonthlySalary: fp(52000)},
		{Year: "2023", RegionCode: "SE22", Region: "South Sweden", SSYKCode: "2512", GenderCode: "1+2", MonthlySalary: fp(46000)},
		{Year: "2023", RegionCode: "SE11", Region: "Stockholm", SSYKCode: "2511", GenderCode: "1", MonthlySalary: fp(55000)},
		{Year: "2022", RegionCode: "SE11", Region: "Stockholm", SSYKCode: "2512", GenderCode: "1+2", MonthlySalary: nil},
	}
	if err := store.WriteTable(sink, store.TableIncome, income); err != nil {
		t.Fatal(err)
	}

	jobs := []store.JobAdRow{
		{ID: "1", SSYKCode: "2512", OccupationLabel: "Mjukvaruutvecklare", EmployerName: "Acme AB", Region: "Stockholms län", PublishedDate: "2023-02-01T00:00:00"},
		{ID: "2", SSYKCode: "2512", EmployerName: "Beta AB", Region: "Skåne län", PublishedDate: "2023-05-01T00:00:00"},
		{ID: "3", SSYKCode: "2511", EmployerName: "Acme AB", Region: "Stockholms län", PublishedDate: "2022-11-01T00:00:00"},
	}
	if err := store.WriteTable(sink, store.TableJobsDetail, jobs); err != nil {
		t.Fatal(err)
	}

	skills := []store.SkillRow{
		{SSYKCode: "2512", Skill: "Go", SkillType: "skill", Occurrences: 5},
		{SSYKCode: "2512", Skill: "noggrann", SkillType: "trait", Occurrences: 3},
		{SSYKCode: "2511", Skill: "SQL", SkillType: "skill", Occurrences: 2},
	}
	if err := store.WriteTable(sink, store.TableSkills, skills); err != nil {
		t.Fatal(err)
	}

	return NewService(sink, discardLogger())
}

func TestIncomeFilters(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	rows, err := svc.Income(ctx, IncomeFilter{Occupations: "2512", Year: "2023"})
	if err != nil {
		t.Fatalf("Income: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	rows, err = svc.Income(ctx, IncomeFilter{Occupations: "2511,2512", Region: "stockholm"})
	if err != nil {
		t.Fatalf("Income: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("comma-OR with region substring gave %d rows, want 3", len(rows))
	}

	rows, err = svc.Income(ctx, IncomeFilter{Region: "SE22"})
	if err != nil {
		t.Fatalf("Income: %v", err)
	}
	if len(rows) != 1 || rows[0].RegionCode != "SE22" {
		t.Fatalf("region code match gave %+v", rows)
	}

	rows, err = svc.Income(ctx, IncomeFilter{Gender: "1"})
	if err != nil {
		t.Fatalf("Income: %v", err)
	}
	if len(rows) != 1 || rows[0].SSYKCode != "2511" {
		t.Fatalf("gender filter gave %+v", rows)
	}
}

func TestIncomeLimitClamps(t *testing.T) {
	svc := seededService(t)

	rows, err := svc.Income(context.Background(), IncomeFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Income: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	if got := clampLimit(0, defaultLimit, maxLimit); got != defaultLimit {
		t.Errorf("clampLimit(0) = %d", got)
	}
	if got := clampLimit(5000, defaultLimit, maxLimit); got != maxLimit {
		t.Errorf("clampLimit(5000) = %d", got)
	}
}

func TestJobsAndJobByID(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	rows, err := svc.Jobs(ctx, JobsFilter{Employer: "acme"})
	if err != nil {
		t.Fatalf("Jobs: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("employer substring gave %d rows, want 2", len(rows))
	}

	rows, err = svc.Jobs(ctx, JobsFilter{Year: "2023"})
	if err != nil {
		t.Fatalf("Jobs: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("year filter gave %d rows, want 2", len(rows))
	}

	ad, err := svc.JobByID(ctx, "2")
	if err != nil {
		t.Fatalf("JobByID: %v", err)
	}
	if ad.EmployerName != "Beta AB" {
		t.Errorf("ad = %+v", ad)
	}

	if _, err := svc.JobByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id gave %v, want ErrNotFound", err)
	}
}

func TestSkillsFilterByType(t *testing.T) {
	svc := seededService(t)

	rows, err := svc.Skills(context.Background(), SkillsFilter{Occupations: "2512", SkillType: "skill"})
	if err != nil {
		t.Fatalf("Skills: %v", err)
	}
	if len(rows) != 1 || rows[0].Skill != "Go" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestMissingTableServesEmpty(t *testing.T) {
	svc := seededService(t)

	rows, err := svc.Dispersion(context.Background(), IncomeFilter{})
	if err != nil {
		t.Fatalf("Dispersion: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("got %d rows from absent table", len(rows))
	}
}

func TestOccupationsAndRegions(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	occs, err := svc.Occupations(ctx)
	if err != nil {
		t.Fatalf("Occupations: %v", err)
	}
	if len(occs) != 2 {
		t.Fatalf("got %d occupations, want 2", len(occs))
	}
	if occs[0].SSYKCode != "2511" || occs[1].SSYKCode != "2512" {
		t.Errorf("ordering = %+v", occs)
	}
	if occs[1].AdCount != 2 || occs[1].IncomeObs != 3 {
		t.Errorf("2512 counts = %+v", occs[1])
	}
	if occs[1].Label == "" || occs[1].Label == "unknown" {
		t.Errorf("2512 label = %q", occs[1].Label)
	}

	regions, err := svc.Regions(ctx)
	if err != nil {
		t.Fatalf("Regions: %v", err)
	}
	if len(regions) < 2 {
		t.Fatalf("regions = %+v", regions)
	}
}

func TestStats(t *testing.T) {
	svc := seededService(t)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TableRows[store.TableIncome] != 4 {
		t.Errorf("income rows = %d", stats.TableRows[store.TableIncome])
	}
	if len(stats.Years) != 2 || stats.Years[0] != "2022" {
		t.Errorf("years = %v", stats.Years)
	}
	if stats.MedianSalary.NonNull != 3 {
		t.Errorf("salary summary = %+v", stats.MedianSalary)
	}
	if stats.DistinctSkills != 3 {
		t.Errorf("distinct skills = %d", stats.DistinctSkills)
	}
	if stats.UniqueEmployers != 2 {
		t.Errorf("unique employers = %d, want 2", stats.UniqueEmployers)
	}
	if len(stats.TopRegions) != 2 || stats.TopRegions[0] != "Stockholms län" {
		t.Errorf("top regions = %v", stats.TopRegions)
	}
}

func TestRereadsAfterTableRewrite(t *testing.T) {
	sink := store.NewSink(t.TempDir(), discardLogger())
	svc := NewService(sink, discardLogger())
	ctx := context.Background()

	if err := store.WriteTable(sink, store.TableSkills, []store.SkillRow{{Skill: "Go", Occurrences: 1}}); err != nil {
		t.Fatal(err)
	}
	rows, err := svc.Skills(ctx, SkillsFilter{})
	if err != nil || len(rows) != 1 {
		t.Fatalf("first read = %v, %v", rows, err)
	}

	if err := store.WriteTable(sink, store.TableSkills, []store.SkillRow{
		{Skill: "Go", Occurrences: 1},
		{Skill: "SQL", Occurrences: 2},
	}); err != nil {
		t.Fatal(err)
	}
	// Coarse filesystem timestamps could make a rewrite in the same instant
	// look unchanged; pin a later modtime.
	bump := time.Now().Add(time.Second)
	if err := os.Chtimes(sink.Path(store.TableSkills), bump, bump); err != nil {
		t.Fatal(err)
	}

	rows, err = svc.Skills(ctx, SkillsFilter{})
	if err != nil || len(rows) != 2 {
		t.Fatalf("read after rewrite = %v, %v", rows, err)
	}

	svc.Invalidate()
	rows, err = svc.Skills(ctx, SkillsFilter{})
	if err != nil || len(rows) != 2 {
		t.Fatalf("read after invalidate = %v, %v", rows, err)
	}
}
