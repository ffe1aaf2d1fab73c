// Package dataaccess serves read queries over the processed parquet tables.
// Tables load lazily on first use and stay cached until the file on disk
// changes, so a pipeline run picks up in the API without a restart.
package dataaccess

import (
	"context"
	"errors"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"arbetsdata/internal/aggregate"
	"arbetsdata/internal/store"
	"arbetsdata/internal/taxonomy"
)

// ErrNotFound marks lookups for rows that do not exist.
var ErrNotFound = errors.New("not found")

const (
	defaultLimit = 100
	maxLimit     = 1000

	defaultSkillLimit = 50
	maxSkillLimit     = 500
)

type Service struct {
	sink   *store.Sink
	logger *log.Logger

	mu     sync.Mutex
	tables map[string]cachedTable
}

// cachedTable holds decoded rows together with the parquet file's modtime at
// read time, so a rewritten file is reread on the next query.
type cachedTable struct {
	rows    any
	modTime time.Time
}

func NewService(sink *store.Sink, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		sink:   sink,
		logger: logger,
		tables: make(map[string]cachedTable),
	}
}

// Invalidate drops the cached tables so the next query rereads from disk.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string]cachedTable)
}

func tableOf[T any](s *Service, name string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var modTime time.Time
	if fi, err := os.Stat(s.sink.Path(name)); err == nil {
		modTime = fi.ModTime()
	}
	if c, ok := s.tables[name]; ok && c.modTime.Equal(modTime) {
		return c.rows.([]T), nil
	}

	rows, err := store.ReadTable[T](s.sink, name)
	if err != nil {
		return nil, err
	}
	s.tables[name] = cachedTable{rows: rows, modTime: modTime}
	return rows, nil
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// splitCodes parses a comma-separated occupation code list; matching is
// OR-semantics across the codes.
func splitCodes(codes string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, c := range strings.Split(codes, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			out[c] = struct{}{}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func matchRegion(filter, region, regionCode string) bool {
	if filter == "" {
		return true
	}
	f := strings.ToLower(strings.TrimSpace(filter))
	if strings.EqualFold(f, regionCode) {
		return true
	}
	return strings.Contains(strings.ToLower(region), f)
}

// IncomeFilter narrows income queries. Occupations is a comma-separated
// SSYK code list; Region matches the region name case-insensitively as a
// substring, or the region code exactly.
type IncomeFilter struct {
	Occupations string
	Region      string
	Gender      string
	Year        string
	Limit       int
}

func (s *Service) Income(ctx context.Context, f IncomeFilter) ([]store.IncomeRow, error) {
	rows, err := tableOf[store.IncomeRow](s, store.TableIncome)
	if err != nil {
		return nil, err
	}

	codes := splitCodes(f.Occupations)
	limit := clampLimit(f.Limit, defaultLimit, maxLimit)

	out := make([]store.IncomeRow, 0, limit)
	for _, r := range rows {
		if codes != nil {
			if _, ok := codes[r.SSYKCode]; !ok {
				continue
			}
		}
		if !matchRegion(f.Region, r.Region, r.RegionCode) {
			continue
		}
		if f.Gender != "" && r.GenderCode != f.Gender {
			continue
		}
		if f.Year != "" && r.Year != f.Year {
			continue
		}
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Service) Dispersion(ctx context.Context, f IncomeFilter) ([]store.DispersionRow, error) {
	rows, err := tableOf[store.DispersionRow](s, store.TableIncomeDispersion)
	if err != nil {
		return nil, err
	}

	codes := splitCodes(f.Occupations)
	limit := clampLimit(f.Limit, defaultLimit, maxLimit)

	out := make([]store.DispersionRow, 0, limit)
	for _, r := range rows {
		if codes != nil {
			if _, ok := codes[r.SSYKCode]; !ok {
				continue
			}
		}
		if f.Gender != "" && r.GenderCode != f.Gender {
			continue
		}
		if f.Year != "" && r.Year != f.Year {
			continue
		}
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Service) IncomeByAge(ctx context.Context, f IncomeFilter) ([]store.IncomeByAgeRow, error) {
	rows, err := tableOf[store.IncomeByAgeRow](s, store.TableIncomeByAge)
	if err != nil {
		return nil, err
	}

	codes := splitCodes(f.Occupations)
	limit := clampLimit(f.Limit, defaultLimit, maxLimit)

	out := make([]store.IncomeByAgeRow, 0, limit)
	for _, r := range rows {
		if codes != nil {
			if _, ok := codes[r.SSYKCode]; !ok {
				continue
			}
		}
		if f.Gender != "" && r.GenderCode != f.Gender {
			continue
		}
		if f.Year != "" && r.Year != f.Year {
			continue
		}
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Service) IncomeByEducation(ctx context.Context, f IncomeFilter) ([]store.IncomeByEducationRow, error) {
	rows, err := tableOf[store.IncomeByEducationRow](s, store.TableIncomeByEducation)
	if err != nil {
		return nil, err
	}

	codes := splitCodes(f.Occupations)
	limit := clampLimit(f.Limit, defaultLimit, maxLimit)

	out := make([]store.IncomeByEducationRow, 0, limit)
	for _, r := range rows {
		if codes != nil {
			if _, ok := codes[r.SSYKCode]; !ok {
				continue
			}
		}
		if f.Gender != "" && r.GenderCode != f.Gender {
			continue
		}
		if f.Year != "" && r.Year != f.Year {
			continue
		}
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// JobsFilter narrows job ad queries.
type JobsFilter struct {
	Occupations string
	Region      string
	Employer    string
	Year        string
	Limit       int
}

func (s *Service) Jobs(ctx context.Context, f JobsFilter) ([]store.JobAdRow, error) {
	rows, err := tableOf[store.JobAdRow](s, store.TableJobsDetail)
	if err != nil {
		return nil, err
	}

	codes := splitCodes(f.Occupations)
	limit := clampLimit(f.Limit, defaultLimit, maxLimit)

	out := make([]store.JobAdRow, 0, limit)
	for _, r := range rows {
		if codes != nil {
			if _, ok := codes[r.SSYKCode]; !ok {
				continue
			}
		}
		if !matchRegion(f.Region, r.Region, r.RegionCode) {
			continue
		}
		if f.Employer != "" && !strings.Contains(strings.ToLower(r.EmployerName), strings.ToLower(f.Employer)) {
			continue
		}
		if f.Year != "" && !strings.HasPrefix(r.PublishedDate, f.Year) {
			continue
		}
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Service) JobByID(ctx context.Context, id string) (store.JobAdRow, error) {
	rows, err := tableOf[store.JobAdRow](s, store.TableJobsDetail)
	if err != nil {
		return store.JobAdRow{}, err
	}
	for _, r := range rows {
		if r.ID == id {
			return r, nil
		}
	}
	return store.JobAdRow{}, ErrNotFound
}

func (s *Service) JobsAggregated(ctx context.Context, f JobsFilter) ([]store.JobsAggregatedRow, error) {
	rows, err := tableOf[store.JobsAggregatedRow](s, store.TableJobsAggregated)
	if err != nil {
		return nil, err
	}

	codes := splitCodes(f.Occupations)
	limit := clampLimit(f.Limit, defaultLimit, maxLimit)

	out := make([]store.JobsAggregatedRow, 0, limit)
	for _, r := range rows {
		if codes != nil {
			if _, ok := codes[r.SSYKCode]; !ok {
				continue
			}
		}
		if !matchRegion(f.Region, r.Region, "") {
			continue
		}
		if f.Year != "" && !strings.HasPrefix(r.Period, f.Year) {
			continue
		}
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Service) TopEmployers(ctx context.Context, limit int) ([]store.TopEmployerRow, error) {
	rows, err := tableOf[store.TopEmployerRow](s, store.TableTopEmployers)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit, defaultLimit, maxLimit)
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

// SkillsFilter narrows skill queries; SkillType selects skill, trait or
// occupation mentions.
type SkillsFilter struct {
	Occupations string
	SkillType   string
	Limit       int
}

func (s *Service) Skills(ctx context.Context, f SkillsFilter) ([]store.SkillRow, error) {
	rows, err := tableOf[store.SkillRow](s, store.TableSkills)
	if err != nil {
		return nil, err
	}

	codes := splitCodes(f.Occupations)
	limit := clampLimit(f.Limit, defaultSkillLimit, maxSkillLimit)

	out := make([]store.SkillRow, 0, limit)
	for _, r := range rows {
		if codes != nil {
			if _, ok := codes[r.SSYKCode]; !ok {
				continue
			}
		}
		if f.SkillType != "" && !strings.EqualFold(r.SkillType, f.SkillType) {
			continue
		}
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Occupation is one entry of the occupations listing: the code, its label,
// and how many ads and income rows reference it.
type Occupation struct {
	SSYKCode  string
	Label     string
	AdCount   int
	IncomeObs int
}

func (s *Service) Occupations(ctx context.Context) ([]Occupation, error) {
	income, err := tableOf[store.IncomeRow](s, store.TableIncome)
	if err != nil {
		return nil, err
	}
	jobs, err := tableOf[store.JobAdRow](s, store.TableJobsDetail)
	if err != nil {
		return nil, err
	}

	labels := taxonomy.Occupations()
	byCode := make(map[string]*Occupation)
	var order []string

	touch := func(code, label string) *Occupation {
		o, ok := byCode[code]
		if !ok {
			if label == "" {
				label = labels.Resolve(code)
			}
			o = &Occupation{SSYKCode: code, Label: label}
			byCode[code] = o
			order = append(order, code)
		}
		return o
	}

	for _, r := range income {
		if r.SSYKCode == "" {
			continue
		}
		touch(r.SSYKCode, r.Occupation).IncomeObs++
	}
	for _, r := range jobs {
		if r.SSYKCode == "" {
			continue
		}
		touch(r.SSYKCode, r.OccupationLabel).AdCount++
	}

	sort.Strings(order)
	out := make([]Occupation, 0, len(order))
	for _, code := range order {
		out = append(out, *byCode[code])
	}
	return out, nil
}

// Region is one entry of the regions listing.
type Region struct {
	Code    string
	Name    string
	AdCount int
}

func (s *Service) Regions(ctx context.Context) ([]Region, error) {
	income, err := tableOf[store.IncomeRow](s, store.TableIncome)
	if err != nil {
		return nil, err
	}
	jobs, err := tableOf[store.JobAdRow](s, store.TableJobsDetail)
	if err != nil {
		return nil, err
	}

	nuts := taxonomy.Regions()
	byCode := make(map[string]*Region)
	var order []string

	for _, r := range income {
		if r.RegionCode == "" {
			continue
		}
		if _, ok := byCode[r.RegionCode]; !ok {
			name := r.Region
			if name == "" {
				name = nuts.Resolve(r.RegionCode)
			}
			byCode[r.RegionCode] = &Region{Code: r.RegionCode, Name: name}
			order = append(order, r.RegionCode)
		}
	}
	for _, r := range jobs {
		name := strings.TrimSpace(r.Region)
		if name == "" {
			continue
		}
		code := r.RegionCode
		if code == "" {
			code = name
		}
		reg, ok := byCode[code]
		if !ok {
			reg = &Region{Code: code, Name: name}
			byCode[code] = reg
			order = append(order, code)
		}
		reg.AdCount++
	}

	sort.Strings(order)
	out := make([]Region, 0, len(order))
	for _, code := range order {
		out = append(out, *byCode[code])
	}
	return out, nil
}

// DatasetStats summarizes what the current dataset holds.
type DatasetStats struct {
	TableRows       map[string]int
	Years           []string
	MedianSalary    aggregate.Summary
	DistinctSkills  int
	UniqueEmployers int
	TopRegions      []string
}

func (s *Service) Stats(ctx context.Context) (DatasetStats, error) {
	stats := DatasetStats{TableRows: make(map[string]int)}

	income, err := tableOf[store.IncomeRow](s, store.TableIncome)
	if err != nil {
		return stats, err
	}
	dispersion, err := tableOf[store.DispersionRow](s, store.TableIncomeDispersion)
	if err != nil {
		return stats, err
	}
	jobs, err := tableOf[store.JobAdRow](s, store.TableJobsDetail)
	if err != nil {
		return stats, err
	}
	jobsAgg, err := tableOf[store.JobsAggregatedRow](s, store.TableJobsAggregated)
	if err != nil {
		return stats, err
	}
	skills, err := tableOf[store.SkillRow](s, store.TableSkills)
	if err != nil {
		return stats, err
	}

	stats.TableRows[store.TableIncome] = len(income)
	stats.TableRows[store.TableIncomeDispersion] = len(dispersion)
	stats.TableRows[store.TableJobsDetail] = len(jobs)
	stats.TableRows[store.TableJobsAggregated] = len(jobsAgg)
	stats.TableRows[store.TableSkills] = len(skills)

	yearSet := make(map[string]struct{})
	salaries := make([]*float64, 0, len(income))
	for _, r := range income {
		if r.Year != "" {
			yearSet[r.Year] = struct{}{}
		}
		salaries = append(salaries, r.MonthlySalary)
	}
	for year := range yearSet {
		stats.Years = append(stats.Years, year)
	}
	sort.Strings(stats.Years)
	stats.MedianSalary = aggregate.SummaryStats(salaries)

	skillSet := make(map[string]struct{})
	for _, r := range skills {
		skillSet[r.Skill] = struct{}{}
	}
	stats.DistinctSkills = len(skillSet)

	employerSet := make(map[string]struct{})
	regionCount := make(map[string]int)
	for _, r := range jobs {
		if r.EmployerName != "" {
			employerSet[r.EmployerName] = struct{}{}
		}
		if r.Region != "" {
			regionCount[r.Region]++
		}
	}
	stats.UniqueEmployers = len(employerSet)
	stats.TopRegions = topKeys(regionCount, 5)

	return stats, nil
}

// topKeys ranks map keys by count descending, ties alphabetically.
func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
