// Package aggregate turns detail-level ads and income observations into the
// summary tables the query layer serves.
package aggregate

import (
	"log"
	"sort"
	"strings"

	"arbetsdata/internal/source/jobads"
)

// Period selects the time bucket for ad aggregation.
type Period string

const (
	ByYear      Period = "year"
	ByMonth     Period = "month"
	ByYearMonth Period = "year_month"
)

func (p Period) bucket(ad jobads.JobAd) string {
	switch p {
	case ByMonth:
		return ad.PublishedMonth()
	case ByYearMonth:
		return ad.PublishedYearMonth()
	default:
		return ad.PublishedYear()
	}
}

// RegionBucket is one row of the jobs_aggregated table: ad and vacancy
// counts per occupation, region and time bucket.
type RegionBucket struct {
	SSYKCode  string
	Region    string
	Period    string
	AdCount   int
	Vacancies int
}

// JobsByRegion groups ads by occupation, region and time bucket. Ads with
// no usable publication timestamp are excluded rather than grouped under an
// empty bucket; a missing region groups under "unknown" so national totals
// still add up.
func JobsByRegion(ads []jobads.JobAd, period Period, logger *log.Logger) []RegionBucket {
	if logger == nil {
		logger = log.Default()
	}

	type key struct{ ssyk, region, bucket string }
	var order []key
	counts := make(map[key]*RegionBucket)

	dropped := 0
	for _, ad := range ads {
		bucket := period.bucket(ad)
		if bucket == "" {
			dropped++
			continue
		}
		region := strings.TrimSpace(ad.Region)
		if region == "" {
			region = "unknown"
		}

		k := key{ssyk: ad.SSYKCode, region: region, bucket: bucket}
		row, ok := counts[k]
		if !ok {
			row = &RegionBucket{SSYKCode: k.ssyk, Region: k.region, Period: k.bucket}
			counts[k] = row
			order = append(order, k)
		}
		row.AdCount++
		row.Vacancies += ad.NumberOfVacancies
	}
	if dropped > 0 {
		logger.Printf("aggregate: excluded %d ads without a publication timestamp", dropped)
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.ssyk != b.ssyk {
			return a.ssyk < b.ssyk
		}
		if a.bucket != b.bucket {
			return a.bucket < b.bucket
		}
		return a.region < b.region
	})

	out := make([]RegionBucket, 0, len(order))
	for _, k := range order {
		out = append(out, *counts[k])
	}
	return out
}

// EmployerCount is one row of the top-employers table. Region is the
// employer's modal ad region; ties keep the first region seen.
type EmployerCount struct {
	Employer  string
	Region    string
	AdCount   int
	Vacancies int
}

// TopEmployers ranks employers by ad count, descending; ties break on first
// appearance in the input. Ads without an employer name are skipped.
func TopEmployers(ads []jobads.JobAd, limit int) []EmployerCount {
	type tally struct {
		row         EmployerCount
		firstSeen   int
		regionOrder []string
		regionCount map[string]int
	}

	var order []string
	tallies := make(map[string]*tally)

	for i, ad := range ads {
		name := strings.TrimSpace(ad.EmployerName)
		if name == "" {
			continue
		}

		t, ok := tallies[name]
		if !ok {
			t = &tally{
				row:         EmployerCount{Employer: name},
				firstSeen:   i,
				regionCount: make(map[string]int),
			}
			tallies[name] = t
			order = append(order, name)
		}
		t.row.AdCount++
		t.row.Vacancies += ad.NumberOfVacancies

		if region := strings.TrimSpace(ad.Region); region != "" {
			if _, seen := t.regionCount[region]; !seen {
				t.regionOrder = append(t.regionOrder, region)
			}
			t.regionCount[region]++
		}
	}

	for _, name := range order {
		t := tallies[name]
		best := ""
		bestCount := 0
		for _, region := range t.regionOrder {
			if t.regionCount[region] > bestCount {
				best = region
				bestCount = t.regionCount[region]
			}
		}
		t.row.Region = best
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := tallies[order[i]], tallies[order[j]]
		if a.row.AdCount != b.row.AdCount {
			return a.row.AdCount > b.row.AdCount
		}
		return a.firstSeen < b.firstSeen
	})

	if limit > 0 && limit < len(order) {
		order = order[:limit]
	}
	out := make([]EmployerCount, 0, len(order))
	for _, name := range order {
		out = append(out, tallies[name].row)
	}
	return out
}
