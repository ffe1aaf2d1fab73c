package enrich

import (
	"sort"

	"arbetsdata/internal/source/jobads"
)

// SkillCount is one row of the skills table: how often a term is mentioned
// within an occupation group, and the mean prediction confidence. The count
// is per mention, not per ad, so it shares a denominator with the mean.
type SkillCount struct {
	SSYKCode        string
	OccupationLabel string
	Skill           string
	SkillType       string
	Occurrences     int
	MeanProbability float64
}

// AggregateSkills joins mentions back to their ads for occupation context
// and counts mention rows per (occupation, term, type). Mentions whose ad
// is unknown keep an empty occupation code rather than being dropped.
func AggregateSkills(mentions []Mention, ads []jobads.JobAd) []SkillCount {
	byID := make(map[string]jobads.JobAd, len(ads))
	for _, ad := range ads {
		byID[ad.ID] = ad
	}

	type key struct{ ssyk, label, skill, skillType string }
	type tally struct {
		probSum float64
		probN   int
	}
	tallies := make(map[key]*tally)

	for _, m := range mentions {
		var ssyk, label string
		if ad, ok := byID[m.AdID]; ok {
			ssyk = ad.SSYKCode
			label = ad.OccupationLabel
		}

		k := key{ssyk: ssyk, label: label, skill: m.Label, skillType: m.Type}
		t, ok := tallies[k]
		if !ok {
			t = &tally{}
			tallies[k] = t
		}
		t.probSum += m.Probability
		t.probN++
	}

	out := make([]SkillCount, 0, len(tallies))
	for k, t := range tallies {
		out = append(out, SkillCount{
			SSYKCode:        k.ssyk,
			OccupationLabel: k.label,
			Skill:           k.skill,
			SkillType:       k.skillType,
			Occurrences:     t.probN,
			MeanProbability: t.probSum / float64(t.probN),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SSYKCode != b.SSYKCode {
			return a.SSYKCode < b.SSYKCode
		}
		if a.Occurrences != b.Occurrences {
			return a.Occurrences > b.Occurrences
		}
		if a.Skill != b.Skill {
			return a.Skill < b.Skill
		}
		return a.SkillType < b.SkillType
	})
	return out
}
