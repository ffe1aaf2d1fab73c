package dto

// SkillResponse is one aggregated skill mention per occupation group.
type SkillResponse struct {
	SSYKCode        string  `json:"ssyk_code"`
	OccupationLabel string  `json:"occupation_label"`
	Skill           string  `json:"skill"`
	SkillType       string  `json:"skill_type"`
	Occurrences     int64   `json:"occurrences"`
	MeanProbability float64 `json:"mean_probability"`
}
