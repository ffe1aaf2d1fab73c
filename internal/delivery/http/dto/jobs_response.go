package dto

// JobListResponse is the compact ad shape for list endpoints; the full
// description only ships on the detail endpoint.
type JobListResponse struct {
	ID                string `json:"id"`
	Headline          string `json:"headline"`
	SSYKCode          string `json:"ssyk_code"`
	OccupationLabel   string `json:"occupation_label"`
	EmployerName      string `json:"employer_name"`
	Region            string `json:"region"`
	Municipality      string `json:"municipality"`
	PublishedDate     string `json:"published_date"`
	NumberOfVacancies int32  `json:"number_of_vacancies"`
	RemoteWork        bool   `json:"remote_work"`
}

// JobDetailResponse is the full ad record.
type JobDetailResponse struct {
	JobListResponse
	OccupationConceptID string `json:"occupation_concept_id"`
	EmployerOrgNumber   string `json:"employer_org_number"`
	MunicipalityCode    string `json:"municipality_code"`
	RegionCode          string `json:"region_code"`
	LastApplicationDate string `json:"last_application_date"`
	EmploymentType      string `json:"employment_type"`
	Duration            string `json:"duration"`
	WorkingHoursType    string `json:"working_hours_type"`
	DescriptionText     string `json:"description_text"`
}

// JobsAggregatedResponse is one ad-count bucket.
type JobsAggregatedResponse struct {
	SSYKCode  string `json:"ssyk_code"`
	Region    string `json:"region"`
	Period    string `json:"period"`
	AdCount   int64  `json:"ad_count"`
	Vacancies int64  `json:"vacancies"`
}

// TopEmployerResponse is one ranked employer.
type TopEmployerResponse struct {
	Employer  string `json:"employer"`
	Region    string `json:"region"`
	AdCount   int64  `json:"ad_count"`
	Vacancies int64  `json:"vacancies"`
}
