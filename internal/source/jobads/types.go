// Package jobads fetches historical job advertisements and occupation
// taxonomy reference data from the public employment service APIs.
package jobads

import (
	"encoding/json"
	"strconv"
	"strings"
)

// JobAd is the normalized detail record for one posting. Ads are created
// once per fetch cycle and never updated; the next full run supersedes them.
type JobAd struct {
	ID                  string
	Headline            string
	SSYKCode            string
	OccupationLabel     string
	OccupationConceptID string
	EmployerName        string
	EmployerOrgNumber   string
	Region              string
	RegionCode          string
	Municipality        string
	MunicipalityCode    string
	PublishedDate       string
	LastApplicationDate string
	NumberOfVacancies   int
	EmploymentType      string
	Duration            string
	WorkingHoursType    string
	RemoteWork          bool
	DescriptionText     string
}

// adID accepts both identifier encodings the historical API has used:
// a bare number and a string token. Only uniqueness matters downstream, so
// both normalize to their text form.
type adID string

func (id *adID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = adID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = adID(n.String())
	return nil
}

// rawAd mirrors the search-hit shape of the historical ads API.
type rawAd struct {
	ID       adID   `json:"id"`
	Headline string `json:"headline"`

	Occupation *labeledConcept `json:"occupation"`
	Employer   *struct {
		Name               string `json:"name"`
		OrganizationNumber string `json:"organization_number"`
	} `json:"employer"`
	WorkplaceAddress *struct {
		Region           string `json:"region"`
		RegionCode       string `json:"region_code"`
		Municipality     string `json:"municipality"`
		MunicipalityCode string `json:"municipality_code"`
	} `json:"workplace_address"`
	Description *struct {
		Text string `json:"text"`
	} `json:"description"`

	PublicationDate     string          `json:"publication_date"`
	ApplicationDeadline string          `json:"application_deadline"`
	NumberOfVacancies   json.RawMessage `json:"number_of_vacancies"`
	EmploymentType      *labeledConcept `json:"employment_type"`
	Duration            *labeledConcept `json:"duration"`
	WorkingHoursType    *labeledConcept `json:"working_hours_type"`
	RemoteWork          bool            `json:"remote_work"`
}

type labeledConcept struct {
	ConceptID string `json:"concept_id"`
	Label     string `json:"label"`
}

// normalize flattens a raw search hit into a JobAd. The vacancy count
// defaults to 1 when the field is missing, unparseable or below 1.
func (r rawAd) normalize(ssykCode string) JobAd {
	ad := JobAd{
		ID:                  string(r.ID),
		Headline:            r.Headline,
		SSYKCode:            ssykCode,
		PublishedDate:       r.PublicationDate,
		LastApplicationDate: r.ApplicationDeadline,
		NumberOfVacancies:   parseVacancies(r.NumberOfVacancies),
		RemoteWork:          r.RemoteWork,
	}

	if r.Occupation != nil {
		ad.OccupationLabel = r.Occupation.Label
		ad.OccupationConceptID = r.Occupation.ConceptID
	}
	if r.Employer != nil {
		ad.EmployerName = r.Employer.Name
		ad.EmployerOrgNumber = r.Employer.OrganizationNumber
	}
	if r.WorkplaceAddress != nil {
		ad.Region = r.WorkplaceAddress.Region
		ad.RegionCode = r.WorkplaceAddress.RegionCode
		ad.Municipality = r.WorkplaceAddress.Municipality
		ad.MunicipalityCode = r.WorkplaceAddress.MunicipalityCode
	}
	if r.Description != nil {
		ad.DescriptionText = r.Description.Text
	}
	if r.EmploymentType != nil {
		ad.EmploymentType = r.EmploymentType.Label
	}
	if r.Duration != nil {
		ad.Duration = r.Duration.Label
	}
	if r.WorkingHoursType != nil {
		ad.WorkingHoursType = r.WorkingHoursType.Label
	}
	return ad
}

func parseVacancies(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 1
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if n < 1 {
			return 1
		}
		return n
	}

	// some payload vintages carry the count as a string
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n >= 1 {
			return n
		}
	}
	return 1
}

// PublishedYear extracts the year from the published timestamp, empty when
// the timestamp is absent or too short.
func (a JobAd) PublishedYear() string {
	if len(a.PublishedDate) < 4 {
		return ""
	}
	return a.PublishedDate[:4]
}

// PublishedMonth extracts the month ("01".."12"), empty when unavailable.
func (a JobAd) PublishedMonth() string {
	if len(a.PublishedDate) < 7 {
		return ""
	}
	return a.PublishedDate[5:7]
}

// PublishedYearMonth extracts "YYYY-MM", empty when unavailable.
func (a JobAd) PublishedYearMonth() string {
	if len(a.PublishedDate) < 7 {
		return ""
	}
	return a.PublishedDate[:7]
}
