// Package model defines the canonical types shared across the pipeline.
package model

import "time"

// Source identifies where a raw record came from.
type Source string

const (
	SourceRealAPI   Source = "real-api"
	SourceSynthetic Source = "synthetic"
)

// ContractType is the normalized contract category.
type ContractType string

const (
	ContractFullTime   ContractType = "full-time"
	ContractPartTime   ContractType = "part-time"
	ContractContract   ContractType = "contract"
	ContractInternship ContractType = "internship"
	ContractUnknown    ContractType = "unknown"
)

// RemoteMode is the normalized working-location category.
type RemoteMode string

const (
	RemoteOnsite  RemoteMode = "onsite"
	RemoteRemote  RemoteMode = "remote"
	RemoteHybrid  RemoteMode = "hybrid"
	RemoteUnknown RemoteMode = "unknown"
)

// ExperienceLevel is the bucketed seniority signal.
type ExperienceLevel string

const (
	ExperienceJunior  ExperienceLevel = "junior"
	ExperienceMid     ExperienceLevel = "mid"
	ExperienceSenior  ExperienceLevel = "senior"
	ExperienceUnknown ExperienceLevel = "unknown"
)

// JobRecord is one normalized job listing. Immutable once placed in the
// processed dataset; the dataset is replaced wholesale on each run.
//
// Salaries are gross annual EUR. SalaryMin <= SalaryMax whenever both
// are present.
type JobRecord struct {
	Title        string          `json:"title" csv:"title"`
	Company      string          `json:"company" csv:"company"`
	Location     string          `json:"location" csv:"location"`
	LocationCat  string          `json:"location_category" csv:"location_category"`
	SalaryMin    *float64        `json:"salary_min" csv:"salary_min"`
	SalaryMax    *float64        `json:"salary_max" csv:"salary_max"`
	Contract     ContractType    `json:"contract_type" csv:"contract_type"`
	Remote       RemoteMode      `json:"remote_mode" csv:"remote_mode"`
	Experience   ExperienceLevel `json:"experience_level" csv:"experience_level"`
	ExpYears     *float64        `json:"experience_years" csv:"experience_years"`
	Technologies TechSet         `json:"technologies" csv:"technologies"`
	Source       Source          `json:"source" csv:"source"`
	PostedDate   *time.Time      `json:"posted_date" csv:"posted_date"`
}

// HasSalary reports whether at least one salary bound is present.
func (r JobRecord) HasSalary() bool {
	return r.SalaryMin != nil || r.SalaryMax != nil
}

// SalaryMid returns the salary label: the midpoint of both bounds, or
// the single present bound. ok is false when neither bound is present.
func (r JobRecord) SalaryMid() (mid float64, ok bool) {
	switch {
	case r.SalaryMin != nil && r.SalaryMax != nil:
		return (*r.SalaryMin + *r.SalaryMax) / 2, true
	case r.SalaryMin != nil:
		return *r.SalaryMin, true
	case r.SalaryMax != nil:
		return *r.SalaryMax, true
	default:
		return 0, false
	}
}

// HasTech reports whether the record mentions the given technology.
func (r JobRecord) HasTech(tech string) bool {
	for _, t := range r.Technologies {
		if t == tech {
			return true
		}
	}
	return false
}

// ExperienceProxy returns a numeric years-of-experience proxy for the
// record: the parsed years requirement when present, otherwise a
// per-bucket default. ok is false for the unknown bucket with no
// parsed years.
func (r JobRecord) ExperienceProxy() (years float64, ok bool) {
	if r.ExpYears != nil {
		return *r.ExpYears, true
	}
	switch r.Experience {
	case ExperienceJunior:
		return 1, true
	case ExperienceMid:
		return 3, true
	case ExperienceSenior:
		return 6, true
	default:
		return 0, false
	}
}
