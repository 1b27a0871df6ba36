package models

import (
	"time"
)

// Job is the canonical job record used everywhere inside the service.
// Upstream field naming varies per source; the normalizer maps whatever
// arrives onto this schema and fills the documented defaults.
type Job struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	Posted           string   `json:"posted"`
	Source           string   `json:"source"`
	Link             string   `json:"link"`
	Snippet          string   `json:"snippet"`
	Description      string   `json:"description"`
	EmploymentType   string   `json:"employment_type"`
	WorkLocationType string   `json:"work_location_type,omitempty"`
	ValidThrough     string   `json:"valid_through,omitempty"`
	Tags             []string `json:"tags"`
	Featured         bool     `json:"featured"`
	// Type mirrors EmploymentType for older table variants that still
	// read the short field name.
	Type string `json:"type"`
}

// HasLink reports whether the job carries a usable application URL.
// Normalization falls back to "#" when no link field was present.
func (j Job) HasLink() bool {
	return j.Link != "" && j.Link != "#"
}

// ApplicationNote holds the user's cover letter and notes for one job.
// Keyed by the canonical job id, which is stable across fetches when
// derived from the posting link. Notes outlive the job list itself.
type ApplicationNote struct {
	JobID       string    `gorm:"primaryKey" json:"job_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CoverLetter string    `gorm:"type:text" json:"cover_letter"`
	Notes       string    `gorm:"type:text" json:"notes"`
}

// SessionEntry is a key/value row for persisted session state, currently
// only the auth token.
type SessionEntry struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FilterCriteria carries the user's search term and facet selections.
// An empty value or the literal "all" means the facet is unconstrained.
type FilterCriteria struct {
	SearchTerm     string
	Category       string
	Location       string
	EmploymentType string
	Source         string
}

// FacetOptions lists the selectable values per filterable dimension,
// always derived from the full unfiltered collection.
type FacetOptions struct {
	Functions       []string `json:"functions"`
	Locations       []string `json:"locations"`
	EmploymentTypes []string `json:"employment_types"`
	Sources         []string `json:"sources"`
}
