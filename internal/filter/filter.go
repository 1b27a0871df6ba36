// Package filter derives the visible subset of a job collection from the
// user's search term and facet selections. All functions are pure.
package filter

import (
	"sort"
	"strings"

	"github.com/engineers4hire/jobdesk/internal/models"
)

// functionFacets is the curated set of tags offered as the role-function
// facet. Other tags still match the category filter, they just are not
// listed as options.
var functionFacets = []string{"Engineering", "Management", "Data", "Leadership"}

// Apply returns the jobs matching every active criterion, preserving the
// input order. Filtering with empty criteria returns an equal collection
// and re-filtering a result with the same criteria is a no-op.
func Apply(jobs []models.Job, c models.FilterCriteria) []models.Job {
	out := make([]models.Job, 0, len(jobs))
	for _, job := range jobs {
		if matches(job, c) {
			out = append(out, job)
		}
	}
	return out
}

func matches(job models.Job, c models.FilterCriteria) bool {
	if active(c.SearchTerm) && !matchesSearch(job, c.SearchTerm) {
		return false
	}
	if active(c.Category) && !anyTagContains(job.Tags, c.Category) {
		return false
	}
	if active(c.Location) && !containsFold(job.Location, c.Location) {
		return false
	}
	if active(c.EmploymentType) && !strings.EqualFold(job.EmploymentType, c.EmploymentType) {
		return false
	}
	if active(c.Source) && !strings.EqualFold(job.Source, c.Source) {
		return false
	}
	return true
}

// matchesSearch scans title, company, tags and the teaser text for a
// case-insensitive substring match.
func matchesSearch(job models.Job, term string) bool {
	return containsFold(job.Title, term) ||
		containsFold(job.Company, term) ||
		anyTagContains(job.Tags, term) ||
		containsFold(job.Snippet, term)
}

func anyTagContains(tags []string, term string) bool {
	for _, tag := range tags {
		if containsFold(tag, term) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// active reports whether a criterion constrains the result. "all" is the
// unconstrained sentinel the facet selectors send.
func active(v string) bool {
	return v != "" && !strings.EqualFold(v, "all")
}

// Options derives the selectable facet values from the full unfiltered
// collection, so narrowing one facet never prunes the option lists of
// the others. Each list is the sorted set of distinct non-empty values.
func Options(jobs []models.Job) models.FacetOptions {
	locations := make(map[string]bool)
	types := make(map[string]bool)
	sources := make(map[string]bool)
	tags := make(map[string]bool)
	for _, job := range jobs {
		if job.Location != "" {
			locations[job.Location] = true
		}
		if job.EmploymentType != "" {
			types[job.EmploymentType] = true
		}
		if job.Source != "" {
			sources[job.Source] = true
		}
		for _, tag := range job.Tags {
			tags[tag] = true
		}
	}

	functions := make([]string, 0, len(functionFacets))
	for _, f := range functionFacets {
		if tags[f] {
			functions = append(functions, f)
		}
	}
	sort.Strings(functions)

	return models.FacetOptions{
		Functions:       functions,
		Locations:       sortedKeys(locations),
		EmploymentTypes: sortedKeys(types),
		Sources:         sortedKeys(sources),
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
