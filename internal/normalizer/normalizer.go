// Package normalizer maps heterogeneous upstream job payloads onto the
// canonical Job schema. Normalization is best-effort: malformed records
// are coerced or dropped, never surfaced as errors.
package normalizer

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/engineers4hire/jobdesk/internal/models"
)

const (
	// snippetLimit caps the teaser text derived from a long description.
	snippetLimit = 200
	// featuredCount marks the first entries of a batch as featured.
	featuredCount = 2
)

// Alias lists per canonical attribute, first match wins.
var (
	idAliases          = []string{"id", "job_id", "_id"}
	titleAliases       = []string{"title", "job_title", "position", "role_title"}
	companyAliases     = []string{"company", "company_name", "employer", "organization"}
	locationAliases    = []string{"location", "job_location", "city"}
	postedAliases      = []string{"posted", "date", "posted_at", "published"}
	linkAliases        = []string{"link", "url", "source_url", "apply_url"}
	snippetAliases     = []string{"snippet", "summary", "teaser"}
	descriptionAliases = []string{"description", "job_description", "details"}
	typeAliases        = []string{"employment_type", "employmentType", "job_type", "type"}
	workModeAliases    = []string{"work_location_type", "workLocationType", "remote_type"}
	validAliases       = []string{"valid_through", "validThrough", "expires"}
)

// Normalizer converts raw upstream payloads into canonical jobs.
type Normalizer struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{log: log}
}

// Normalize unwraps the payload envelope and maps every job-like element
// onto the canonical schema. It never returns an error: unrecognized
// shapes yield an empty slice and non-object elements are dropped, both
// with a diagnostic. The result is never longer than the unwrapped input.
func (n *Normalizer) Normalize(raw any) []models.Job {
	records, ok := unwrap(raw)
	if !ok {
		n.log.Warn("unrecognized job payload shape",
			zap.String("payload_type", fmt.Sprintf("%T", raw)))
		return []models.Job{}
	}

	jobs := make([]models.Job, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		obj, isObj := rec.(map[string]any)
		if !isObj {
			n.log.Warn("dropping non-object job record",
				zap.Int("index", i),
				zap.String("element_type", fmt.Sprintf("%T", rec)))
			continue
		}

		job := buildJob(obj, i)
		if seen[job.ID] {
			// Ids must stay unique within one batch.
			job.ID = fmt.Sprintf("%s-%d", job.ID, i+1)
		}
		seen[job.ID] = true
		job.Featured = len(jobs) < featuredCount
		jobs = append(jobs, job)
	}
	return jobs
}

// unwrap peels the payload down to a flat record sequence. Shapes are
// tried in a fixed priority order: success envelope, bare array, object
// with a data field, single job object, map of job objects. An object
// carrying a "title" key is treated as one job rather than a keyed map;
// that is a heuristic, not a guarantee.
func unwrap(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case map[string]any:
		if _, hasSuccess := v["success"]; hasSuccess {
			data, hasData := v["data"]
			if !hasData {
				return nil, false
			}
			return unwrap(data)
		}
		if data, hasData := v["data"]; hasData {
			return unwrap(data)
		}
		if _, hasTitle := v["title"]; hasTitle {
			return []any{v}, true
		}
		// Keyed map of job objects. The upstream feed stores jobs in a
		// mapping keyed by link; keys are sorted so batch order (and the
		// featured flag) stays deterministic.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, v[k])
		}
		return out, true
	default:
		return nil, false
	}
}

func buildJob(obj map[string]any, pos int) models.Job {
	link := firstString(obj, linkAliases...)
	description := firstString(obj, descriptionAliases...)
	snippet := firstString(obj, snippetAliases...)
	if snippet == "" && description != "" {
		snippet = truncate(description, snippetLimit)
	}

	job := models.Job{
		ID:               jobID(obj, link, pos),
		Title:            withDefault(firstString(obj, titleAliases...), "Untitled Position"),
		Company:          withDefault(firstString(obj, companyAliases...), "Unknown Company"),
		Location:         withDefault(firstString(obj, locationAliases...), "Location not specified"),
		Posted:           withDefault(firstString(obj, postedAliases...), "Recently"),
		Source:           jobSource(obj, link),
		Link:             withDefault(link, "#"),
		Snippet:          snippet,
		Description:      description,
		EmploymentType:   employmentType(obj, snippet),
		WorkLocationType: firstString(obj, workModeAliases...),
		ValidThrough:     firstString(obj, validAliases...),
	}
	job.Type = job.EmploymentType
	job.Tags = deriveTags(job.Title, job.Snippet)
	return job
}

// jobID prefers an explicit identifier, then a digest of the posting
// link (stable across fetches, which keeps notes attached), then a
// positional placeholder.
func jobID(obj map[string]any, link string, pos int) string {
	if id := firstString(obj, idAliases...); id != "" {
		return id
	}
	if link != "" {
		sum := sha1.Sum([]byte(link))
		return "job-" + hex.EncodeToString(sum[:])[:12]
	}
	return fmt.Sprintf("job-%d", pos+1)
}

// jobSource derives the originating site from the posting URL hostname,
// falling back to a declared source field, then "Direct".
func jobSource(obj map[string]any, link string) string {
	for _, candidate := range []string{link, firstString(obj, "url"), firstString(obj, "source_url")} {
		if host := hostname(candidate); host != "" {
			return host
		}
	}
	if src := firstString(obj, "source"); src != "" {
		return src
	}
	return "Direct"
}

func hostname(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// employmentType canonicalizes loosely: an explicit field wins, then a
// keyword scan of the teaser text, then the FULL_TIME default.
func employmentType(obj map[string]any, snippet string) string {
	if t := firstString(obj, typeAliases...); t != "" {
		return t
	}
	lower := strings.ToLower(snippet)
	switch {
	case strings.Contains(lower, "part time") || strings.Contains(lower, "part-time"):
		return "PART_TIME"
	case strings.Contains(lower, "contract"):
		return "CONTRACT"
	default:
		return "FULL_TIME"
	}
}

// firstString returns the first alias present on the record, coerced to
// a trimmed string. Numbers are formatted; other value kinds are skipped.
func firstString(obj map[string]any, aliases ...string) string {
	for _, key := range aliases {
		v, ok := obj[key]
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		}
	}
	return ""
}

func withDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
