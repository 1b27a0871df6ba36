package normalizer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestNormalizeShapes(t *testing.T) {
	n := New(nil)

	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{
			name:    "success envelope",
			payload: `{"success": true, "data": [{"title": "A"}, {"title": "B"}]}`,
			want:    2,
		},
		{
			name:    "bare array",
			payload: `[{"title": "A"}, {"title": "B"}, {"title": "C"}]`,
			want:    3,
		},
		{
			name:    "object with data field",
			payload: `{"data": [{"title": "A"}]}`,
			want:    1,
		},
		{
			name:    "single job object",
			payload: `{"title": "Solo Role", "company": "Acme"}`,
			want:    1,
		},
		{
			name: "keyed map of jobs",
			payload: `{
				"https://a.example.com/1": {"title": "A", "link": "https://a.example.com/1"},
				"https://b.example.com/2": {"title": "B", "link": "https://b.example.com/2"}
			}`,
			want: 2,
		},
		{
			name:    "envelope wrapping keyed map",
			payload: `{"success": true, "data": {"k1": {"title": "A"}, "k2": {"title": "B"}}}`,
			want:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := n.Normalize(decode(t, tt.payload))
			assert.Len(t, jobs, tt.want)
		})
	}
}

func TestNormalizeMalformedInputs(t *testing.T) {
	n := New(nil)

	tests := []struct {
		name    string
		payload any
	}{
		{name: "nil", payload: nil},
		{name: "string", payload: "not a payload"},
		{name: "number", payload: float64(42)},
		{name: "bool", payload: true},
		{name: "envelope without data", payload: decode(t, `{"success": false, "message": "nope"}`)},
		{name: "data field not a sequence", payload: decode(t, `{"data": "oops"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := n.Normalize(tt.payload)
			require.NotNil(t, jobs)
			assert.Empty(t, jobs)
		})
	}
}

func TestNormalizeDropsNonObjectElements(t *testing.T) {
	n := New(nil)
	jobs := n.Normalize(decode(t, `[{"title": "Keep"}, "drop me", 7, {"title": "Also keep"}]`))
	require.Len(t, jobs, 2)
	assert.Equal(t, "Keep", jobs[0].Title)
	assert.Equal(t, "Also keep", jobs[1].Title)
}

func TestNormalizeAliasMapping(t *testing.T) {
	n := New(nil)
	jobs := n.Normalize(decode(t, `[{
		"job_title": "X",
		"company_name": "Y",
		"url": "https://sub.example.com/job"
	}]`))
	require.Len(t, jobs, 1)
	assert.Equal(t, "X", jobs[0].Title)
	assert.Equal(t, "Y", jobs[0].Company)
	assert.Equal(t, "sub.example.com", jobs[0].Source)
	assert.Equal(t, "https://sub.example.com/job", jobs[0].Link)
}

func TestNormalizeDefaults(t *testing.T) {
	n := New(nil)
	jobs := n.Normalize(decode(t, `[{}]`))
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, "Untitled Position", job.Title)
	assert.Equal(t, "Unknown Company", job.Company)
	assert.Equal(t, "Location not specified", job.Location)
	assert.Equal(t, "Recently", job.Posted)
	assert.Equal(t, "Direct", job.Source)
	assert.Equal(t, "#", job.Link)
	assert.False(t, job.HasLink())
	assert.Equal(t, "FULL_TIME", job.EmploymentType)
	assert.Equal(t, job.EmploymentType, job.Type)
	assert.Empty(t, job.WorkLocationType)
	assert.Empty(t, job.ValidThrough)
}

func TestNormalizeSnippet(t *testing.T) {
	n := New(nil)

	t.Run("explicit snippet wins", func(t *testing.T) {
		jobs := n.Normalize(decode(t, `[{"snippet": "short teaser", "description": "long description"}]`))
		require.Len(t, jobs, 1)
		assert.Equal(t, "short teaser", jobs[0].Snippet)
		assert.Equal(t, "long description", jobs[0].Description)
	})

	t.Run("long description truncated", func(t *testing.T) {
		long := strings.Repeat("a", 250)
		jobs := n.Normalize([]any{map[string]any{"description": long}})
		require.Len(t, jobs, 1)
		assert.Equal(t, strings.Repeat("a", 200)+"...", jobs[0].Snippet)
		assert.Equal(t, long, jobs[0].Description)
	})

	t.Run("short description kept whole", func(t *testing.T) {
		jobs := n.Normalize([]any{map[string]any{"description": "fits"}})
		require.Len(t, jobs, 1)
		assert.Equal(t, "fits", jobs[0].Snippet)
	})
}

func TestNormalizeSource(t *testing.T) {
	n := New(nil)

	tests := []struct {
		name   string
		record string
		want   string
	}{
		{
			name:   "www stripped from hostname",
			record: `{"link": "https://www.greenhouse.io/acme/jobs/1"}`,
			want:   "greenhouse.io",
		},
		{
			name:   "declared source when link unusable",
			record: `{"link": "::::not a url", "source": "Workday"}`,
			want:   "Workday",
		},
		{
			name:   "direct when nothing known",
			record: `{"title": "X"}`,
			want:   "Direct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := n.Normalize(decode(t, `[`+tt.record+`]`))
			require.Len(t, jobs, 1)
			assert.Equal(t, tt.want, jobs[0].Source)
		})
	}
}

func TestNormalizeStableIDsAndFeatured(t *testing.T) {
	n := New(nil)

	payload := decode(t, `{
		"https://a.example.com/1": {"title": "A", "link": "https://a.example.com/1"},
		"https://b.example.com/2": {"title": "B", "link": "https://b.example.com/2"},
		"https://c.example.com/3": {"title": "C", "link": "https://c.example.com/3"}
	}`)

	first := n.Normalize(payload)
	second := n.Normalize(payload)
	require.Len(t, first, 3)

	// Keyed maps are iterated in key order, so ids and batch order are
	// stable across fetches and notes stay attached.
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.Equal(t, "A", first[0].Title)
	assert.True(t, first[0].Featured)
	assert.True(t, first[1].Featured)
	assert.False(t, first[2].Featured)
}

func TestNormalizeUniqueIDs(t *testing.T) {
	n := New(nil)
	jobs := n.Normalize(decode(t, `[
		{"title": "A", "link": "https://example.com/same"},
		{"title": "B", "link": "https://example.com/same"}
	]`))
	require.Len(t, jobs, 2)
	assert.NotEqual(t, jobs[0].ID, jobs[1].ID)
}

func TestNormalizeEmploymentTypeFromSnippet(t *testing.T) {
	n := New(nil)

	tests := []struct {
		name    string
		snippet string
		want    string
	}{
		{name: "part time", snippet: "This is a part-time role", want: "PART_TIME"},
		{name: "contract", snippet: "6 month contract position", want: "CONTRACT"},
		{name: "default", snippet: "Great opportunity", want: "FULL_TIME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := n.Normalize([]any{map[string]any{"snippet": tt.snippet}})
			require.Len(t, jobs, 1)
			assert.Equal(t, tt.want, jobs[0].EmploymentType)
		})
	}

	t.Run("explicit field wins", func(t *testing.T) {
		jobs := n.Normalize([]any{map[string]any{"employment_type": "CONTRACT", "snippet": "full time"}})
		require.Len(t, jobs, 1)
		assert.Equal(t, "CONTRACT", jobs[0].EmploymentType)
	})
}

func TestDeriveTags(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		snippet string
		want    []string
	}{
		{
			name:  "role keywords",
			title: "Senior Software Engineer",
			want:  []string{"Senior", "Engineering", "Software"},
		},
		{
			name:    "remote matched in snippet",
			title:   "Barista",
			snippet: "fully remote role",
			want:    []string{"Remote"},
		},
		{
			// Rule order decides which three survive.
			name:  "capped at three",
			title: "Senior Data Engineer, Software Manager",
			want:  []string{"Senior", "Engineering", "Management"},
		},
		{
			name:  "no matches",
			title: "Barista",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveTags(tt.title, tt.snippet)
			assert.LessOrEqual(t, len(got), maxTags)
			assert.Equal(t, tt.want, got)
		})
	}
}
