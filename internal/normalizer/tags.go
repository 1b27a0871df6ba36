package normalizer

import "strings"

// maxTags caps the short category labels shown per job.
const maxTags = 3

// tagRule matches a keyword in the title (or, for remote, the snippet
// too) and yields a display tag.
type tagRule struct {
	keyword     string
	tag         string
	scanSnippet bool
}

var tagRules = []tagRule{
	{keyword: "senior", tag: "Senior"},
	{keyword: "sr", tag: "Senior"},
	{keyword: "engineer", tag: "Engineering"},
	{keyword: "manager", tag: "Management"},
	{keyword: "specialist", tag: "Specialist"},
	{keyword: "representative", tag: "Customer Service"},
	{keyword: "data", tag: "Data"},
	{keyword: "software", tag: "Software"},
	{keyword: "mortgage", tag: "Finance"},
	{keyword: "head of", tag: "Leadership"},
	{keyword: "remote", tag: "Remote", scanSnippet: true},
}

// deriveTags scans title and snippet for known role keywords and returns
// at most maxTags labels, in rule order, without duplicates.
func deriveTags(title, snippet string) []string {
	titleLower := strings.ToLower(title)
	snippetLower := strings.ToLower(snippet)

	tags := make([]string, 0, maxTags)
	added := make(map[string]bool, maxTags)
	for _, rule := range tagRules {
		if added[rule.tag] {
			continue
		}
		matched := strings.Contains(titleLower, rule.keyword)
		if !matched && rule.scanSnippet {
			matched = strings.Contains(snippetLower, rule.keyword)
		}
		if matched {
			tags = append(tags, rule.tag)
			added[rule.tag] = true
			if len(tags) == maxTags {
				break
			}
		}
	}
	return tags
}
