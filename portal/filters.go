package portal

import (
	"strings"

	"github.com/studyhub/portal/collab"
	"github.com/studyhub/portal/internal/utils"
	"github.com/studyhub/portal/resources"
	"github.com/studyhub/portal/users"
)

// Filters are linear, case-insensitive substring predicates over a loaded collection.
// An empty query or facet matches everything. The input is never modified.

func matches(query string, fields ...string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	for _, f := range fields {
		if utils.ContainsFold(f, query) {
			return true
		}
	}
	return false
}

func facet(want, got string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(want, strings.TrimSpace(got))
}

func anyFacet(want string, got []string) bool {
	if strings.TrimSpace(want) == "" {
		return true
	}
	for _, g := range got {
		if facet(want, g) {
			return true
		}
	}
	return false
}

func FilterProjects(list []collab.Project, query, tag string) []collab.Project {
	out := make([]collab.Project, 0, len(list))
	for _, p := range list {
		if matches(query, append([]string{p.Title, p.Description}, p.Tags...)...) && anyFacet(tag, p.Tags) {
			out = append(out, p)
		}
	}
	return out
}

func FilterClubs(list []collab.Club, query, category string) []collab.Club {
	out := make([]collab.Club, 0, len(list))
	for _, c := range list {
		if matches(query, c.Name, c.Description, c.Category) && facet(category, c.Category) {
			out = append(out, c)
		}
	}
	return out
}

func FilterCommunities(list []collab.Community, query string) []collab.Community {
	out := make([]collab.Community, 0, len(list))
	for _, c := range list {
		if matches(query, c.Name, c.Description, c.Topic) {
			out = append(out, c)
		}
	}
	return out
}

// DocumentFilter is the resource hub search box plus its facets
type DocumentFilter struct {
	Query        string
	College      string
	Branch       string
	ResourceType resources.ResourceType
}

func FilterDocuments(list []resources.Document, filter DocumentFilter) []resources.Document {
	out := make([]resources.Document, 0, len(list))
	for _, d := range list {
		if matches(filter.Query, d.Title, d.Description) &&
			facet(filter.College, d.College) &&
			facet(filter.Branch, d.Branch) &&
			facet(string(filter.ResourceType), string(d.ResourceType)) {
			out = append(out, d)
		}
	}
	return out
}

// FilterMentors matches the query against names and skills; skill must match exactly
func FilterMentors(list []*users.User, query, skill string) []*users.User {
	out := make([]*users.User, 0, len(list))
	for _, m := range list {
		if m == nil {
			continue
		}
		fields := append([]string{m.DisplayName(), m.Username, m.Bio}, m.Skills...)
		if matches(query, fields...) && (strings.TrimSpace(skill) == "" || m.HasSkill(skill)) {
			out = append(out, m)
		}
	}
	return out
}
