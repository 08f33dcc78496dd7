package dashboard

import (
	"strings"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

// FilterAll is the wildcard value for the status and type filters.
const FilterAll = "all"

// Filter returns the activities matching all three constraints: a
// case-insensitive substring query over title, description, location and
// responsible; a status equality filter; and a type equality filter. Empty
// query and "all" filters are wildcards. The input is never mutated and the
// output preserves input order.
func Filter(activities []models.Activity, query, status, typ string) []models.Activity {
	query = strings.ToLower(strings.TrimSpace(query))

	matched := make([]models.Activity, 0, len(activities))
	for _, activity := range activities {
		if !matchesQuery(activity, query) {
			continue
		}
		if !matchesFilter(status, string(activity.Status)) {
			continue
		}
		if !matchesFilter(typ, string(activity.Type)) {
			continue
		}
		matched = append(matched, activity)
	}
	return matched
}

func matchesQuery(activity models.Activity, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(activity.Title), query) ||
		strings.Contains(strings.ToLower(activity.Description), query) ||
		strings.Contains(strings.ToLower(activity.Location), query) ||
		strings.Contains(strings.ToLower(activity.Responsible), query)
}

func matchesFilter(filter, value string) bool {
	return filter == "" || filter == FilterAll || filter == value
}
