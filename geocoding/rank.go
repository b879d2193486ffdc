package geocoding

import (
	"slices"
	"strings"

	"github.com/icodeforyou/weatherboard-go/types"
)

// Rank orders candidates with priority-country matches first, then by
// descending population. The sort is stable and the input is not modified.
func Rank(candidates []types.Location, priorityCountries []string) []types.Location {
	ranked := slices.Clone(candidates)

	isPriority := func(l types.Location) bool {
		return slices.ContainsFunc(priorityCountries, func(c string) bool {
			return strings.EqualFold(strings.TrimSpace(c), l.Country)
		})
	}

	slices.SortStableFunc(ranked, func(a, b types.Location) int {
		pa, pb := isPriority(a), isPriority(b)
		switch {
		case pa && !pb:
			return -1
		case !pa && pb:
			return 1
		case a.Population > b.Population:
			return -1
		case a.Population < b.Population:
			return 1
		default:
			return 0
		}
	})

	return ranked
}
