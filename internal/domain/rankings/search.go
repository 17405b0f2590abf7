package rankings

import "strings"

// SearchByName returns the records whose CompetitorName contains needle,
// ignoring case. An empty needle means no search was performed: the result
// is nil and performed is false. A non-empty needle with no matches yields
// an empty Table and performed true.
func SearchByName(t Table, needle string) (matches Table, performed bool) {
	if needle == "" {
		return nil, false
	}
	n := strings.ToLower(needle)
	matches = make(Table, 0)
	for _, rec := range t {
		if strings.Contains(strings.ToLower(rec.CompetitorName), n) {
			matches = append(matches, rec)
		}
	}
	return matches, true
}
