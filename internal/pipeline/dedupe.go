package pipeline

import (
	"sort"

	"github.com/sells-group/leadscore/internal/model"
)

// identityKey groups duplicate uploads of the same person.
type identityKey struct {
	company string
	name    string
}

// SelectCanonical returns one lead per (company, name) identity: the most
// recently created row, with the insertion counter breaking created_at ties
// in favor of the later upload. Identity matching is case-sensitive.
//
// When scoredOnly is set, unscored rows are dropped before grouping, so an
// unscored duplicate can never shadow a scored canonical row and vice versa.
// Scoring candidates want scoredOnly=false, result listings scoredOnly=true.
//
// Pure selection over the snapshot: nothing is mutated, non-canonical rows
// stay in the store. Output keeps the input's first-appearance order per
// identity.
func SelectCanonical(leads []model.Lead, scoredOnly bool) []model.Lead {
	out := make([]model.Lead, 0, len(leads))
	seen := make(map[identityKey]int, len(leads))

	for _, lead := range leads {
		if scoredOnly && !lead.Scored() {
			continue
		}
		key := identityKey{company: lead.Company, name: lead.Name}
		if i, ok := seen[key]; ok {
			if supersedes(lead, out[i]) {
				out[i] = lead
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, lead)
	}
	return out
}

// supersedes reports whether candidate replaces current as the canonical row
// for their shared identity.
func supersedes(candidate, current model.Lead) bool {
	if !candidate.CreatedAt.Equal(current.CreatedAt) {
		return candidate.CreatedAt.After(current.CreatedAt)
	}
	return candidate.Seq > current.Seq
}

// ScoredResults returns the canonical scored leads ordered for display:
// score descending, then company, then name. The results listing and the
// CSV export both build on this, so they agree on which rows exist.
func ScoredResults(leads []model.Lead) []model.Lead {
	results := SelectCanonical(leads, true)
	sort.Slice(results, func(i, j int) bool {
		if *results[i].Score != *results[j].Score {
			return *results[i].Score > *results[j].Score
		}
		if results[i].Company != results[j].Company {
			return results[i].Company < results[j].Company
		}
		return results[i].Name < results[j].Name
	})
	return results
}
