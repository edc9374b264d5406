package scorer

import (
	"strings"

	"github.com/sells-group/leadscore/internal/model"
)

// Reason strings attached to rule points. The report surfaces these
// verbatim, so they are stable API.
const (
	ReasonDecisionMaker   = "Decision maker role (+20)"
	ReasonInfluencer      = "Influencer role (+10)"
	ReasonExactICP        = "Exact ICP match (+20)"
	ReasonAdjacentICP     = "Adjacent industry (+10)"
	ReasonCompleteProfile = "Complete profile (+10)"
)

// MaxRulePoints is the ceiling of the rule layer (20 role + 20 industry + 10
// completeness).
const MaxRulePoints = 50

// decisionMakerKeywords mark roles with buying authority.
var decisionMakerKeywords = []string{
	"ceo", "cto", "cfo", "vp", "head", "director",
	"founder", "owner", "president",
}

// influencerKeywords mark roles that shape but don't own the decision.
var influencerKeywords = []string{
	"manager", "lead", "architect", "senior", "principal",
}

// Score evaluates the deterministic rule layer for one lead against one
// offer. It returns the rule points (0-50 in steps of 10) and the matched
// reason strings ordered role, industry, completeness.
func Score(lead *model.Lead, offer *model.Offer) (int, []string) {
	points := 0
	var reasons []string

	if p, reason := rolePoints(lead.Role); p > 0 {
		points += p
		reasons = append(reasons, reason)
	}
	if p, reason := industryPoints(lead.Industry, offer.IdealUseCases); p > 0 {
		points += p
		reasons = append(reasons, reason)
	}
	if p, reason := completenessPoints(lead); p > 0 {
		points += p
		reasons = append(reasons, reason)
	}

	return points, reasons
}

// rolePoints matches the role against the keyword tiers. Matching is
// case-insensitive substring, so "lead" also fires inside "Team Leader";
// that looseness is accepted. Decision-maker keywords win over influencer
// keywords and tiers never stack.
func rolePoints(role string) (int, string) {
	lower := strings.ToLower(role)
	if matchesAny(lower, decisionMakerKeywords) {
		return 20, ReasonDecisionMaker
	}
	if matchesAny(lower, influencerKeywords) {
		return 10, ReasonInfluencer
	}
	return 0, ""
}

// industryPoints compares the lead's industry to the offer's ideal use
// cases: exact match (case-insensitive) first, then substring containment
// in either direction.
func industryPoints(industry string, idealUseCases []string) (int, string) {
	lower := strings.ToLower(strings.TrimSpace(industry))
	if lower == "" {
		return 0, ""
	}

	for _, icp := range idealUseCases {
		if lower == strings.ToLower(strings.TrimSpace(icp)) {
			return 20, ReasonExactICP
		}
	}
	for _, icp := range idealUseCases {
		target := strings.ToLower(strings.TrimSpace(icp))
		if target == "" {
			continue
		}
		if strings.Contains(target, lower) || strings.Contains(lower, target) {
			return 10, ReasonAdjacentICP
		}
	}
	return 0, ""
}

// completenessPoints awards the bonus when every profile field carries
// non-whitespace content.
func completenessPoints(lead *model.Lead) (int, string) {
	fields := []string{
		lead.Name, lead.Role, lead.Company,
		lead.Industry, lead.Location, lead.LinkedInBio,
	}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return 0, ""
		}
	}
	return 10, ReasonCompleteProfile
}

// matchesAny checks if s contains any of the given keywords.
func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
