package compliance

import (
	"math"
	"sort"
	"strings"
)

var placeholderDepots = map[string]struct{}{
	"":           {},
	"-":          {},
	"--":         {},
	"n/a":        {},
	"na":         {},
	"none":       {},
	"unassigned": {},
}

// IsPlaceholderDepot reports whether depot is blank or a stand-in value.
func IsPlaceholderDepot(depot string) bool {
	_, ok := placeholderDepots[strings.ToLower(strings.TrimSpace(depot))]
	return ok
}

// ComplianceByDepot groups evaluations by depot and computes approved/total
// percentages. Output is sorted by depot name.
func ComplianceByDepot(evals []Evaluation) []DepotCompliance {
	groups := make(map[string]*DepotCompliance)
	for _, eval := range evals {
		if IsPlaceholderDepot(eval.Depot) {
			continue
		}
		depot := strings.TrimSpace(eval.Depot)
		group, ok := groups[depot]
		if !ok {
			group = &DepotCompliance{Depot: depot}
			groups[depot] = group
		}
		group.EmployeeCount++
		group.ApprovedSum += eval.Progress.Approved
		group.TotalSum += eval.Progress.Total
	}

	out := make([]DepotCompliance, 0, len(groups))
	for _, group := range groups {
		group.CompliancePercent = CompliancePercent(group.ApprovedSum, group.TotalSum)
		out = append(out, *group)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Depot < out[j].Depot
	})
	return out
}

// CompliancePercent is round(100*approved/total) clamped to [0,100].
func CompliancePercent(approved, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(approved) / float64(total)))
	return max(0, min(100, pct))
}
