package compliance

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"

	minSubstringMatch = 3
)

var priorities = map[string]struct{}{
	PriorityNormal: {},
	PriorityHigh:   {},
	PriorityUrgent: {},
}

type RequestInput struct {
	Label       string `json:"documentLabel"`
	Deadline    string `json:"deadline"`
	Priority    string `json:"priority"`
	RequestedBy string `json:"-"`
}

// Canonicalize lower-cases s and drops every non-alphanumeric rune.
func Canonicalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RequiredDocumentLabels lists the display names of emp's applicable catalog
// requirements followed by the labels of outstanding HR requests.
func RequiredDocumentLabels(emp Employee) []string {
	defs := ApplicableRequirements(emp)
	labels := make([]string, 0, len(defs)+len(emp.Requirements.Requests))
	for _, def := range defs {
		labels = append(labels, def.DisplayName)
	}
	for _, req := range emp.Requirements.Requests {
		if req.Outstanding() {
			labels = append(labels, req.DocumentLabel)
		}
	}
	return labels
}

// FindDuplicate returns the existing label that label collides with. Labels
// collide when their canonical forms are equal or when either contains the
// other and the shorter is at least three characters. This is a heuristic:
// distinct documents sharing a word (e.g. "tin" inside "continuing") will
// collide.
func FindDuplicate(label string, existing []string) (string, bool) {
	candidate := Canonicalize(label)
	if candidate == "" {
		return "", false
	}
	for _, other := range existing {
		canon := Canonicalize(other)
		if canon == "" {
			continue
		}
		if canon == candidate {
			return other, true
		}
		shorter, longer := canon, candidate
		if len(shorter) > len(longer) {
			shorter, longer = longer, shorter
		}
		if len(shorter) >= minSubstringMatch && strings.Contains(longer, shorter) {
			return other, true
		}
	}
	return "", false
}

// AddRequest appends a new HR request to emp's requirement set. Nothing else
// in the set is touched, and emp is left unchanged on error.
func AddRequest(emp *Employee, input RequestInput, asOf time.Time) (HrRequest, error) {
	label := strings.TrimSpace(input.Label)
	if label == "" || Canonicalize(label) == "" {
		return HrRequest{}, missingField("documentLabel")
	}
	deadline := strings.TrimSpace(input.Deadline)
	if deadline == "" {
		return HrRequest{}, missingField("deadline")
	}
	parsed, ok := ParseDate(deadline, asOf.Location())
	if !ok {
		return HrRequest{}, invalidField("deadline")
	}

	priority := strings.ToLower(strings.TrimSpace(input.Priority))
	if priority == "" {
		priority = PriorityNormal
	}
	if _, ok := priorities[priority]; !ok {
		return HrRequest{}, invalidField("priority")
	}

	if existing, dup := FindDuplicate(label, RequiredDocumentLabels(*emp)); dup {
		return HrRequest{}, &DuplicateError{Label: label, Existing: existing}
	}

	req := HrRequest{
		ID:            uuid.NewString(),
		DocumentLabel: label,
		Deadline:      parsed.Format(dateLayout),
		Priority:      priority,
		RequestedBy:   input.RequestedBy,
		RequestedAt:   formatTimestamp(asOf),
		RequirementRecord: RequirementRecord{
			Status: StatusPending.Stored(),
		},
	}
	emp.Requirements.Requests = append(emp.Requirements.Requests, req)
	return req, nil
}
