package compliance

import (
	"strings"
	"time"
)

type Outcome string

const (
	OutcomeApprove  Outcome = "approve"
	OutcomeResubmit Outcome = "resubmit"
)

type Decision struct {
	Outcome     Outcome `json:"outcome"`
	Remarks     string  `json:"remarks"`
	ValidUntil  string  `json:"validUntil,omitempty"`
	ValidatedBy string  `json:"-"`
}

func ParseOutcome(raw string) (Outcome, bool) {
	switch NormalizeStatus(raw) {
	case StatusApproved:
		return OutcomeApprove, true
	case StatusResubmit:
		return OutcomeResubmit, true
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approve":
		return OutcomeApprove, true
	case "reject", "return":
		return OutcomeResubmit, true
	}
	return "", false
}

// ApplyValidation records an HR decision on the requirement identified by key,
// which is either a catalog key (or alias) or an HR request id. emp is only
// modified when the decision is accepted.
func (e *Evaluator) ApplyValidation(emp *Employee, key string, decision Decision, asOf time.Time) (Entry, error) {
	outcome, ok := ParseOutcome(string(decision.Outcome))
	if !ok {
		return Entry{}, invalidField("outcome")
	}
	remarks := strings.TrimSpace(decision.Remarks)
	if outcome == OutcomeResubmit && remarks == "" {
		return Entry{}, missingField("remarks")
	}
	validUntil := strings.TrimSpace(decision.ValidUntil)
	if validUntil != "" {
		parsed, ok := ParseDate(validUntil, asOf.Location())
		if !ok {
			return Entry{}, invalidField("validUntil")
		}
		validUntil = parsed.Format(dateLayout)
	}

	stamp := func(rec RequirementRecord) RequirementRecord {
		if outcome == OutcomeApprove {
			rec.Status = StatusApproved.Stored()
		} else {
			rec.Status = StatusResubmit.Stored()
		}
		rec.Remarks = remarks
		rec.ValidatedAt = formatTimestamp(asOf)
		rec.ValidatedBy = decision.ValidatedBy
		rec.ValidatedFilePath = ""
		if path, ok := e.Paths.Normalize(rec.FilePath); ok {
			rec.ValidatedFilePath = path
		}
		if validUntil != "" {
			rec.ValidUntil = validUntil
		}
		return rec
	}

	if def, ok := e.applicableDefinition(*emp, key); ok {
		rec := emp.Requirements.Record(def.Key)
		current := e.Entry(def, *emp, rec, asOf)
		if !current.CanValidate {
			return current, ErrNotValidatable
		}
		updated := stamp(rec)
		emp.Requirements.SetRecord(def.Key, updated)
		return e.Entry(def, *emp, updated, asOf), nil
	}

	for i, req := range emp.Requirements.Requests {
		if req.ID != key || !req.Outstanding() {
			continue
		}
		current := e.RequestEntry(req, asOf)
		if !current.CanValidate {
			return current, ErrNotValidatable
		}
		req.RequirementRecord = stamp(req.RequirementRecord)
		emp.Requirements.Requests[i] = req
		return e.RequestEntry(req, asOf), nil
	}

	return Entry{}, ErrUnknownRequirement
}

func (e *Evaluator) applicableDefinition(emp Employee, key string) (Definition, bool) {
	def, ok := LookupDefinition(key)
	if !ok || !def.Applies(emp) {
		return Definition{}, false
	}
	return def, true
}
