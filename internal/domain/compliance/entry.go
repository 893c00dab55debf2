package compliance

import (
	"strings"
	"time"
)

type CanonicalEntry struct {
	Status                Status `json:"status"`
	Submitted             bool   `json:"submitted"`
	RequiredForCompletion bool   `json:"requiredForCompletion"`
}

// Entry is the derived view of one requirement for one employee. It is
// recomputed on every read and never persisted.
type Entry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Group Group  `json:"group"`
	CanonicalEntry
	StoredStatus Status `json:"storedStatus"`
	Value        string `json:"value,omitempty"`
	FilePath     string `json:"filePath,omitempty"`
	ValidUntil   string `json:"validUntil,omitempty"`
	Deadline     string `json:"deadline,omitempty"`
	DeadlineSoon bool   `json:"deadlineSoon,omitempty"`
	Remarks      string `json:"remarks,omitempty"`
	ValidatedAt  string `json:"validatedAt,omitempty"`
	NewUpload    bool   `json:"newUpload"`
	CanValidate  bool   `json:"canValidate"`
}

// Evaluator turns raw requirement records into canonical entries.
type Evaluator struct {
	Paths PathNormalizer
}

func NewEvaluator(buckets ...string) *Evaluator {
	return &Evaluator{Paths: NewPathNormalizer(buckets...)}
}

// Entry normalizes one record against its definition. This is the only place
// effective status is derived.
func (e *Evaluator) Entry(def Definition, emp Employee, rec RequirementRecord, asOf time.Time) Entry {
	filePath, hasFile := e.Paths.Normalize(rec.FilePath)
	submitted := hasFile || (def.AcceptsValue && strings.TrimSpace(rec.Value) != "")

	stored := NormalizeStatus(rec.Status)
	status := effectiveStatus(rec.Status)
	if submitted && status == StatusMissing {
		status = StatusPending
	}

	newUpload := def.TracksResubmission && e.newUpload(rec)
	if newUpload {
		status = StatusPending
	}

	if hasFile && IsExpired(rec.ValidUntil, asOf) {
		status = StatusExpired
	}
	if !submitted && status == StatusApproved {
		status = StatusMissing
	}

	return Entry{
		Key:   def.Key,
		Label: def.DisplayName,
		Group: def.Group,
		CanonicalEntry: CanonicalEntry{
			Status:                status,
			Submitted:             submitted,
			RequiredForCompletion: def.Required(emp),
		},
		StoredStatus: stored,
		Value:        strings.TrimSpace(rec.Value),
		FilePath:     filePath,
		ValidUntil:   strings.TrimSpace(rec.ValidUntil),
		Remarks:      rec.Remarks,
		ValidatedAt:  rec.ValidatedAt,
		NewUpload:    newUpload,
		CanValidate:  e.CanValidate(rec, hasFile),
	}
}

// RequestEntry normalizes an HR request. Requests always count toward completion.
func (e *Evaluator) RequestEntry(req HrRequest, asOf time.Time) Entry {
	def := Definition{
		Key:                req.ID,
		DisplayName:        req.DocumentLabel,
		Group:              GroupHRRequested,
		TracksResubmission: true,
		Required:           always,
	}
	entry := e.Entry(def, Employee{}, req.RequirementRecord, asOf)
	entry.Deadline = req.Deadline
	entry.DeadlineSoon = entry.Status != StatusApproved && DeadlineSoon(req.Deadline, asOf)
	return entry
}

// Entries builds the canonical entries for every applicable requirement plus
// every outstanding HR request.
func (e *Evaluator) Entries(emp Employee, asOf time.Time) []Entry {
	defs := ApplicableRequirements(emp)
	out := make([]Entry, 0, len(defs)+len(emp.Requirements.Requests))
	for _, def := range defs {
		out = append(out, e.Entry(def, emp, emp.Requirements.Record(def.Key), asOf))
	}
	for _, req := range emp.Requirements.Requests {
		if !req.Outstanding() {
			continue
		}
		out = append(out, e.RequestEntry(req, asOf))
	}
	return out
}

// Evaluate folds emp's entries into an overall status and progress counters.
func (e *Evaluator) Evaluate(emp Employee, asOf time.Time) Evaluation {
	entries := e.Entries(emp, asOf)
	return Evaluation{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName(),
		Category:     emp.Category,
		Depot:        emp.Depot,
		Status:       EmployeeStatus(entries),
		Progress:     ProgressOf(entries),
		Entries:      entries,
		Version:      emp.RequirementsVersion,
	}
}
