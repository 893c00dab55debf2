package compliance

import "strings"

type Status string

const (
	StatusMissing  Status = "Missing"
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusResubmit Status = "Resubmit"
	StatusExpired  Status = "Expired"
)

var statusSynonyms = map[string]Status{
	"":          StatusMissing,
	"missing":   StatusMissing,
	"no file":   StatusMissing,
	"validated": StatusApproved,
	"approved":  StatusApproved,
	"submitted": StatusPending,
	"pending":   StatusPending,
	"re-submit": StatusResubmit,
	"resubmit":  StatusResubmit,
	"expired":   StatusExpired,
}

// NormalizeStatus maps the free-text status vocabulary onto Status.
// Unrecognized values pass through unchanged and match none of the constants.
func NormalizeStatus(raw string) Status {
	key := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if status, ok := statusSynonyms[key]; ok {
		return status
	}
	return Status(strings.TrimSpace(raw))
}

// effectiveStatus is NormalizeStatus with unrecognized values read as Missing.
func effectiveStatus(raw string) Status {
	if status := NormalizeStatus(raw); status.Known() {
		return status
	}
	return StatusMissing
}

// Known reports whether s is one of the canonical statuses.
func (s Status) Known() bool {
	switch s {
	case StatusMissing, StatusPending, StatusApproved, StatusResubmit, StatusExpired:
		return true
	}
	return false
}

// Stored returns the value written back to the requirements record.
func (s Status) Stored() string {
	switch s {
	case StatusApproved:
		return "approved"
	case StatusResubmit:
		return "resubmit"
	case StatusPending:
		return "pending"
	case StatusExpired:
		return "expired"
	case StatusMissing:
		return "missing"
	}
	return string(s)
}
