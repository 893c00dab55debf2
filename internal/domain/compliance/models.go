package compliance

import (
	"encoding/json"
	"strings"
	"time"
)

type Category string

const (
	CategoryAgency Category = "agency"
	CategoryDirect Category = "direct"
)

type Employee struct {
	ID                    string         `json:"id"`
	EmployeeNumber        string         `json:"employeeNumber"`
	FirstName             string         `json:"firstName"`
	LastName              string         `json:"lastName"`
	Category              Category       `json:"category"`
	Position              string         `json:"position"`
	Depot                 string         `json:"depot"`
	MaritalStatus         string         `json:"maritalStatus"`
	EducationalAttainment string         `json:"educationalAttainment,omitempty"`
	Requirements          RequirementSet `json:"-"`
	RequirementsVersion   int64          `json:"requirementsVersion"`
	UpdatedAt             time.Time      `json:"updatedAt"`

	// RequirementsUnreadable marks a stored blob that failed to decode.
	// Requirements is then empty and must not be written back.
	RequirementsUnreadable bool `json:"-"`
}

func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// RequirementRecord is the stored state of one requirement key after field-name
// variants have been folded by the adapter in raw.go.
type RequirementRecord struct {
	Status            string `json:"status,omitempty"`
	Value             string `json:"value,omitempty"`
	FilePath          string `json:"file_path,omitempty"`
	SubmittedAt       string `json:"submitted_at,omitempty"`
	ValidUntil        string `json:"valid_until,omitempty"`
	Remarks           string `json:"remarks,omitempty"`
	ValidatedAt       string `json:"validated_at,omitempty"`
	ValidatedBy       string `json:"validated_by,omitempty"`
	ValidatedFilePath string `json:"validated_file_path,omitempty"`
}

const RequestStatusCancelled = "cancelled"

type HrRequest struct {
	ID            string `json:"id"`
	DocumentLabel string `json:"document_label"`
	Deadline      string `json:"deadline"`
	Priority      string `json:"priority,omitempty"`
	RequestedBy   string `json:"requested_by,omitempty"`
	RequestedAt   string `json:"requested_at,omitempty"`
	RequirementRecord
}

// Outstanding reports whether the request still counts toward completion.
func (r HrRequest) Outstanding() bool {
	return !strings.EqualFold(strings.TrimSpace(r.Status), RequestStatusCancelled)
}

type RequirementSet struct {
	Records  map[string]RequirementRecord
	Requests []HrRequest
	Extra    map[string]json.RawMessage
}

func (s RequirementSet) Record(key string) RequirementRecord {
	if s.Records == nil {
		return RequirementRecord{}
	}
	return s.Records[key]
}

func (s *RequirementSet) SetRecord(key string, rec RequirementRecord) {
	if s.Records == nil {
		s.Records = make(map[string]RequirementRecord)
	}
	s.Records[key] = rec
}

// Clone returns a deep copy so mutations can be applied all-or-nothing.
func (s RequirementSet) Clone() RequirementSet {
	out := RequirementSet{
		Records:  make(map[string]RequirementRecord, len(s.Records)),
		Requests: make([]HrRequest, len(s.Requests)),
	}
	for k, v := range s.Records {
		out.Records[k] = v
	}
	copy(out.Requests, s.Requests)
	if s.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

type OverallStatus string

const (
	OverallComplete   OverallStatus = "Complete"
	OverallPending    OverallStatus = "Pending"
	OverallIncomplete OverallStatus = "Incomplete"
)

type Progress struct {
	Approved  int `json:"approved"`
	Pending   int `json:"pending"`
	Expired   int `json:"expired"`
	Submitted int `json:"submitted"`
	Total     int `json:"total"`
}

type Evaluation struct {
	EmployeeID   string        `json:"employeeId"`
	EmployeeName string        `json:"employeeName"`
	Category     Category      `json:"category"`
	Depot        string        `json:"depot"`
	Status       OverallStatus `json:"status"`
	Progress     Progress      `json:"progress"`
	Entries      []Entry       `json:"entries,omitempty"`
	Version      int64         `json:"requirementsVersion"`
}

type DepotCompliance struct {
	Depot             string `json:"depot"`
	EmployeeCount     int    `json:"employeeCount"`
	ApprovedSum       int    `json:"approvedSum"`
	TotalSum          int    `json:"totalSum"`
	CompliancePercent int    `json:"compliancePercent"`
}
