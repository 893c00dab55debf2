package compliance

import "time"

var testAsOf = time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)

func approvedFile(path string) RequirementRecord {
	return RequirementRecord{
		Status:            "approved",
		FilePath:          path,
		SubmittedAt:       "2026-01-10T08:00:00Z",
		ValidatedAt:       "2026-01-12T08:00:00Z",
		ValidatedFilePath: path,
	}
}

// completeOfficeEmployee is a direct hire in an office role with every
// required record approved and no educational attainment on file.
func completeOfficeEmployee() Employee {
	emp := Employee{
		ID:            "emp-1",
		FirstName:     "Maria",
		LastName:      "Santos",
		Category:      CategoryDirect,
		Position:      "Payroll Officer",
		Depot:         "Batangas",
		MaritalStatus: "single",
	}
	for _, key := range []string{"sss", "tin", "pagibig", "philhealth"} {
		emp.Requirements.SetRecord(key, RequirementRecord{Status: "Validated", Value: "12-345", FilePath: "ids/" + key + ".jpg"})
	}
	for _, def := range ApplicableRequirements(emp) {
		if def.Group == GroupIDs || !def.Required(emp) {
			continue
		}
		emp.Requirements.SetRecord(def.Key, approvedFile(string(def.Group)+"/"+def.Key+".pdf"))
	}
	return emp
}

func entryByKey(entries []Entry, key string) (Entry, bool) {
	for _, entry := range entries {
		if entry.Key == key {
			return entry, true
		}
	}
	return Entry{}, false
}
