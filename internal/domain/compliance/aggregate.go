package compliance

// included reports whether an entry counts toward totals: everything required,
// plus optional items once something has been submitted for them.
func included(entry Entry) bool {
	return entry.RequiredForCompletion || entry.Submitted
}

// EmployeeStatus rolls entries up into one overall status.
func EmployeeStatus(entries []Entry) OverallStatus {
	required := 0
	allApproved := true
	pending := false
	for _, entry := range entries {
		if !included(entry) {
			continue
		}
		if entry.Status == StatusPending && entry.Submitted {
			pending = true
		}
		if !entry.RequiredForCompletion {
			continue
		}
		required++
		if entry.Status != StatusApproved {
			allApproved = false
		}
	}

	switch {
	case required > 0 && allApproved:
		return OverallComplete
	case pending:
		return OverallPending
	default:
		return OverallIncomplete
	}
}

// ProgressOf counts included entries by state.
func ProgressOf(entries []Entry) Progress {
	var p Progress
	for _, entry := range entries {
		if !included(entry) {
			continue
		}
		p.Total++
		switch entry.Status {
		case StatusApproved:
			p.Approved++
		case StatusExpired:
			if entry.Submitted {
				p.Expired++
			}
		case StatusPending, StatusResubmit:
			if entry.Submitted {
				p.Pending++
			}
		}
	}
	p.Submitted = p.Approved + p.Pending + p.Expired
	return p
}
