package compliance

import "testing"

func evalAt(depot string, approved, total int) Evaluation {
	return Evaluation{Depot: depot, Progress: Progress{Approved: approved, Total: total}}
}

func TestComplianceByDepot(t *testing.T) {
	got := ComplianceByDepot([]Evaluation{
		evalAt("Batangas", 8, 10),
		evalAt("Batangas ", 5, 10),
		evalAt("Lipa", 3, 4),
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 depots, got %d", len(got))
	}
	b := got[0]
	if b.Depot != "Batangas" || b.EmployeeCount != 2 || b.ApprovedSum != 13 || b.TotalSum != 20 || b.CompliancePercent != 65 {
		t.Fatalf("unexpected Batangas row %+v", b)
	}
	if got[1].Depot != "Lipa" || got[1].CompliancePercent != 75 {
		t.Fatalf("unexpected Lipa row %+v", got[1])
	}
}

func TestPlaceholderDepotsExcluded(t *testing.T) {
	got := ComplianceByDepot([]Evaluation{
		evalAt("", 1, 1), evalAt(" - ", 1, 1), evalAt("N/A", 1, 1), evalAt("Unassigned", 1, 1), evalAt("none", 1, 1),
	})
	if len(got) != 0 {
		t.Fatalf("expected placeholders to be dropped, got %+v", got)
	}
}

func TestCompliancePercentBounds(t *testing.T) {
	cases := []struct {
		approved, total, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{0, 10, 0},
		{10, 10, 100},
		{12, 10, 100},
		{-3, 10, 0},
		{1, 3, 33},
		{2, 3, 67},
	}
	for _, tc := range cases {
		if got := CompliancePercent(tc.approved, tc.total); got != tc.want {
			t.Fatalf("percent(%d,%d): expected %d, got %d", tc.approved, tc.total, tc.want, got)
		}
	}
}

func TestCompliancePercentMonotonic(t *testing.T) {
	prev := -1
	for approved := 0; approved <= 20; approved++ {
		pct := CompliancePercent(approved, 20)
		if pct < prev {
			t.Fatalf("percent decreased at %d: %d < %d", approved, pct, prev)
		}
		prev = pct
	}
}
