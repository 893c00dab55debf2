package compliance

import "testing"

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]Status{
		"":          StatusMissing,
		"  ":        StatusMissing,
		"No  File":  StatusMissing,
		"Validated": StatusApproved,
		"APPROVED":  StatusApproved,
		"submitted": StatusPending,
		"Pending":   StatusPending,
		"Re-submit": StatusResubmit,
		"resubmit":  StatusResubmit,
		" expired ": StatusExpired,
		"On Hold":   Status("On Hold"),
	}
	for raw, want := range cases {
		if got := NormalizeStatus(raw); got != want {
			t.Fatalf("normalize %q: expected %q, got %q", raw, want, got)
		}
	}
}

func TestUnknownStatusIsNotKnown(t *testing.T) {
	if NormalizeStatus("on hold").Known() {
		t.Fatal("expected unrecognized status to stay unknown")
	}
	if !NormalizeStatus("validated").Known() {
		t.Fatal("expected synonym to be known")
	}
}

func TestStoredStatusRoundTrips(t *testing.T) {
	for _, status := range []Status{StatusMissing, StatusPending, StatusApproved, StatusResubmit, StatusExpired} {
		if got := NormalizeStatus(status.Stored()); got != status {
			t.Fatalf("expected %s, got %s", status, got)
		}
	}
}
