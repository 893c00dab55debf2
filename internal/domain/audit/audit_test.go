package audit

import (
	"strings"
	"testing"
)

func TestBuildBaseQueryNumbersPlaceholders(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", Filter{EntityType: EntityEmployee, EntityID: "emp-1"})
	if !strings.Contains(query, "entity_type = $1") || !strings.Contains(query, "entity_id = $2") {
		t.Fatalf("unexpected query %q", query)
	}
	if strings.Contains(query, "action =") {
		t.Fatalf("empty filters must be skipped: %q", query)
	}
	if len(args) != 2 || args[0] != EntityEmployee || args[1] != "emp-1" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestMarshalStateNil(t *testing.T) {
	payload, err := marshalState(nil)
	if err != nil || payload != nil {
		t.Fatalf("expected nil payload, got %s (%v)", payload, err)
	}
	payload, err = marshalState(map[string]string{"status": "Approved"})
	if err != nil || string(payload) != `{"status":"Approved"}` {
		t.Fatalf("unexpected payload %s (%v)", payload, err)
	}
}
