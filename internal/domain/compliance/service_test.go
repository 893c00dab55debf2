package compliance

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	employees   map[string]*Employee
	writes      int
	lastFilter  ListFilter
	beforeWrite func(*Employee)
}

func newFakeStore(emps ...Employee) *fakeStore {
	s := &fakeStore{employees: make(map[string]*Employee)}
	for _, emp := range emps {
		s.employees[emp.ID] = &emp
	}
	return s
}

func (s *fakeStore) GetEmployee(_ context.Context, id string) (*Employee, error) {
	emp, ok := s.employees[id]
	if !ok {
		return nil, ErrUnknownEmployee
	}
	out := *emp
	out.Requirements = emp.Requirements.Clone()
	return &out, nil
}

func (s *fakeStore) ListEmployees(_ context.Context, filter ListFilter) ([]Employee, error) {
	s.lastFilter = filter
	out := make([]Employee, 0, len(s.employees))
	for _, emp := range s.employees {
		if filter.Depot != "" && emp.Depot != filter.Depot {
			continue
		}
		out = append(out, *emp)
	}
	return out, nil
}

func (s *fakeStore) UpdateRequirements(_ context.Context, id string, set RequirementSet, expected int64) (int64, error) {
	emp, ok := s.employees[id]
	if !ok {
		return 0, ErrUnknownEmployee
	}
	if s.beforeWrite != nil {
		s.beforeWrite(emp)
	}
	if emp.RequirementsVersion != expected {
		return 0, ErrStaleWrite
	}
	s.writes++
	emp.Requirements = set.Clone()
	emp.RequirementsVersion++
	return emp.RequirementsVersion, nil
}

func newTestService(store StoreAPI) *Service {
	svc := NewService(store, nil)
	svc.Now = func() time.Time { return testAsOf }
	return svc
}

func TestServiceValidatePersistsAndBumpsVersion(t *testing.T) {
	emp := pendingExamEmployee()
	emp.RequirementsVersion = 4
	store := newFakeStore(emp)
	svc := newTestService(store)

	result, err := svc.Validate(context.Background(), emp.ID, "cbc", Decision{Outcome: "approve", ValidatedBy: "hr-1"}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Before.Status != StatusPending || result.Entry.Status != StatusApproved {
		t.Fatalf("unexpected before/after %s -> %s", result.Before.Status, result.Entry.Status)
	}
	if result.Evaluation.Version != 5 || result.Evaluation.Status != OverallComplete {
		t.Fatalf("unexpected evaluation %+v", result.Evaluation)
	}
	if store.writes != 1 || store.employees[emp.ID].Requirements.Record("cbc").Status != "approved" {
		t.Fatal("expected approval to be persisted")
	}
}

func TestServiceStaleWriteSurfaces(t *testing.T) {
	emp := pendingExamEmployee()
	store := newFakeStore(emp)
	store.beforeWrite = func(stored *Employee) {
		stored.RequirementsVersion++
	}
	svc := newTestService(store)

	_, err := svc.Validate(context.Background(), emp.ID, "cbc", Decision{Outcome: "approve"}, 0)
	if !errors.Is(err, ErrStaleWrite) {
		t.Fatalf("expected stale write, got %v", err)
	}
	if store.writes != 0 || store.employees[emp.ID].Requirements.Record("cbc").Status != "" {
		t.Fatal("nothing should be written on a stale write")
	}
}

func TestServiceRejectsOutdatedCallerVersion(t *testing.T) {
	emp := pendingExamEmployee()
	emp.RequirementsVersion = 7
	store := newFakeStore(emp)
	svc := newTestService(store)

	if _, err := svc.Validate(context.Background(), emp.ID, "cbc", Decision{Outcome: "approve"}, 6); !errors.Is(err, ErrStaleWrite) {
		t.Fatalf("expected stale write, got %v", err)
	}
	if store.writes != 0 {
		t.Fatalf("expected no writes, got %d", store.writes)
	}
}

func TestServiceRejectedMutationWritesNothing(t *testing.T) {
	emp := pendingExamEmployee()
	store := newFakeStore(emp)
	svc := newTestService(store)

	if _, err := svc.Validate(context.Background(), emp.ID, "cbc", Decision{Outcome: "resubmit"}, 0); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected missing remarks, got %v", err)
	}
	if _, err := svc.AddRequest(context.Background(), emp.ID, RequestInput{Label: "SSS ID", Deadline: "2026-04-01"}, 0); !errors.Is(err, ErrDuplicateRequirement) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if store.writes != 0 {
		t.Fatalf("expected no writes, got %d", store.writes)
	}
}

func TestServiceAddRequest(t *testing.T) {
	emp := completeOfficeEmployee()
	store := newFakeStore(emp)
	svc := newTestService(store)

	result, err := svc.AddRequest(context.Background(), emp.ID, RequestInput{Label: "Bank Form", Deadline: "2026-03-18", RequestedBy: "hr-2"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Request == nil || result.Entry.Key != result.Request.ID || !result.Entry.DeadlineSoon {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Evaluation.Status != OverallIncomplete {
		t.Fatalf("expected Incomplete with an unfiled request, got %s", result.Evaluation.Status)
	}
	if got := store.employees[emp.ID].Requirements.Requests; len(got) != 1 || got[0].RequestedBy != "hr-2" {
		t.Fatalf("unexpected stored requests %+v", got)
	}
}

func TestServiceRefusesToOverwriteUnreadableRequirements(t *testing.T) {
	emp := Employee{ID: "emp-9", Category: CategoryAgency, RequirementsVersion: 2}
	set, err := DecodeRequirements([]byte(`[1,2]`))
	if err == nil {
		t.Fatal("expected decode error for non-object blob")
	}
	emp.Requirements = set
	emp.RequirementsUnreadable = true
	store := newFakeStore(emp)
	svc := newTestService(store)

	if _, err := svc.AddRequest(context.Background(), emp.ID, RequestInput{Label: "Bank Form", Deadline: "2026-04-01"}, 0); !errors.Is(err, ErrUnreadableRequirements) {
		t.Fatalf("expected unreadable requirements, got %v", err)
	}
	if _, err := svc.Validate(context.Background(), emp.ID, "sss", Decision{Outcome: "approve"}, 0); !errors.Is(err, ErrUnreadableRequirements) {
		t.Fatalf("expected unreadable requirements, got %v", err)
	}
	if store.writes != 0 {
		t.Fatalf("expected no writes, got %d", store.writes)
	}

	eval, err := svc.Evaluate(context.Background(), emp.ID)
	if err != nil {
		t.Fatalf("reads stay available, got %v", err)
	}
	if eval.Status != OverallIncomplete {
		t.Fatalf("expected Incomplete, got %s", eval.Status)
	}
}

func TestServiceUnknownEmployee(t *testing.T) {
	svc := newTestService(newFakeStore())
	if _, err := svc.Evaluate(context.Background(), "missing"); !errors.Is(err, ErrUnknownEmployee) {
		t.Fatalf("expected unknown employee, got %v", err)
	}
	if _, err := svc.Validate(context.Background(), "missing", "cbc", Decision{Outcome: "approve"}, 0); !errors.Is(err, ErrUnknownEmployee) {
		t.Fatalf("expected unknown employee, got %v", err)
	}
}

func TestServiceListAndDepots(t *testing.T) {
	a := completeOfficeEmployee()
	b := completeOfficeEmployee()
	b.ID = "emp-2"
	b.Requirements.SetRecord("cbc", RequirementRecord{})
	store := newFakeStore(a, b)
	svc := newTestService(store)

	evals, err := svc.List(context.Background(), ListFilter{Limit: 10}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(evals) != 2 || evals[0].Entries != nil {
		t.Fatalf("expected two summaries without entries, got %+v", evals)
	}

	depots, err := svc.DepotCompliance(context.Background(), ListFilter{Limit: 1, Offset: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastFilter.Limit != 0 || store.lastFilter.Offset != 0 {
		t.Fatalf("depot rollup must not paginate, got %+v", store.lastFilter)
	}
	if len(depots) != 1 || depots[0].ApprovedSum != 33 || depots[0].TotalSum != 34 || depots[0].CompliancePercent != 97 {
		t.Fatalf("unexpected depots %+v", depots)
	}
}
