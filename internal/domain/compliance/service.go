package compliance

import (
	"context"
	"time"
)

type Service struct {
	Store     StoreAPI
	Evaluator *Evaluator
	Now       func() time.Time
}

func NewService(store StoreAPI, evaluator *Evaluator) *Service {
	if evaluator == nil {
		evaluator = NewEvaluator()
	}
	return &Service{Store: store, Evaluator: evaluator, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) GetEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	return s.Store.GetEmployee(ctx, employeeID)
}

func (s *Service) Evaluate(ctx context.Context, employeeID string) (Evaluation, error) {
	emp, err := s.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Evaluation{}, err
	}
	return s.EvaluateEmployee(*emp), nil
}

// EvaluateEmployee evaluates an already loaded employee as of now.
func (s *Service) EvaluateEmployee(emp Employee) Evaluation {
	return s.Evaluator.Evaluate(emp, s.now())
}

// List evaluates every employee matching filter. Entries are dropped from the
// result unless withEntries is set.
func (s *Service) List(ctx context.Context, filter ListFilter, withEntries bool) ([]Evaluation, error) {
	employees, err := s.Store.ListEmployees(ctx, filter)
	if err != nil {
		return nil, err
	}
	asOf := s.now()
	out := make([]Evaluation, 0, len(employees))
	for _, emp := range employees {
		eval := s.Evaluator.Evaluate(emp, asOf)
		if !withEntries {
			eval.Entries = nil
		}
		out = append(out, eval)
	}
	return out, nil
}

func (s *Service) DepotCompliance(ctx context.Context, filter ListFilter) ([]DepotCompliance, error) {
	filter.Limit, filter.Offset = 0, 0
	evals, err := s.List(ctx, filter, false)
	if err != nil {
		return nil, err
	}
	return ComplianceByDepot(evals), nil
}

// MutationResult is the outcome of a validate or request action. Before holds
// the entry state prior to the change for auditing; it is zero for new requests.
type MutationResult struct {
	Before     Entry      `json:"-"`
	Entry      Entry      `json:"entry"`
	Request    *HrRequest `json:"request,omitempty"`
	Evaluation Evaluation `json:"evaluation"`
}

// Validate records an HR decision on one requirement. The change is a single
// conditional write against the version that was read; a concurrent change
// surfaces as ErrStaleWrite and nothing is written. A positive expectedVersion
// additionally requires the caller's view to be current.
func (s *Service) Validate(ctx context.Context, employeeID, key string, decision Decision, expectedVersion int64) (MutationResult, error) {
	return s.mutate(ctx, employeeID, expectedVersion, func(emp *Employee, asOf time.Time) (MutationResult, error) {
		before := s.findEntry(*emp, key, asOf)
		entry, err := s.Evaluator.ApplyValidation(emp, key, decision, asOf)
		if err != nil {
			return MutationResult{Entry: entry}, err
		}
		return MutationResult{Before: before, Entry: entry}, nil
	})
}

// AddRequest appends an ad-hoc HR requirement, with the same write semantics
// as Validate.
func (s *Service) AddRequest(ctx context.Context, employeeID string, input RequestInput, expectedVersion int64) (MutationResult, error) {
	return s.mutate(ctx, employeeID, expectedVersion, func(emp *Employee, asOf time.Time) (MutationResult, error) {
		req, err := AddRequest(emp, input, asOf)
		if err != nil {
			return MutationResult{}, err
		}
		return MutationResult{Entry: s.Evaluator.RequestEntry(req, asOf), Request: &req}, nil
	})
}

func (s *Service) mutate(ctx context.Context, employeeID string, expectedVersion int64, apply func(*Employee, time.Time) (MutationResult, error)) (MutationResult, error) {
	emp, err := s.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return MutationResult{}, err
	}
	if emp.RequirementsUnreadable {
		return MutationResult{}, ErrUnreadableRequirements
	}
	if expectedVersion > 0 && expectedVersion != emp.RequirementsVersion {
		return MutationResult{}, ErrStaleWrite
	}
	asOf := s.now()

	working := *emp
	working.Requirements = emp.Requirements.Clone()
	result, err := apply(&working, asOf)
	if err != nil {
		return result, err
	}

	version, err := s.Store.UpdateRequirements(ctx, employeeID, working.Requirements, emp.RequirementsVersion)
	if err != nil {
		return MutationResult{}, err
	}
	working.RequirementsVersion = version
	result.Evaluation = s.Evaluator.Evaluate(working, asOf)
	return result, nil
}

func (s *Service) findEntry(emp Employee, key string, asOf time.Time) Entry {
	if def, ok := s.Evaluator.applicableDefinition(emp, key); ok {
		return s.Evaluator.Entry(def, emp, emp.Requirements.Record(def.Key), asOf)
	}
	for _, req := range emp.Requirements.Requests {
		if req.ID == key {
			return s.Evaluator.RequestEntry(req, asOf)
		}
	}
	return Entry{}
}
