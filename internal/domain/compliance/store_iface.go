package compliance

import "context"

type ListFilter struct {
	Depot    string
	Category Category
	Limit    int
	Offset   int
}

type StoreAPI interface {
	GetEmployee(ctx context.Context, employeeID string) (*Employee, error)
	ListEmployees(ctx context.Context, filter ListFilter) ([]Employee, error)
	// UpdateRequirements writes set only if the stored version still equals
	// expectedVersion, returning the new version. ErrStaleWrite otherwise.
	UpdateRequirements(ctx context.Context, employeeID string, set RequirementSet, expectedVersion int64) (int64, error)
}
