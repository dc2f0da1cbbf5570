package lifecycle

import "fmt"

// BulkAction is one of the batch status operations.
type BulkAction string

const (
	BulkReactivate          BulkAction = "reactivate"
	BulkDeactivateTemporary BulkAction = "deactivate_temporary"
	BulkDeactivatePermanent BulkAction = "deactivate_permanent"
)

// ParseBulkAction validates s.
func ParseBulkAction(s string) (BulkAction, error) {
	switch a := BulkAction(s); a {
	case BulkReactivate, BulkDeactivateTemporary, BulkDeactivatePermanent:
		return a, nil
	}
	return "", fmt.Errorf("unknown bulk action %q", s)
}

// AppliesTo reports whether the action selects a member in state s.
// Reactivation only picks returnable inactive members; deactivations only
// pick active ones.
func (a BulkAction) AppliesTo(s State) bool {
	switch a {
	case BulkReactivate:
		d, ok := DecisionOf(s.Policy)
		return !s.Active && ok && d == MayReturn
	case BulkDeactivateTemporary, BulkDeactivatePermanent:
		return s.Active
	}
	return false
}

// Change is the status edit the action performs.
func (a BulkAction) Change() Change {
	active := a == BulkReactivate
	d := MayReturn
	if a == BulkDeactivatePermanent {
		d = Blocked
	}
	return Change{Active: &active, Decision: &d}
}
