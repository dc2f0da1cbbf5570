// Package lifecycle implements the member status policy: who may deactivate
// or reactivate a member and what a status change writes. Apply is pure; the
// caller loads and stores the State under a row lock.
package lifecycle

import (
	"time"

	"github.com/davidblanco1407/pma-frequency-backend/internal/authz"
	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
	apperrors "github.com/davidblanco1407/pma-frequency-backend/pkg/errors"
)

var (
	ErrStatusChangeForbidden = apperrors.Forbidden(40310, "only staff can change a member's status")
	ErrReactivationForbidden = apperrors.Forbidden(40311, "this member cannot be reactivated; only a superuser can do it")
	ErrLiftBlockForbidden    = apperrors.Forbidden(40312, "only a superuser can lift a permanent block")
	ErrDecisionRequired      = apperrors.Validation(40010, "an inactive member needs a return decision").WithField("may_return", "required when deactivating")
)

// Decision is the return decision recorded when a member is deactivated.
// The zero value is not a decision.
type Decision int

const (
	MayReturn Decision = iota + 1
	Blocked
)

// Policy maps the decision onto its stored value.
func (d Decision) Policy() model.ReturnPolicy {
	switch d {
	case MayReturn:
		return model.ReturnPolicyMayReturn
	case Blocked:
		return model.ReturnPolicyBlocked
	default:
		return model.ReturnPolicyUnset
	}
}

// DecisionOf returns the decision stored in p, false when unset.
func DecisionOf(p model.ReturnPolicy) (Decision, bool) {
	switch p {
	case model.ReturnPolicyMayReturn:
		return MayReturn, true
	case model.ReturnPolicyBlocked:
		return Blocked, true
	default:
		return 0, false
	}
}

// DecisionFor converts the API's may_return flag.
func DecisionFor(mayReturn bool) Decision {
	if mayReturn {
		return MayReturn
	}
	return Blocked
}

// State is the lifecycle slice of a member row.
type State struct {
	Active        bool
	Policy        model.ReturnPolicy
	DeactivatedAt *time.Time
	DeactivatedBy *uint
}

// StateOf extracts the lifecycle state of m.
func StateOf(m *model.Member) State {
	return State{
		Active:        m.Active,
		Policy:        m.ReturnPolicy,
		DeactivatedAt: m.DeactivatedAt,
		DeactivatedBy: m.DeactivatedBy,
	}
}

// Consistent reports whether s satisfies the storage invariants: inactive
// exactly when deactivated_at is set, never inactive without a decision and
// never active with one.
func (s State) Consistent() bool {
	if s.Active {
		return s.DeactivatedAt == nil && s.DeactivatedBy == nil && s.Policy == model.ReturnPolicyUnset
	}
	_, decided := DecisionOf(s.Policy)
	return s.DeactivatedAt != nil && decided
}

// Change is a requested status edit. Nil fields are left alone.
type Change struct {
	Active   *bool
	Decision *Decision
}

// Empty reports whether the change touches no status field.
func (c Change) Empty() bool { return c.Active == nil && c.Decision == nil }

// Apply validates change against current on behalf of actor and returns the
// state to store. On error current is to be kept unchanged.
//
// A decision only lives on inactive rows: reactivation clears it, so the next
// deactivation of the member needs a fresh one.
func Apply(actor authz.Actor, current State, change Change, now time.Time) (State, error) {
	if change.Empty() {
		return current, nil
	}
	if !actor.IsStaff() {
		return current, ErrStatusChangeForbidden
	}

	next := current
	if current.Active {
		next.Policy = model.ReturnPolicyUnset
	}
	if change.Decision != nil {
		next.Policy = change.Decision.Policy()
	}
	if change.Active != nil {
		next.Active = *change.Active
	}

	if !current.Active && current.Policy == model.ReturnPolicyBlocked &&
		next.Policy != model.ReturnPolicyBlocked && !actor.IsSuperuser() {
		return current, ErrLiftBlockForbidden
	}

	switch {
	case next.Active:
		if !current.Active && !canReactivate(actor, current.Policy, next.Policy) {
			return current, ErrReactivationForbidden
		}
		next.Policy = model.ReturnPolicyUnset
		next.DeactivatedAt = nil
		next.DeactivatedBy = nil

	default:
		if _, ok := DecisionOf(next.Policy); !ok {
			return current, ErrDecisionRequired
		}
		if current.Active || next.DeactivatedAt == nil {
			at := now
			by := actor.AccountID
			next.DeactivatedAt = &at
			next.DeactivatedBy = &by
		}
	}

	return next, nil
}

// canReactivate: staff may bring back a member whose stored and resulting
// decisions are both may_return. Anything else needs a superuser.
func canReactivate(actor authz.Actor, stored, next model.ReturnPolicy) bool {
	if actor.IsSuperuser() {
		return true
	}
	return stored == model.ReturnPolicyMayReturn && next == model.ReturnPolicyMayReturn
}
