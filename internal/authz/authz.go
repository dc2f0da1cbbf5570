// Package authz holds the access rules for every entity. The predicates are
// pure: the caller passes the Actor explicitly.
package authz

import "github.com/davidblanco1407/pma-frequency-backend/internal/model"

// Actor is the authenticated caller.
type Actor struct {
	AccountID uint
	Staff     bool
	Superuser bool
}

// IsStaff reports staff rights. Superusers always have them.
func (a Actor) IsStaff() bool { return a.Staff || a.Superuser }

// IsSuperuser reports superuser rights.
func (a Actor) IsSuperuser() bool { return a.Superuser }

// Authenticated reports whether the actor is a logged-in account.
func (a Actor) Authenticated() bool { return a.AccountID != 0 }

// Owns reports whether m belongs to the actor.
func (a Actor) Owns(m *model.Member) bool {
	return m != nil && a.Authenticated() && m.AccountID == a.AccountID
}

// ── members ──

// ContactFields are the member fields an owner may edit.
var ContactFields = []string{"full_name", "email", "phone"}

func CanReadMember(a Actor, m *model.Member) bool {
	return a.IsStaff() || a.Owns(m)
}

// CanListAllMembers is false for ordinary members, who only see themselves.
func CanListAllMembers(a Actor) bool { return a.IsStaff() }

func CanCreateMember(a Actor) bool { return a.IsStaff() }

// CanUpdateMember allows owners and staff. Owners are further limited to
// ContactFields; status changes are gated by the lifecycle policy.
func CanUpdateMember(a Actor, m *model.Member) bool {
	return a.IsStaff() || a.Owns(m)
}

// CanEditMemberField reports whether a may write field on m.
func CanEditMemberField(a Actor, m *model.Member, field string) bool {
	if a.IsStaff() {
		return true
	}
	if !a.Owns(m) {
		return false
	}
	for _, f := range ContactFields {
		if f == field {
			return true
		}
	}
	return false
}

// CanDeleteMember is always false. Members are deactivated instead.
func CanDeleteMember(Actor, *model.Member) bool { return false }

// CanViewMemberStats covers statistics and exports.
func CanViewMemberStats(a Actor) bool { return a.IsStaff() }

// ── sanctions ──

func CanManageSanctions(a Actor) bool { return a.IsStaff() }

// ── correction requests ──

// CanCreateCorrection requires a member profile as well; the service
// resolves it.
func CanCreateCorrection(a Actor) bool { return a.Authenticated() }

// CanReadCorrection allows the requesting member and staff.
func CanReadCorrection(a Actor, owner *model.Member) bool {
	return a.IsStaff() || a.Owns(owner)
}

func CanResolveCorrection(a Actor) bool { return a.IsStaff() }

// ── accounts ──

func CanManagePrivileges(a Actor) bool { return a.IsSuperuser() }
