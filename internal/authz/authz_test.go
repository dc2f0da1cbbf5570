package authz

import (
	"testing"

	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
)

var (
	anonymous = Actor{}
	owner     = Actor{AccountID: 10}
	stranger  = Actor{AccountID: 11}
	staff     = Actor{AccountID: 20, Staff: true}
	superuser = Actor{AccountID: 30, Superuser: true}

	member = &model.Member{ID: 1, AccountID: 10}
)

func TestMemberAccess(t *testing.T) {
	tests := []struct {
		name               string
		actor              Actor
		read, update, create bool
	}{
		{"anonymous", anonymous, false, false, false},
		{"owner", owner, true, true, false},
		{"stranger", stranger, false, false, false},
		{"staff", staff, true, true, true},
		{"superuser", superuser, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanReadMember(tt.actor, member); got != tt.read {
				t.Errorf("CanReadMember = %v, want %v", got, tt.read)
			}
			if got := CanUpdateMember(tt.actor, member); got != tt.update {
				t.Errorf("CanUpdateMember = %v, want %v", got, tt.update)
			}
			if got := CanCreateMember(tt.actor); got != tt.create {
				t.Errorf("CanCreateMember = %v, want %v", got, tt.create)
			}
			if CanDeleteMember(tt.actor, member) {
				t.Error("CanDeleteMember must always be false")
			}
		})
	}
}

func TestAnonymousOwnsNothing(t *testing.T) {
	orphan := &model.Member{ID: 2}
	if anonymous.Owns(orphan) {
		t.Error("an unauthenticated actor must not own a member with account id 0")
	}
	if owner.Owns(nil) {
		t.Error("nobody owns a nil member")
	}
}

func TestCanEditMemberField(t *testing.T) {
	for _, f := range ContactFields {
		if !CanEditMemberField(owner, member, f) {
			t.Errorf("owner should edit %s", f)
		}
		if CanEditMemberField(stranger, member, f) {
			t.Errorf("stranger must not edit %s", f)
		}
	}
	for _, f := range []string{"active", "may_return"} {
		if CanEditMemberField(owner, member, f) {
			t.Errorf("owner must not edit %s", f)
		}
		if !CanEditMemberField(staff, member, f) {
			t.Errorf("staff should edit %s", f)
		}
	}
}

func TestStaffOnlyRules(t *testing.T) {
	for _, a := range []Actor{anonymous, owner, stranger} {
		if CanManageSanctions(a) || CanResolveCorrection(a) || CanViewMemberStats(a) || CanListAllMembers(a) {
			t.Errorf("%+v must not pass staff-only rules", a)
		}
	}
	for _, a := range []Actor{staff, superuser} {
		if !CanManageSanctions(a) || !CanResolveCorrection(a) || !CanViewMemberStats(a) || !CanListAllMembers(a) {
			t.Errorf("%+v should pass staff-only rules", a)
		}
	}
}

func TestCorrectionAccess(t *testing.T) {
	if !CanCreateCorrection(owner) || CanCreateCorrection(anonymous) {
		t.Error("CanCreateCorrection mismatch")
	}
	if !CanReadCorrection(owner, member) || CanReadCorrection(stranger, member) || !CanReadCorrection(staff, member) {
		t.Error("CanReadCorrection mismatch")
	}
}

func TestCanManagePrivileges(t *testing.T) {
	if CanManagePrivileges(staff) {
		t.Error("staff must not manage privileges")
	}
	if !CanManagePrivileges(superuser) {
		t.Error("superuser should manage privileges")
	}
}
