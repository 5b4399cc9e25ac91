package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeadStatus_Valid(t *testing.T) {
	for _, s := range LeadStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, LeadStatus("approved").Valid())
	assert.False(t, LeadStatus("").Valid())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleBranchHead.Valid())
	assert.False(t, Role("superuser").Valid())
}

func TestActor_SeesAllBranches(t *testing.T) {
	assert.True(t, Actor{Role: RoleOwner}.SeesAllBranches())
	assert.True(t, Actor{Role: RoleAdmin}.SeesAllBranches())
	assert.False(t, Actor{Role: RoleManager, BranchID: "b1"}.SeesAllBranches())
}

func TestStaff_Actor(t *testing.T) {
	branch := "b1"
	s := &Staff{ID: "s1", Role: RoleStaff, BranchID: &branch}
	assert.Equal(t, Actor{StaffID: "s1", Role: RoleStaff, BranchID: "b1"}, s.Actor())

	s.BranchID = nil
	assert.Equal(t, "", s.Actor().BranchID)
}

func TestStringPtrAndDeref(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	assert.Equal(t, "x", Deref(StringPtr("x")))
	assert.Equal(t, "", Deref(nil))
}
