package entity

import (
	"hydrostock/internal/core/id"
)

// Location is a storage location at the bottom of the
// Organization -> Branch -> System -> Storage Location hierarchy.
// The ledger reads only ID and BranchID.
type Location struct {
	ID             id.ID  `db:"id" json:"id"`
	Code           string `db:"code" json:"code"`
	Name           string `db:"name" json:"name"`
	SystemID       id.ID  `db:"system_id" json:"systemId"`
	BranchID       id.ID  `db:"branch_id" json:"branchId"`
	OrganizationID id.ID  `db:"organization_id" json:"organizationId"`
}

// SameBranch reports whether both locations belong to one branch.
func (l *Location) SameBranch(other *Location) bool {
	if l == nil || other == nil {
		return false
	}
	return l.BranchID == other.BranchID
}
