package dto

// UpdatePrivilegesRequest grants or revokes staff rights.
type UpdatePrivilegesRequest struct {
	IsStaff *bool `json:"is_staff" binding:"required"`
}
