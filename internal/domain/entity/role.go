package entity

// Role ID constants, matching the roles table owned by the auth service
const (
	RoleIDAdmin   = 1
	RoleIDStaff   = 2
	RoleIDPatient = 3
)

// RoleNames constants
const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RolePatient = "patient"
)

// RoleName returns the role name for id, or an empty string when unknown
func RoleName(id int) string {
	switch id {
	case RoleIDAdmin:
		return RoleAdmin
	case RoleIDStaff:
		return RoleStaff
	case RoleIDPatient:
		return RolePatient
	}
	return ""
}
