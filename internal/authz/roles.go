package authz

const (
	RoleComercial = 10
	RoleCRM       = 20
	RoleAudit     = 30
	RoleAdmin     = 50
)

// Actor is the resolved identity every core operation receives explicitly.
// Callers resolve the session once at the transport edge and pass it in;
// the core never reaches out to ambient session state.
type Actor struct {
	ID   int64
	Role int
}

func IsElevated(roleID int) bool {
	return roleID == RoleCRM || roleID == RoleAdmin
}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAudit
}

// CanAssign reports whether the role may manually reassign lead ownership.
func CanAssign(roleID int) bool {
	return roleID == RoleAdmin || roleID == RoleCRM
}
