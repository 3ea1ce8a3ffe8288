package auth

// Permission represents a named capability.
type Permission string

// Permission constants.
const (
	PermEntityRead  Permission = "entity:read"
	PermEntityWrite Permission = "entity:write"
	PermSystemAdmin Permission = "system:admin"
)

// rolePermissions is the single source of truth for the authorisation model.
var rolePermissions = map[Role][]Permission{
	RoleViewer:   {PermEntityRead},
	RoleOperator: {PermEntityRead, PermEntityWrite},
	RoleAdmin:    {PermEntityRead, PermEntityWrite, PermSystemAdmin},
}

// HasPermission returns true if role grants perm.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
