package access

type Role string

const (
	RoleNone   Role = ""
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

type Permission string

const (
	CanEdit   Permission = "canEdit"
	CanDelete Permission = "canDelete"
	CanUpload Permission = "canUpload"
)

// AllPermissions lists every gated action in display order.
var AllPermissions = []Permission{CanEdit, CanDelete, CanUpload}

var rolePermissions = map[Role]map[Permission]bool{
	RoleAdmin: {
		CanEdit:   true,
		CanDelete: true,
		CanUpload: true,
	},
	RoleViewer: {
		CanEdit:   false,
		CanDelete: false,
		CanUpload: false,
	},
}

// Permissions returns the capability set of a role. Unknown roles and the
// empty role get nothing.
func Permissions(role Role) map[Permission]bool {
	out := make(map[Permission]bool, len(AllPermissions))
	for _, p := range AllPermissions {
		out[p] = rolePermissions[role][p]
	}
	return out
}

// RoleSource reports the role of the current session.
type RoleSource interface {
	Role() Role
}

// Gate answers permission checks for the UI. The backend remains the
// enforcement point.
type Gate struct {
	roles RoleSource
}

func NewGate(roles RoleSource) *Gate {
	return &Gate{roles: roles}
}

func (g *Gate) HasPermission(p Permission) bool {
	if g == nil || g.roles == nil {
		return false
	}
	return rolePermissions[g.roles.Role()][p]
}
