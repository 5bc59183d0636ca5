// Package rbac maps principal roles to the capabilities the changesets API checks.
package rbac

type Role string
type Capability string

const (
	RoleSubscriber    Role = "subscriber"
	RoleAuthor        Role = "author"
	RoleEditor        Role = "editor"
	RoleAdministrator Role = "administrator"
)

const (
	CapRead          Capability = "read"
	CapCreate        Capability = "create"
	CapEdit          Capability = "edit"
	CapEditOthers    Capability = "edit-others"
	CapDelete        Capability = "delete"
	CapDeleteOthers  Capability = "delete-others"
	CapPublish       Capability = "publish"
	CapManageOptions Capability = "manage-options"
)

func Can(role Role, cap Capability) bool {
	switch role {
	case RoleAdministrator:
		return true
	case RoleEditor:
		return cap != CapManageOptions
	case RoleAuthor:
		return cap == CapRead || cap == CapCreate || cap == CapEdit || cap == CapDelete
	case RoleSubscriber:
		return cap == CapRead
	default:
		return false
	}
}

// CanForAuthor checks an object-scoped capability: acting on a changeset owned
// by someone else requires the matching "-others" capability on top of the base one.
func CanForAuthor(role Role, cap Capability, ownerID, principalID int64) bool {
	if !Can(role, cap) {
		return false
	}
	if ownerID == 0 || ownerID == principalID {
		return true
	}
	switch cap {
	case CapEdit:
		return Can(role, CapEditOthers)
	case CapDelete:
		return Can(role, CapDeleteOthers)
	default:
		return true
	}
}

func Normalize(role string) Role {
	switch Role(role) {
	case RoleSubscriber, RoleAuthor, RoleEditor, RoleAdministrator:
		return Role(role)
	default:
		return RoleSubscriber
	}
}
