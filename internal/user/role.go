package user

// Role is the privilege tier of an identity. Higher values grant more.
type Role int

const (
	RoleVisitor Role = iota
	RoleUser
	RoleRoot
)

// ParseRole maps the stored role name to a Role. Unknown names fall back to
// RoleUser, the column default.
func ParseRole(s string) Role {
	switch s {
	case "root":
		return RoleRoot
	case "visitor":
		return RoleVisitor
	default:
		return RoleUser
	}
}

func (r Role) String() string {
	switch r {
	case RoleRoot:
		return "root"
	case RoleVisitor:
		return "visitor"
	default:
		return "user"
	}
}

// Level is the numeric rank used for comparisons.
func (r Role) Level() int {
	return int(r)
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return r.Level() >= min.Level()
}

// AssignableRoles lists the roles an account can be given.
func AssignableRoles() []Role {
	return []Role{RoleRoot, RoleUser}
}
