package auth

// Role classifies what a principal may do on the platform.
type Role string

const (
	RoleUser      Role = "USER"
	RoleOrganizer Role = "ORGANIZER"
	RoleAdmin     Role = "ADMIN"
)

// Kind tells which account surface the principal belongs to.
type Kind string

const (
	KindUser      Kind = "USER"
	KindOrganizer Kind = "ORGANIZER"
)

// Principal is the authenticated identity attached to a connection.
// It is immutable for the lifetime of that connection.
type Principal struct {
	ID   string
	Role Role
	Kind Kind
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindUser, KindOrganizer:
		return true
	}
	return false
}
