package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
//
// owner manages the mailbox and the reputation registry.
// viewer can read the call log and messages but not mutate anything.
// admin is the maintenance role and bypasses all checks.
const (
	RoleOwner  = "owner"
	RoleViewer = "viewer"
	RoleAdmin  = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }
