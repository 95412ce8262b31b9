package models

// Role identifies the kind of authenticated principal. Login tries the
// kinds in a fixed order: admin, then manager, then fc.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleFC      Role = "fc"
)
