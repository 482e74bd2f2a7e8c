package domain

import "time"

// Membership roles. RoleClient is reserved: no access branch grants it.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleClient = "client"
)

// User models an authenticated actor, keyed by the identity provider's
// token identifier ("<issuer>|<subject>").
type User struct {
	ID              string    `json:"id" bson:"_id"`
	Name            string    `json:"name" bson:"name"`
	TokenIdentifier string    `json:"token_identifier" bson:"token_identifier"`
	OrgIDs          []string  `json:"org_ids" bson:"org_ids"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

// Membership links a user to an organization with a role.
type Membership struct {
	ID     string `json:"id" bson:"_id"`
	OrgID  string `json:"org_id" bson:"org_id"`
	UserID string `json:"user_id" bson:"user_id"`
	Role   string `json:"role" bson:"role"`
}

// ValidAssignableRole reports whether role can be granted through role management.
func ValidAssignableRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}
