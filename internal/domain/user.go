package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// CallerIdentity is resolved once per request by the auth layer and passed by value.
type CallerIdentity struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (c CallerIdentity) IsAdmin() bool {
	return c.Role == RoleAdmin
}

func (c CallerIdentity) IsAuthenticated() bool {
	return c.ID != ""
}
