package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is the identity behind a privileged request. It is resolved per
// request and never written back.
type Principal struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

func (p Principal) IsElevated() bool {
	return p.Role == RoleAdmin && p.Active
}
