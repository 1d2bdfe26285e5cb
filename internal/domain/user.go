package domain

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	RoleID   int64  `json:"role_id"`
}

func (u User) EntityID() int64 { return u.ID }

// LoginResponse is returned by the auth endpoint: a bearer token plus the
// authenticated user's profile.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UserSettings is part of the UserDetail aggregate: contact info plus the
// payment methods linked to the account.
type UserSettings struct {
	Phone    string    `json:"phone"`
	Address  string    `json:"address"`
	Payments []Payment `json:"payments"`
}

// UserDetail is the aggregate read-model for one user: profile, settings
// and order history. Produced by the server, never mutated locally.
type UserDetail struct {
	ID       int64        `json:"id"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	RoleID   int64        `json:"role_id"`
	Settings UserSettings `json:"settings"`
	Orders   []Order      `json:"orders"`
}

func (d UserDetail) EntityID() int64 { return d.ID }
