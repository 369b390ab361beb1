package models

// User is an account. PasswordHash is never serialized.
type User struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            Role   `json:"role"`
	Active          bool   `json:"active"`
	PasswordChanged bool   `json:"updated"`
	PasswordHash    string `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == SystemAdministrator
}
