package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The password hash never leaves the server; handlers
// respond with UserSummary instead.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name given at registration.
//	Email        – unique email address, compared exactly.
//	PasswordHash – bcrypt hashed password.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password
	CreatedAt    time.Time // users.created_at
}

// UserSummary is the public view of a user returned on login.
type UserSummary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary drops the credential fields.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
