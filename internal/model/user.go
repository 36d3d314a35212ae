package model

import "time"

// User represents an application user record as stored in the `users`
// table. The password is stored only as a bcrypt hash. Handlers define
// their own response types; this struct is internal to the repository
// layer, which is why it carries no json tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name, echoed in availability views.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
