package models

import "time"

// User represents a user account in the system.
//
// PasswordHash and RefreshToken are credential fields: they are never
// serialized, and service methods zero them before returning a record.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatarUrl"`
	CoverImageURL string    `json:"coverImageUrl"`
	PasswordHash  string    `json:"-"`
	RefreshToken  string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Sanitize strips the credential fields from the record in place.
func (u *User) Sanitize() {
	u.PasswordHash = ""
	u.RefreshToken = ""
}
