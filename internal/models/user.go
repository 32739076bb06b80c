package models

import "time"

type User struct {
	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	Email       string `bson:"email" json:"email"`
	DisplayName string `bson:"display_name" json:"display_name"`
	Password    string `bson:"password" json:"-"` // Don't return password hash in JSON
}

// Public strips fields that must never leave the server, for embedding
// user records in friend lists and search results.
func (u User) Public() User {
	u.Password = ""
	return u
}
