// server/internal/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User struct matches the document in MongoDB
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email     string             `bson:"email" json:"email"`
	Username  string             `bson:"username,omitempty" json:"username,omitempty"`
	FullName  string             `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the public view returned on login.
type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID.Hex(),
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
	}
}
