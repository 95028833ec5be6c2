// server/internal/models/user.go
package models

import "time"

// User struct matches the document in the users collection.
type User struct {
	ID          string    `bson:"_id,omitempty" json:"uid"`
	Email       string    `bson:"email" json:"email"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	Password    string    `bson:"password" json:"-"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
