package model

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// User is the minimal account record the engine needs for bearer-token
// verification. Account management lives elsewhere.
type User struct {
	ID        string    `json:"id"         bson:"_id"`
	UserName  string    `json:"user_name"  bson:"userName"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}

// UserClaims is the JWT claim set issued by the auth service. Subject
// carries the viewer id.
type UserClaims struct {
	UserName string `json:"user_name"`
	jwt.StandardClaims
}
