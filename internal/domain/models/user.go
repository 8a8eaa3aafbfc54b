// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an author record. User profiles are owned by an external system;
// this service reads them for expansion and maintains ThreadIDs, the list
// of root posts the user has created.
//
// NOTE:
//   - ThreadIDs lists root posts only. Replies are reachable through their
//     parent's child list and are never appended here.
//   - The cascading delete retracts deleted ids from ThreadIDs; once a
//     cascade has fully succeeded the list must not reference any thread
//     that no longer exists.
type User struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username   string               `bson:"username" json:"username"`
	UsernameCI string               `bson:"username_ci" json:"username_ci"` // lowercase, diacritics-stripped
	FullName   string               `bson:"full_name" json:"full_name"`
	FullNameCI string               `bson:"full_name_ci" json:"full_name_ci"`
	Bio        string               `bson:"bio,omitempty" json:"bio,omitempty"`
	ImageURL   string               `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Onboarded  bool                 `bson:"onboarded" json:"onboarded"`
	ThreadIDs  []primitive.ObjectID `bson:"thread_ids" json:"thread_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
