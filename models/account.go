package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUsername is the student-services account with cross-unit visibility.
// Every other account is a unit coordinator whose username is their unit code.
const AdminUsername = "studentservices"

type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	ViewUnitCode string             `bson:"viewUnitcode,omitempty" json:"viewUnitcode,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
