package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Revision links a superseded application to its resubmission. The links form
// a simple linear chain, never a cycle.
type Revision struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OriginalID primitive.ObjectID `bson:"originalId" json:"originalId"`
	RevisedID  primitive.ObjectID `bson:"revisedId" json:"revisedId"`
}
