package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is one review note on an application. The sequence is append-only;
// status history is reconstructed from it rather than stored separately.
type Comment struct {
	ApplicationID primitive.ObjectID `bson:"applicationId,omitempty" json:"applicationId,omitempty"`
	Author        string             `bson:"author" json:"author"`
	Text          string             `bson:"text" json:"text"`
	Type          string             `bson:"type" json:"type"`
	Timestamp     time.Time          `bson:"timestamp" json:"timestamp"`
}
