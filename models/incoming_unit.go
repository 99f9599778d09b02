package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IncomingUnit is a unit completed at another institution, proposed as
// equivalent to a UWA unit. Each document belongs to exactly one Application.
type IncomingUnit struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UniversityName        string             `bson:"universityName" json:"universityName"`
	UnitCode              string             `bson:"unitCode" json:"unitCode"`
	UnitName              string             `bson:"unitName" json:"unitName"`
	Level                 string             `bson:"level,omitempty" json:"level,omitempty"`
	ContactHours          string             `bson:"contactHours,omitempty" json:"contactHours,omitempty"`
	LearningOutcomes      string             `bson:"learningOutcomes,omitempty" json:"learningOutcomes,omitempty"`
	IndicativeAssessments string             `bson:"indicativeAssessments,omitempty" json:"indicativeAssessments,omitempty"`
	CreditPoints          string             `bson:"creditPoints,omitempty" json:"creditPoints,omitempty"`
	OutlineLink           string             `bson:"outlineLink,omitempty" json:"outlineLink,omitempty"`
	CompletedYear         string             `bson:"completedYear,omitempty" json:"completedYear,omitempty"`
	SubmittedAt           time.Time          `bson:"submittedAt" json:"submittedAt"`
}
