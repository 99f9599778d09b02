package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment markers for records handed to a specific reviewer group.
const (
	AssigneeUnitCoordinator = "uc"
	AssigneeAdmin           = "admin"
)

// Application is one persisted RPL request. A multi-unit submission fans out
// into one Application per UWA unit; ProposedUnits references the external
// units the applicant proposes as equivalent, in the order they were listed.
type Application struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FirstName        string               `bson:"firstName" json:"firstName"`
	LastName         string               `bson:"lastName" json:"lastName"`
	Email            string               `bson:"email" json:"email"`
	UWAUnitCode      string               `bson:"uwaUnitCode" json:"uwaUnitCode"`
	Status           string               `bson:"status" json:"status"`
	SubmittedAt      time.Time            `bson:"submittedAt" json:"submittedAt"`
	ProposedUnits    []primitive.ObjectID `bson:"proposedUnits" json:"proposedUnits"`
	Comments         []Comment            `bson:"comments" json:"comments"`
	SupportingDocs   []string             `bson:"supportingDocs,omitempty" json:"supportingDocs,omitempty"`
	AssignedTo       string               `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	AssignedUnitCode string               `bson:"assignedUnitCode,omitempty" json:"assignedUnitCode,omitempty"`
	PreviousID       primitive.ObjectID   `bson:"previousId,omitempty" json:"previousId,omitempty"`
	NewestVersionID  primitive.ObjectID   `bson:"newestVersionId,omitempty" json:"newestVersionId,omitempty"`
	UpdatedAt        time.Time            `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
