package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApplicationRoundTripPreservesUnitOrder(t *testing.T) {
	units := []primitive.ObjectID{
		primitive.NewObjectID(),
		primitive.NewObjectID(),
		primitive.NewObjectID(),
	}
	app := Application{
		ID:            primitive.NewObjectID(),
		FirstName:     "Asha",
		LastName:      "Rao",
		Email:         "asha@example.com",
		UWAUnitCode:   "CITS1401",
		Status:        "Pending",
		SubmittedAt:   time.Now().UTC().Truncate(time.Millisecond),
		ProposedUnits: units,
		Comments:      []Comment{},
	}

	raw, err := bson.Marshal(app)
	require.NoError(t, err)

	var decoded Application
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	assert.Equal(t, units, decoded.ProposedUnits, "applicant's unit order must survive storage")
	assert.Equal(t, app.ID, decoded.ID)
	assert.Equal(t, app.UWAUnitCode, decoded.UWAUnitCode)
	assert.Equal(t, app.Status, decoded.Status)
}

func TestCommentRoundTrip(t *testing.T) {
	comment := Comment{
		ApplicationID: primitive.NewObjectID(),
		Author:        "studentservices",
		Text:          "please attach the unit outline",
		Type:          "Comment",
		Timestamp:     time.Now().UTC().Truncate(time.Millisecond),
	}

	raw, err := bson.Marshal(comment)
	require.NoError(t, err)

	var decoded Comment
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, comment, decoded)
}
