package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/websense/RPL/models"
)

func newApp(status string) *models.Application {
	return &models.Application{
		ID:          primitive.NewObjectID(),
		UWAUnitCode: "CITS1401",
		Status:      status,
		SubmittedAt: time.Now().UTC(),
	}
}

func TestRecordCommentDerivesStatus(t *testing.T) {
	tests := []struct {
		ctype      string
		wantStatus string
	}{
		{TypeComment, StatusMoreInfo},
		{TypeApproved, StatusApprove},
		{TypeRejected, StatusReject},
	}
	for _, tc := range tests {
		app := newApp(StatusPending)
		comment, err := RecordComment(app, "studentservices", "looked at it", tc.ctype)
		require.NoError(t, err)
		assert.Equal(t, tc.wantStatus, app.Status)
		assert.Equal(t, tc.ctype, comment.Type)
		assert.Len(t, app.Comments, 1)
	}
}

func TestRecordCommentPassesUnknownTypeThrough(t *testing.T) {
	app := newApp(StatusPending)
	_, err := RecordComment(app, "uc", "needs escalation", "Escalated")
	require.NoError(t, err)
	assert.Equal(t, "Escalated", app.Status)
}

func TestRecordCommentEmptyTextRules(t *testing.T) {
	app := newApp(StatusPending)

	_, err := RecordComment(app, "uc", "   ", TypeComment)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, app.Comments, "rejected comment must not be appended")
	assert.Equal(t, StatusPending, app.Status, "rejected comment must not change status")

	// Decision comments fall back to canned text instead.
	comment, err := RecordComment(app, "uc", "", TypeApproved)
	require.NoError(t, err)
	assert.Equal(t, defaultDecisionText, comment.Text)
	assert.Equal(t, StatusApprove, app.Status)
}

func TestRecordCommentObsoleteKeepsStatus(t *testing.T) {
	app := newApp(StatusObsolete)
	_, err := RecordComment(app, "uc", "approving the old version", TypeApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusObsolete, app.Status)
	assert.Len(t, app.Comments, 1, "comment is still recorded")
}

func TestRecordCommentDefaultsAuthor(t *testing.T) {
	app := newApp(StatusPending)
	comment, err := RecordComment(app, "", "who wrote this", TypeComment)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", comment.Author)
}

func TestRecordCommentBothSurviveEitherOrder(t *testing.T) {
	// Two reviewers writing at the same moment can land in either order; both
	// comments must survive and the last writer's status wins.
	for _, order := range [][2]string{
		{TypeApproved, TypeRejected},
		{TypeRejected, TypeApproved},
	} {
		app := newApp(StatusPending)
		_, err := RecordComment(app, "uc", "first reviewer", order[0])
		require.NoError(t, err)
		_, err = RecordComment(app, "studentservices", "second reviewer", order[1])
		require.NoError(t, err)

		require.Len(t, app.Comments, 2)
		texts := []string{app.Comments[0].Text, app.Comments[1].Text}
		assert.ElementsMatch(t, []string{"first reviewer", "second reviewer"}, texts)
		assert.Equal(t, statusForType(order[1]), app.Status)
	}
}

func TestAssignToUnitCoordinator(t *testing.T) {
	app := newApp(StatusMoreInfo)
	comment := AssignToUnitCoordinator(app, "studentservices")

	assert.Equal(t, StatusPending, app.Status)
	assert.Equal(t, models.AssigneeUnitCoordinator, app.AssignedTo)
	assert.Equal(t, "CITS1401", app.AssignedUnitCode)
	assert.Equal(t, "Requested Unit Coordinator review", comment.Text)
	assert.Equal(t, "studentservices", comment.Author)
}

func TestAssignToUnitCoordinatorObsolete(t *testing.T) {
	app := newApp(StatusObsolete)
	AssignToUnitCoordinator(app, "studentservices")
	assert.Equal(t, StatusObsolete, app.Status)
	assert.Equal(t, models.AssigneeUnitCoordinator, app.AssignedTo)
}

func TestIsClosed(t *testing.T) {
	assert.True(t, IsClosed(StatusApprove))
	assert.True(t, IsClosed(StatusReject))
	assert.True(t, IsClosed(" approve "))
	assert.False(t, IsClosed(StatusPending))
	assert.False(t, IsClosed(StatusMoreInfo))
	assert.False(t, IsClosed(StatusObsolete))
}

func TestIsUrgentForCoordinator(t *testing.T) {
	app := newApp(StatusPending)
	app.AssignedTo = models.AssigneeUnitCoordinator
	app.AssignedUnitCode = "CITS1401"

	assert.True(t, IsUrgentForCoordinator(app, "cits1401"), "unit code match is case-insensitive")
	assert.False(t, IsUrgentForCoordinator(app, ""), "admin viewer sees no urgency flags")
	assert.False(t, IsUrgentForCoordinator(app, "PHYS2001"))

	closed := newApp(StatusApprove)
	closed.AssignedTo = models.AssigneeUnitCoordinator
	closed.AssignedUnitCode = "CITS1401"
	assert.False(t, IsUrgentForCoordinator(closed, "CITS1401"), "closed records are never urgent")

	unassigned := newApp(StatusPending)
	unassigned.AssignedTo = ""
	assert.False(t, IsUrgentForCoordinator(unassigned, "CITS1401"))
}

func TestIsUrgentFallsBackToUWAUnitCode(t *testing.T) {
	app := newApp(StatusPending)
	app.AssignedTo = models.AssigneeUnitCoordinator
	app.AssignedUnitCode = ""
	assert.True(t, IsUrgentForCoordinator(app, "CITS1401"))
}

func TestSortForDashboard(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	urgent := newApp(StatusPending)
	urgent.AssignedTo = models.AssigneeUnitCoordinator
	urgent.AssignedUnitCode = "CITS1401"
	urgent.SubmittedAt = base.AddDate(0, 0, 3)

	newer := newApp(StatusPending)
	newer.UWAUnitCode = "PHYS2001"
	newer.SubmittedAt = base.AddDate(0, 0, 10)

	older := newApp(StatusPending)
	older.UWAUnitCode = "MATH1011"
	older.SubmittedAt = base.AddDate(0, 0, 5)

	apps := []*models.Application{older, newer, urgent}
	SortForDashboard(apps, "CITS1401")

	require.Len(t, apps, 3)
	assert.Equal(t, urgent.ID, apps[0].ID, "urgent record sorts first despite being oldest")
	assert.Equal(t, newer.ID, apps[1].ID)
	assert.Equal(t, older.ID, apps[2].ID)
}

func TestSortForDashboardAdminNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	a := newApp(StatusPending)
	a.SubmittedAt = base
	b := newApp(StatusPending)
	b.SubmittedAt = base.AddDate(0, 0, 1)

	apps := []*models.Application{a, b}
	SortForDashboard(apps, "")
	assert.Equal(t, b.ID, apps[0].ID)
}

func TestSupersedeIdempotent(t *testing.T) {
	old := newApp(StatusMoreInfo)
	revised := newApp(StatusPending)

	Supersede(old, revised)
	assert.Equal(t, StatusObsolete, old.Status)
	assert.Equal(t, revised.ID, old.NewestVersionID)
	assert.Equal(t, old.ID, revised.PreviousID)

	// Applying the same link again changes nothing.
	Supersede(old, revised)
	assert.Equal(t, StatusObsolete, old.Status)
	assert.Equal(t, revised.ID, old.NewestVersionID)
	assert.Equal(t, old.ID, revised.PreviousID)
}

func TestVisibleByDefault(t *testing.T) {
	assert.True(t, VisibleByDefault(StatusPending))
	assert.True(t, VisibleByDefault(StatusMoreInfo))
	assert.False(t, VisibleByDefault(StatusApprove))
	assert.False(t, VisibleByDefault(StatusReject))
	assert.False(t, VisibleByDefault(StatusObsolete))
}
