// Package workflow holds the application status rules. Every operation here
// mutates in-memory records only; callers persist the result. Keeping the
// rules out of the HTTP handlers makes the review flow testable without a
// database.
package workflow

import (
	"sort"
	"strings"
	"time"

	"github.com/websense/RPL/models"
)

// Application statuses.
const (
	StatusPending  = "Pending"
	StatusMoreInfo = "Request Further Information"
	StatusApprove  = "Approve"
	StatusReject   = "Reject"
	StatusObsolete = "Obsolete"
)

// Comment types recognised by the status derivation. Other type values are
// passed through verbatim as the new status; callers are expected to validate
// the type before recording.
const (
	TypeComment  = "Comment"
	TypeApproved = "Approved"
	TypeRejected = "Rejected"
)

// Canned text used when a decision comment arrives without a message.
const defaultDecisionText = "No additional comment provided."

// ValidationError reports a comment that failed the recording rules.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// statusForType derives the status a comment type implies. The empty second
// return means "leave the status alone".
func statusForType(ctype string) string {
	switch ctype {
	case TypeComment:
		return StatusMoreInfo
	case TypeApproved:
		return StatusApprove
	case TypeRejected:
		return StatusReject
	default:
		// Open extension point: unrecognised types become the status verbatim.
		return ctype
	}
}

// RecordComment appends a review comment to the application and derives the
// new status from the comment type. Informational comments must carry text;
// decision comments fall back to a canned message. An Obsolete application
// keeps its status (the comment is still appended).
func RecordComment(app *models.Application, author, text, ctype string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		if ctype == TypeComment {
			return models.Comment{}, &ValidationError{Msg: "comment text is required"}
		}
		text = defaultDecisionText
	}
	if author == "" {
		author = "Unknown"
	}

	comment := models.Comment{
		ApplicationID: app.ID,
		Author:        author,
		Text:          text,
		Type:          ctype,
		Timestamp:     time.Now().UTC(),
	}
	app.Comments = append(app.Comments, comment)

	if app.Status != StatusObsolete {
		app.Status = statusForType(ctype)
		app.UpdatedAt = comment.Timestamp
	}
	return comment, nil
}

// AssignToUnitCoordinator hands the application to the coordinator of its UWA
// unit for review, resetting the status to Pending and leaving an audit
// comment. Obsolete records keep their status.
func AssignToUnitCoordinator(app *models.Application, actor string) models.Comment {
	now := time.Now().UTC()
	comment := models.Comment{
		ApplicationID: app.ID,
		Author:        actor,
		Text:          "Requested Unit Coordinator review",
		Type:          StatusPending,
		Timestamp:     now,
	}
	app.Comments = append(app.Comments, comment)
	app.AssignedTo = models.AssigneeUnitCoordinator
	app.AssignedUnitCode = app.UWAUnitCode

	if app.Status != StatusObsolete {
		app.Status = StatusPending
		app.UpdatedAt = now
	}
	return comment
}

// IsClosed reports whether a status means the review has finished.
func IsClosed(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	return s == strings.ToLower(StatusApprove) || s == strings.ToLower(StatusReject)
}

// IsUrgentForCoordinator reports whether the application should be flagged for
// the coordinator identified by viewerUnitCode: still open, assigned to the
// coordinator role, and assigned to that coordinator's unit. Purely a
// dashboard ordering concern, never persisted.
func IsUrgentForCoordinator(app *models.Application, viewerUnitCode string) bool {
	if viewerUnitCode == "" {
		return false
	}
	if IsClosed(app.Status) {
		return false
	}
	if !strings.EqualFold(app.AssignedTo, models.AssigneeUnitCoordinator) {
		return false
	}
	assigned := app.AssignedUnitCode
	if assigned == "" {
		assigned = app.UWAUnitCode
	}
	return strings.EqualFold(assigned, viewerUnitCode)
}

// Supersede marks old as replaced by a resubmission and links the version
// chain in both directions. Calling it twice with the same pair is a no-op.
func Supersede(old, resubmission *models.Application) {
	old.Status = StatusObsolete
	old.NewestVersionID = resubmission.ID
	resubmission.PreviousID = old.ID
}

// LessUrgentFirst is the dashboard ordering: records urgent for the viewing
// coordinator sort before the rest; within each group newest submissions come
// first.
func LessUrgentFirst(a, b *models.Application, viewerUnitCode string) bool {
	au := IsUrgentForCoordinator(a, viewerUnitCode)
	bu := IsUrgentForCoordinator(b, viewerUnitCode)
	if au != bu {
		return au
	}
	return a.SubmittedAt.After(b.SubmittedAt)
}

// SortForDashboard orders applications for the review dashboard using
// LessUrgentFirst.
func SortForDashboard(apps []*models.Application, viewerUnitCode string) {
	sort.SliceStable(apps, func(i, j int) bool {
		return LessUrgentFirst(apps[i], apps[j], viewerUnitCode)
	})
}

// VisibleByDefault reports whether a status is shown when no explicit status
// filter is supplied. Closed and obsolete records are hidden unless asked for.
func VisibleByDefault(status string) bool {
	return status == StatusPending || status == StatusMoreInfo
}
