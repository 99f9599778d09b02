package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websense/RPL/workflow"
)

func TestCoordinatorAddress(t *testing.T) {
	assert.Equal(t, "CITS1401_coordinator@uwa.edu.au", CoordinatorAddress("cits1401"))
	assert.Equal(t, "PHYS2001_coordinator@uwa.edu.au", CoordinatorAddress("PHYS2001"))
}

func TestSubmissionNotifications(t *testing.T) {
	svc := NewConsoleService("rpl@uwa.edu.au")
	n := NewNotifier(svc)

	n.SubmissionReceived("student@example.com", "CITS1401", "COMP101, COMP102", "abc123")
	n.NewRequestPending("CITS1401")

	sent := svc.Sent()
	require.Len(t, sent, 2)

	assert.Equal(t, []string{"student@example.com"}, sent[0].To)
	assert.Contains(t, sent[0].Body, "abc123")
	assert.Contains(t, sent[0].Body, "COMP101, COMP102")

	assert.Equal(t, []string{"CITS1401_coordinator@uwa.edu.au"}, sent[1].To)
	assert.Contains(t, sent[1].Subject, "CITS1401")
}

func TestAutomaticOutcomeWording(t *testing.T) {
	svc := NewConsoleService("rpl@uwa.edu.au")
	n := NewNotifier(svc)

	n.AutomaticOutcome("student@example.com", "CITS1401", "COMP101", workflow.StatusApprove)
	n.AutomaticOutcome("student@example.com", "CITS1401", "COMP101", workflow.StatusReject)

	sent := svc.Sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Body, "automatically approved")
	assert.Contains(t, sent[1].Body, "automatically rejected")
}

func TestReviewUpdateWording(t *testing.T) {
	svc := NewConsoleService("rpl@uwa.edu.au")
	n := NewNotifier(svc)

	n.ReviewUpdate("student@example.com", workflow.StatusMoreInfo, "please attach the unit outline")
	n.ReviewUpdate("student@example.com", workflow.StatusApprove, "all good")

	sent := svc.Sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Body, "Additional information has been requested")
	assert.Contains(t, sent[0].Body, "please attach the unit outline")
	assert.Contains(t, sent[1].Body, workflow.StatusApprove)
}

func TestCoordinatorAssignedSkipsEmptyRecipients(t *testing.T) {
	svc := NewConsoleService("rpl@uwa.edu.au")
	n := NewNotifier(svc)

	n.CoordinatorAssigned(nil, "abc123", "CITS1401")
	assert.Empty(t, svc.Sent())

	n.CoordinatorAssigned([]string{"uc@uwa.edu.au"}, "abc123", "CITS1401")
	require.Len(t, svc.Sent(), 1)
}
