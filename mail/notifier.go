package mail

import (
	"fmt"
	"log"
	"strings"

	"github.com/websense/RPL/workflow"
)

// Notifier composes the workflow's notification messages. Coordinator
// addresses follow the <unitcode>_coordinator@uwa.edu.au convention.
type Notifier struct {
	svc Service
}

func NewNotifier(svc Service) *Notifier {
	return &Notifier{svc: svc}
}

func CoordinatorAddress(unitCode string) string {
	return strings.ToUpper(unitCode) + "_coordinator@uwa.edu.au"
}

func (n *Notifier) send(msg Message) {
	if err := n.svc.Send(msg); err != nil {
		log.Printf("notification email failed: %v", err)
	}
}

// SubmissionReceived thanks the applicant and gives them their application id.
func (n *Notifier) SubmissionReceived(applicantEmail, uwaUnitCode, incomingCodes, applicationID string) {
	n.send(Message{
		Subject: "Thanks for submitting your unit equivalence request!",
		To:      []string{applicantEmail},
		Body: fmt.Sprintf("Thanks for submitting your request for unit(s) %s to be equivalent to UWA unit %s.\n"+
			"Your application number is %s.\n"+
			"You will be contacted with the result of your application, or if more information is required.\nThanks!",
			incomingCodes, uwaUnitCode, applicationID),
	})
}

// NewRequestPending alerts the unit coordinator to a fresh submission.
func (n *Notifier) NewRequestPending(uwaUnitCode string) {
	n.send(Message{
		Subject: "New RPL request pending for " + uwaUnitCode + "!",
		To:      []string{CoordinatorAddress(uwaUnitCode)},
		Body: "A unit equivalence request for your unit has been made using the RPL app!\n" +
			"Please review it as soon as possible.",
	})
}

// AutomaticOutcome tells the applicant their request matched past data.
func (n *Notifier) AutomaticOutcome(applicantEmail, uwaUnitCode, incomingCodes, status string) {
	action := "rejected"
	if status == workflow.StatusApprove {
		action = "approved"
	}
	n.send(Message{
		Subject: "Automatic unit equivalence outcome",
		To:      []string{applicantEmail},
		Body: fmt.Sprintf("Your request for unit(s) %s to be equivalent to UWA unit %s has been automatically %s based on past data.",
			incomingCodes, uwaUnitCode, action),
	})
}

// ReviewUpdate tells the applicant about a new comment and the current status,
// with special wording when further information was requested.
func (n *Notifier) ReviewUpdate(applicantEmail, status, commentText string) {
	var body string
	if status == workflow.StatusMoreInfo {
		body = fmt.Sprintf("Additional information has been requested for your application! Here is the request:\n\n%s\n\n"+
			"Please submit a new form using the .json file provided upon submission of your most recently updated form to add this information. Thanks!",
			commentText)
	} else {
		body = fmt.Sprintf("Your application is being reviewed - the current status is %s. "+
			"Here is the most recent comment made on your application:\n\n%s\n\n"+
			"If your application is reviewed further, you will receive another email. Thanks!",
			status, commentText)
	}
	n.send(Message{
		Subject: "Update on your unit equivalence application",
		To:      []string{applicantEmail},
		Body:    body,
	})
}

// CoordinatorReviewed mirrors every review action to the unit coordinator.
func (n *Notifier) CoordinatorReviewed(uwaUnitCode, applicationID, status, commentText string) {
	n.send(Message{
		Subject: "An application for one of your units has been reviewed!",
		To:      []string{CoordinatorAddress(uwaUnitCode)},
		Body: fmt.Sprintf("Here is the latest review for application %s:\n\n"+
			"Current Status: %s, New Comment: %s\n\nFor more details, see the RPL website. Thanks!",
			applicationID, status, commentText),
	})
}

// CoordinatorAssigned notifies explicit recipients of a UC hand-off.
func (n *Notifier) CoordinatorAssigned(recipients []string, applicationID, uwaUnitCode string) {
	if len(recipients) == 0 {
		return
	}
	n.send(Message{
		Subject: "RPL application requires Unit Coordinator review",
		To:      recipients,
		Body:    fmt.Sprintf("Application %s requires UC review for UWA unit %s.", applicationID, uwaUnitCode),
	})
}
