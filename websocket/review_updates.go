package websocket

import (
	"encoding/json"
	"log"
	"time"
)

// ReviewUpdate is a real-time review feed event
type ReviewUpdate struct {
	Type          string      `json:"type"` // APPLICATION_SUBMITTED, COMMENT_ADDED, STATUS_CHANGED, ASSIGNED_UC
	ApplicationID string      `json:"applicationId,omitempty"`
	UnitCode      string      `json:"unitCode,omitempty"`
	Status        string      `json:"status,omitempty"`
	Data          interface{} `json:"data,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
	Author        string      `json:"author,omitempty"`
}

// BroadcastReviewUpdate sends an update to every dashboard watching the unit
// (plus student-services clients, which watch everything).
func BroadcastReviewUpdate(unitCode string, update ReviewUpdate) {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now().UTC()
	}
	update.UnitCode = unitCode

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Failed to marshal review update: %v", err)
		return
	}
	hub.broadcast <- broadcastMessage{unitCode: unitCode, message: data}
}

// SendApplicationSubmitted announces a new application for a unit.
func SendApplicationSubmitted(unitCode, applicationID string) {
	BroadcastReviewUpdate(unitCode, ReviewUpdate{
		Type:          "APPLICATION_SUBMITTED",
		ApplicationID: applicationID,
	})
}

// SendCommentAdded announces a new review comment and the status it produced.
func SendCommentAdded(unitCode, applicationID, author, status string) {
	BroadcastReviewUpdate(unitCode, ReviewUpdate{
		Type:          "COMMENT_ADDED",
		ApplicationID: applicationID,
		Author:        author,
		Status:        status,
	})
}

// SendStatusChanged announces a status transition.
func SendStatusChanged(unitCode, applicationID, oldStatus, newStatus string) {
	BroadcastReviewUpdate(unitCode, ReviewUpdate{
		Type:          "STATUS_CHANGED",
		ApplicationID: applicationID,
		Status:        newStatus,
		Data: map[string]interface{}{
			"oldStatus": oldStatus,
			"newStatus": newStatus,
		},
	})
}

// SendAssignedUC announces a hand-off to the unit coordinator.
func SendAssignedUC(unitCode, applicationID, actor string) {
	BroadcastReviewUpdate(unitCode, ReviewUpdate{
		Type:          "ASSIGNED_UC",
		ApplicationID: applicationID,
		Author:        actor,
		Status:        "Pending",
	})
}
