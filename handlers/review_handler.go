package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/websense/RPL/models"
	"github.com/websense/RPL/utils"
	"github.com/websense/RPL/websocket"
	"github.com/websense/RPL/workflow"
)

// PostComment serves POST /api/application/{id}/comments. The comment type
// drives the status transition; see the workflow package for the rules.
func PostComment(w http.ResponseWriter, r *http.Request) {
	appID, err := models.NormalizeID(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	var body struct {
		Author string `json:"author"`
		Text   string `json:"text"`
		Type   string `json:"type"`
	}
	if err := utils.ParseJSON(r, &body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "missing json body")
		return
	}
	if body.Type == "" {
		body.Type = workflow.TypeComment
	}
	body.Type = normalizeCommentType(body.Type)
	if body.Author == "" {
		if username, ok := r.Context().Value("username").(string); ok {
			body.Author = username
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var app models.Application
	if err := applicationCollection.FindOne(ctx, bson.M{"_id": appID}).Decode(&app); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "application not found")
			return
		}
		log.Printf("PostComment: lookup failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "internal")
		return
	}

	oldStatus := app.Status
	comment, err := workflow.RecordComment(&app, body.Author, body.Text, body.Type)
	if err != nil {
		var verr *workflow.ValidationError
		if errors.As(err, &verr) {
			utils.RespondWithError(w, http.StatusBadRequest, verr.Msg)
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "internal")
		return
	}

	if _, err := applicationCollection.UpdateOne(ctx, bson.M{"_id": app.ID}, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"status": app.Status, "updatedAt": app.UpdatedAt},
	}); err != nil {
		log.Printf("PostComment: update failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to record comment")
		return
	}
	if _, err := commentCollection.InsertOne(ctx, comment); err != nil {
		log.Printf("PostComment: comment insert failed: %v", err)
	}

	if app.Email != "" {
		notifier.ReviewUpdate(app.Email, app.Status, comment.Text)
	}
	notifier.CoordinatorReviewed(app.UWAUnitCode, app.ID.Hex(), app.Status, comment.Text)
	websocket.SendCommentAdded(app.UWAUnitCode, app.ID.Hex(), comment.Author, app.Status)
	if app.Status != oldStatus {
		websocket.SendStatusChanged(app.UWAUnitCode, app.ID.Hex(), oldStatus, app.Status)
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"comment": comment,
		"status":  app.Status,
	})
}

// normalizeCommentType title-cases well-known types so "approved" and
// "Approved" behave identically. Unknown types pass through untouched.
func normalizeCommentType(ctype string) string {
	switch strings.ToLower(strings.TrimSpace(ctype)) {
	case strings.ToLower(workflow.TypeComment):
		return workflow.TypeComment
	case strings.ToLower(workflow.TypeApproved):
		return workflow.TypeApproved
	case strings.ToLower(workflow.TypeRejected):
		return workflow.TypeRejected
	}
	return strings.TrimSpace(ctype)
}

// AssignUC serves POST /api/application/{id}/assign-uc. Student services hands
// a record to the unit coordinator; coordinators cannot reassign.
func AssignUC(w http.ResponseWriter, r *http.Request) {
	username, _ := r.Context().Value("username").(string)
	if !strings.EqualFold(username, models.AdminUsername) {
		utils.RespondWithError(w, http.StatusForbidden, "only student services can assign reviews")
		return
	}

	appID, err := models.NormalizeID(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	// Optional body naming extra notification recipients.
	var body struct {
		Recipients []string `json:"recipients"`
	}
	_ = utils.ParseJSON(r, &body)

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var app models.Application
	if err := applicationCollection.FindOne(ctx, bson.M{"_id": appID}).Decode(&app); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "application not found")
			return
		}
		log.Printf("AssignUC: lookup failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "internal")
		return
	}

	comment := workflow.AssignToUnitCoordinator(&app, username)

	if _, err := applicationCollection.UpdateOne(ctx, bson.M{"_id": app.ID}, bson.M{
		"$push": bson.M{"comments": comment},
		"$set": bson.M{
			"status":           app.Status,
			"assignedTo":       app.AssignedTo,
			"assignedUnitCode": app.AssignedUnitCode,
			"updatedAt":        app.UpdatedAt,
		},
	}); err != nil {
		log.Printf("AssignUC: update failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to assign")
		return
	}
	if _, err := commentCollection.InsertOne(ctx, comment); err != nil {
		log.Printf("AssignUC: comment insert failed: %v", err)
	}

	notifier.NewRequestPending(app.UWAUnitCode)
	notifier.CoordinatorAssigned(body.Recipients, app.ID.Hex(), app.UWAUnitCode)
	websocket.SendAssignedUC(app.UWAUnitCode, app.ID.Hex(), username)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"status": app.Status,
	})
}
