package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/websense/RPL/models"
	"github.com/websense/RPL/scraper"
	"github.com/websense/RPL/utils"
	"github.com/websense/RPL/websocket"
	"github.com/websense/RPL/workflow"
)

// submittedUnit mirrors the form's external-unit JSON shape.
type submittedUnit struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Level         string `json:"level"`
	ContactHours  string `json:"contactHours"`
	Outcomes      string `json:"outcomes"`
	Assessments   string `json:"assessments"`
	CreditPoints  string `json:"creditPoints"`
	OutlineLink   string `json:"outlineLink"`
	YearCompleted string `json:"yearCompleted"`
}

// requestedUnit is one UWA unit comparison: the target unit plus one or more
// external equivalents. Institution names arrive in a parallel array.
type requestedUnit struct {
	UWA struct {
		Code string `json:"code"`
	} `json:"uwa"`
	OtherInstitutions []string        `json:"otherInstitutions"`
	Others            []submittedUnit `json:"others"`
	Attachments       []string        `json:"attachments"`
}

type submitPayload struct {
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	EmailAddress   string          `json:"emailAddress"`
	RequestedUnits []requestedUnit `json:"requestedUnits"`
	OriginalIDs    []interface{}   `json:"originalIds"`
}

// buildIncomingUnits pairs each submitted unit with its institution name
// (stored separately by the form) and produces storable documents in the
// applicant's listed order.
func buildIncomingUnits(institutions []string, units []submittedUnit, now time.Time) []models.IncomingUnit {
	out := make([]models.IncomingUnit, 0, len(units))
	for i, unit := range units {
		university := ""
		if i < len(institutions) {
			university = institutions[i]
		}
		out = append(out, models.IncomingUnit{
			UniversityName:        university,
			UnitCode:              unit.Code,
			UnitName:              unit.Name,
			Level:                 unit.Level,
			ContactHours:          unit.ContactHours,
			LearningOutcomes:      unit.Outcomes,
			IndicativeAssessments: unit.Assessments,
			CreditPoints:          unit.CreditPoints,
			OutlineLink:           unit.OutlineLink,
			CompletedYear:         unit.YearCompleted,
			SubmittedAt:           now,
		})
	}
	return out
}

// unitPairKey identifies an external unit for equivalence comparison.
type unitPairKey struct {
	Code       string
	University string
}

func incomingKeySet(units []models.IncomingUnit) map[unitPairKey]bool {
	set := make(map[unitPairKey]bool, len(units))
	for _, u := range units {
		set[unitPairKey{Code: u.UnitCode, University: u.UniversityName}] = true
	}
	return set
}

func sameKeySet(a, b map[unitPairKey]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// SubmitApplication serves POST /api/submit. Each requested UWA unit becomes
// its own application record; resubmissions supersede the records they
// replace.
func SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var payload submitPayload
	if err := utils.ParseJSON(r, &payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "missing json body")
		return
	}
	if len(payload.RequestedUnits) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "no requested units")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	submittedIDs := make([]primitive.ObjectID, 0, len(payload.RequestedUnits))

	for _, req := range payload.RequestedUnits {
		uwaCode, err := scraper.NormalizeCode(req.UWA.Code)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		now := time.Now().UTC()
		incoming := buildIncomingUnits(req.OtherInstitutions, req.Others, now)
		if len(incoming) == 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "no incoming units for "+uwaCode)
			return
		}

		unitIDs := make([]primitive.ObjectID, 0, len(incoming))
		externalCodes := make([]string, 0, len(incoming))
		for _, unit := range incoming {
			res, err := incomingUnitCollection.InsertOne(ctx, unit)
			if err != nil {
				log.Printf("SubmitApplication: incoming unit insert failed: %v", err)
				utils.RespondWithError(w, http.StatusInternalServerError, "internal")
				return
			}
			unitIDs = append(unitIDs, res.InsertedID.(primitive.ObjectID))
			externalCodes = append(externalCodes, unit.UnitCode)
		}

		app := models.Application{
			FirstName:     payload.FirstName,
			LastName:      payload.LastName,
			Email:         payload.EmailAddress,
			UWAUnitCode:   uwaCode,
			Status:        workflow.StatusPending,
			SubmittedAt:   now,
			ProposedUnits: unitIDs,
			Comments:      []models.Comment{},
		}
		if len(req.Attachments) > 0 {
			app.SupportingDocs = req.Attachments
		}

		// A previously closed application with the identical incoming unit
		// set decides this one automatically.
		if status, found := priorOutcome(ctx, uwaCode, incomingKeySet(incoming)); found {
			app.Status = status
		}

		res, err := applicationCollection.InsertOne(ctx, app)
		if err != nil {
			log.Printf("SubmitApplication: application insert failed: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "internal")
			return
		}
		appID := res.InsertedID.(primitive.ObjectID)
		submittedIDs = append(submittedIDs, appID)

		codesStr := strings.Join(externalCodes, ", ")
		notifier.SubmissionReceived(payload.EmailAddress, uwaCode, codesStr, appID.Hex())
		notifier.NewRequestPending(uwaCode)
		if workflow.IsClosed(app.Status) {
			notifier.AutomaticOutcome(payload.EmailAddress, uwaCode, codesStr, app.Status)
		}

		websocket.SendApplicationSubmitted(uwaCode, appID.Hex())
	}

	// A resubmission supersedes the records it revises, pairwise by position.
	for i, rawID := range payload.OriginalIDs {
		if i >= len(submittedIDs) {
			break
		}
		originalID, err := models.NormalizeID(rawID)
		if err != nil {
			log.Printf("SubmitApplication: bad original id %v: %v", rawID, err)
			continue
		}
		if err := supersedeApplication(ctx, originalID, submittedIDs[i]); err != nil {
			log.Printf("SubmitApplication: supersede %s failed: %v", originalID.Hex(), err)
		}
	}

	ids := make([]string, len(submittedIDs))
	for i, id := range submittedIDs {
		ids[i] = id.Hex()
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Form submitted",
		"ids":     ids,
	})
}

// priorOutcome looks for a closed application on the same UWA unit whose
// proposed unit set matches exactly.
func priorOutcome(ctx context.Context, uwaCode string, incoming map[unitPairKey]bool) (string, bool) {
	cursor, err := applicationCollection.Find(ctx, bson.M{
		"uwaUnitCode": uwaCode,
		"status":      bson.M{"$in": []string{workflow.StatusApprove, workflow.StatusReject}},
	})
	if err != nil {
		log.Printf("priorOutcome: query failed: %v", err)
		return "", false
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var candidate models.Application
		if err := cursor.Decode(&candidate); err != nil {
			continue
		}

		unitCursor, err := incomingUnitCollection.Find(ctx, bson.M{"_id": bson.M{"$in": candidate.ProposedUnits}})
		if err != nil {
			continue
		}
		var units []models.IncomingUnit
		if err := unitCursor.All(ctx, &units); err != nil {
			continue
		}

		if sameKeySet(incomingKeySet(units), incoming) {
			return candidate.Status, true
		}
	}
	return "", false
}

// supersedeApplication applies the workflow link between an old record and
// its resubmission and persists both sides plus the revision entry.
func supersedeApplication(ctx context.Context, originalID, revisedID primitive.ObjectID) error {
	var old, revised models.Application
	if err := applicationCollection.FindOne(ctx, bson.M{"_id": originalID}).Decode(&old); err != nil {
		return err
	}
	if err := applicationCollection.FindOne(ctx, bson.M{"_id": revisedID}).Decode(&revised); err != nil {
		return err
	}

	workflow.Supersede(&old, &revised)

	if _, err := applicationCollection.UpdateOne(ctx, bson.M{"_id": old.ID}, bson.M{"$set": bson.M{
		"status":          old.Status,
		"newestVersionId": old.NewestVersionID,
	}}); err != nil {
		return err
	}
	if _, err := applicationCollection.UpdateOne(ctx, bson.M{"_id": revised.ID}, bson.M{"$set": bson.M{
		"previousId": revised.PreviousID,
	}}); err != nil {
		return err
	}

	// Idempotent: one revision link per (original, revised) pair.
	count, err := revisionCollection.CountDocuments(ctx, bson.M{"originalId": originalID, "revisedId": revisedID})
	if err == nil && count == 0 {
		_, err = revisionCollection.InsertOne(ctx, models.Revision{OriginalID: originalID, RevisedID: revisedID})
	}
	return err
}
