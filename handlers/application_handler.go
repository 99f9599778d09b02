package handlers

import (
	"context"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/websense/RPL/models"
	"github.com/websense/RPL/scraper"
	"github.com/websense/RPL/utils"
	"github.com/websense/RPL/workflow"
)

// dashboardRow is one listing entry: the application joined with its incoming
// units and the most recent comment.
type dashboardRow struct {
	models.Application     `bson:",inline"`
	IncomingUnits          []models.IncomingUnit `bson:"incomingUnits" json:"incomingUnits"`
	FirstProposedUnit      *models.IncomingUnit  `bson:"firstProposedUnit,omitempty" json:"firstProposedUnit,omitempty"`
	IncomingSummary        string                `bson:"incomingSummary" json:"incomingSummary"`
	LatestCommentAuthor    string                `bson:"latestCommentAuthor" json:"latestCommentAuthor"`
	LatestCommentText      string                `bson:"latestCommentText" json:"latestCommentText"`
	LatestCommentTimestamp time.Time             `bson:"latestCommentTimestamp" json:"latestCommentTimestamp"`
}

// ListApplications serves GET /api/db: the review dashboard listing.
// Query parameters: view_unitcode scopes to one coordinator's unit, status
// filters exactly, _sort overrides the ordering ("field" or "-field"), and
// any other parameter becomes a case-insensitive contains-filter on that
// field. Without an explicit status filter only open records are returned.
func ListApplications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	query := r.URL.Query()
	filter := bson.M{}

	viewUnitCode := query.Get("view_unitcode")
	if viewUnitCode != "" {
		if normalized, err := scraper.NormalizeCode(viewUnitCode); err == nil {
			viewUnitCode = normalized
			filter["uwaUnitCode"] = bson.M{"$regex": "^" + normalized + "$", "$options": "i"}
		}
	}

	if status := query.Get("status"); status != "" {
		filter["status"] = status
	} else {
		filter["status"] = bson.M{"$in": []string{workflow.StatusPending, workflow.StatusMoreInfo}}
	}

	for key, values := range query {
		if key == "_sort" || key == "view_unitcode" || key == "status" || len(values) == 0 {
			continue
		}
		filter[key] = bson.M{"$regex": ".*" + values[0] + ".*", "$options": "i"}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "incoming_units",
			"localField":   "proposedUnits",
			"foreignField": "_id",
			"as":           "incomingUnits",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"firstProposedUnit": bson.M{"$arrayElemAt": bson.A{"$incomingUnits", 0}},
		}}},
		// One display string covering every incoming unit, so the dashboard
		// table can stay dumb.
		{{Key: "$addFields", Value: bson.M{
			"incomingSummary": bson.M{
				"$reduce": bson.M{
					"input": bson.M{
						"$map": bson.M{
							"input": "$incomingUnits",
							"as":    "unit",
							"in": bson.M{"$concat": bson.A{
								"$$unit.universityName", ": ", "$$unit.unitName", " (", "$$unit.unitCode", ")",
							}},
						},
					},
					"initialValue": "",
					"in": bson.M{"$concat": bson.A{
						bson.M{"$cond": bson.A{
							bson.M{"$eq": bson.A{"$$value", ""}},
							"",
							bson.M{"$concat": bson.A{"$$value", " and "}},
						}},
						"$$this",
					}},
				},
			},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "comments",
			"let":  bson.M{"appId": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$applicationId", "$$appId"}}}},
				bson.M{"$sort": bson.M{"timestamp": -1}},
				bson.M{"$limit": 1},
				bson.M{"$project": bson.M{"_id": 0, "author": 1, "timestamp": 1, "text": 1}},
			},
			"as": "latestComment",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$latestComment",
			"preserveNullAndEmptyArrays": true,
		}}},
		{{Key: "$addFields", Value: bson.M{
			"latestCommentAuthor":    bson.M{"$ifNull": bson.A{"$latestComment.author", "N/A"}},
			"latestCommentTimestamp": bson.M{"$ifNull": bson.A{"$latestComment.timestamp", "$submittedAt"}},
			"latestCommentText":      bson.M{"$ifNull": bson.A{"$latestComment.text", "N/A"}},
		}}},
		{{Key: "$project", Value: bson.M{"latestComment": 0}}},
	}

	if sortParam := query.Get("_sort"); sortParam != "" {
		field, direction := sortParam, 1
		if strings.HasPrefix(sortParam, "-") {
			field, direction = sortParam[1:], -1
		}
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: field, Value: direction}}}})
	}

	cursor, err := applicationCollection.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("ListApplications: aggregation failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch applications")
		return
	}
	defer cursor.Close(ctx)

	rows := []dashboardRow{}
	if err := cursor.All(ctx, &rows); err != nil {
		log.Printf("ListApplications: decode failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode applications")
		return
	}

	// Default ordering is the workflow's: urgent for this coordinator first,
	// then newest. An explicit _sort was already applied by Mongo.
	if query.Get("_sort") == "" {
		sort.SliceStable(rows, func(i, j int) bool {
			return workflow.LessUrgentFirst(&rows[i].Application, &rows[j].Application, viewUnitCode)
		})
	}

	utils.RespondWithJSON(w, http.StatusOK, rows)
}

// reviewUnit is the normalized unit shape the review page consumes.
type reviewUnit struct {
	Code                  string       `json:"code"`
	Name                  string       `json:"name"`
	Level                 string       `json:"level"`
	Outcomes              string       `json:"outcomes"`
	IndicativeAssessments string       `json:"indicativeAssessments"`
	CreditPoints          string       `json:"creditPoints"`
	ContactHours          string       `json:"contactHours"`
	Year                  string       `json:"year"`
	University            string       `json:"university"`
	Outline               string       `json:"outline"`
	Incoming              []reviewUnit `json:"incoming,omitempty"`
}

type supportingDoc struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// GetApplication serves GET /api/application/{id}: one record in the shape
// the review page renders, with units, version links and the comment history
// across every prior version.
func GetApplication(w http.ResponseWriter, r *http.Request) {
	appID, err := models.NormalizeID(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var app models.Application
	if err := applicationCollection.FindOne(ctx, bson.M{"_id": appID}).Decode(&app); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "application not found")
			return
		}
		log.Printf("GetApplication: lookup failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "internal error")
		return
	}

	incoming := loadIncomingUnits(ctx, app.ProposedUnits)

	uwaUnit := uwaUnitView(ctx, app.UWAUnitCode)
	uwaUnit.Incoming = incoming

	comments := commentsAcrossVersions(ctx, appID)

	previousID := ""
	if !app.PreviousID.IsZero() {
		previousID = app.PreviousID.Hex()
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"_id":    app.ID.Hex(),
		"status": app.Status,
		"personal": map[string]string{
			"firstName": app.FirstName,
			"surname":   app.LastName,
			"email":     app.Email,
		},
		"units":          []reviewUnit{uwaUnit},
		"incomingUnits":  incoming,
		"comments":       comments,
		"timestamp":      app.SubmittedAt,
		"previousId":     orNil(previousID),
		"newestVersion":  mostRecentVersion(ctx, appID).Hex(),
		"supportingDocs": normalizeSupportingDocs(ctx, app.SupportingDocs),
	})
}

func orNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// loadIncomingUnits fetches the proposed units and restores the applicant's
// listed order (a $in query does not preserve it).
func loadIncomingUnits(ctx context.Context, ids []primitive.ObjectID) []reviewUnit {
	if len(ids) == 0 {
		return []reviewUnit{}
	}

	cursor, err := incomingUnitCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		log.Printf("loadIncomingUnits: query failed: %v", err)
		return []reviewUnit{}
	}
	var units []models.IncomingUnit
	if err := cursor.All(ctx, &units); err != nil {
		log.Printf("loadIncomingUnits: decode failed: %v", err)
		return []reviewUnit{}
	}

	return orderToProposed(ids, units)
}

// orderToProposed maps fetched units back into the applicant's listed order.
// Ids with no matching document are skipped.
func orderToProposed(ids []primitive.ObjectID, units []models.IncomingUnit) []reviewUnit {
	byID := make(map[primitive.ObjectID]models.IncomingUnit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}

	out := make([]reviewUnit, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, reviewUnit{
			Code:                  u.UnitCode,
			Name:                  u.UnitName,
			Level:                 u.Level,
			Outcomes:              u.LearningOutcomes,
			IndicativeAssessments: u.IndicativeAssessments,
			CreditPoints:          u.CreditPoints,
			ContactHours:          u.ContactHours,
			Year:                  u.CompletedYear,
			University:            u.UniversityName,
			Outline:               u.OutlineLink,
		})
	}
	return out
}

// uwaUnitView fetches live handbook details for the UWA unit, falling back to
// a minimal record when the handbook is unreachable.
func uwaUnitView(ctx context.Context, uwaCode string) reviewUnit {
	unit := reviewUnit{
		Code:       uwaCode,
		University: "UWA",
	}
	if uwaCode == "" {
		return unit
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	meta, err := unitFetcher.Fetch(fetchCtx, uwaCode)
	if err != nil {
		log.Printf("uwaUnitView: handbook fetch failed for %s: %v", uwaCode, err)
		unit.Outline = unitFetcher.LookupURL(uwaCode)
		return unit
	}

	unit.Code = meta.Code
	unit.Name = meta.UnitName
	unit.Level = meta.UnitLevel
	unit.Outcomes = meta.Outcomes
	unit.IndicativeAssessments = meta.Assessments
	unit.CreditPoints = meta.CreditPoints
	unit.ContactHours = meta.ContactHours
	unit.Outline = meta.OutlineLink
	return unit
}

// previousVersions returns this id plus every earlier version, newest first.
func previousVersions(ctx context.Context, appID primitive.ObjectID) []primitive.ObjectID {
	chain := []primitive.ObjectID{appID}
	current := appID
	for {
		var rev models.Revision
		err := revisionCollection.FindOne(ctx, bson.M{"revisedId": current}).Decode(&rev)
		if err != nil {
			break
		}
		current = rev.OriginalID
		chain = append(chain, current)
	}
	return chain
}

// mostRecentVersion walks revision links forward to the newest resubmission.
func mostRecentVersion(ctx context.Context, appID primitive.ObjectID) primitive.ObjectID {
	current := appID
	for {
		var rev models.Revision
		err := revisionCollection.FindOne(ctx, bson.M{"originalId": current}).Decode(&rev)
		if err != nil {
			return current
		}
		current = rev.RevisedID
	}
}

// commentsAcrossVersions collects the review history of this application and
// all its prior versions, oldest first.
func commentsAcrossVersions(ctx context.Context, appID primitive.ObjectID) []models.Comment {
	ids := previousVersions(ctx, appID)

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := commentCollection.Find(ctx, bson.M{"applicationId": bson.M{"$in": ids}}, opts)
	if err != nil {
		log.Printf("commentsAcrossVersions: query failed: %v", err)
		return []models.Comment{}
	}
	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		log.Printf("commentsAcrossVersions: decode failed: %v", err)
		return []models.Comment{}
	}
	return comments
}

// normalizeSupportingDocs turns stored references (URLs or GridFS ids) into
// {name, url} pairs the UI can link directly.
func normalizeSupportingDocs(ctx context.Context, refs []string) []supportingDoc {
	out := []supportingDoc{}
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		lower := strings.ToLower(ref)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			name := ref
			if idx := strings.LastIndex(ref, "/"); idx >= 0 && idx < len(ref)-1 {
				name = ref[idx+1:]
			}
			out = append(out, supportingDoc{Name: name, URL: ref})
			continue
		}

		oid, err := primitive.ObjectIDFromHex(ref)
		if err != nil {
			// Plain string fallback; not resolvable to a link.
			out = append(out, supportingDoc{Name: ref, URL: ""})
			continue
		}
		out = append(out, supportingDoc{
			Name: gridFSFilename(ctx, oid),
			URL:  "/api/files/" + oid.Hex(),
		})
	}
	return out
}

func gridFSFilename(ctx context.Context, oid primitive.ObjectID) string {
	var file struct {
		Filename string `bson:"filename"`
	}
	err := fileBucket.GetFilesCollection().FindOne(ctx, bson.M{"_id": oid}).Decode(&file)
	if err != nil || file.Filename == "" {
		return oid.Hex()
	}
	return file.Filename
}

// UnlinkSupportingDoc serves POST /api/application/{id}/unlink-supporting:
// removes a file reference from the record without deleting the stored file.
func UnlinkSupportingDoc(w http.ResponseWriter, r *http.Request) {
	appID, err := models.NormalizeID(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	var body struct {
		FileID     string `json:"fileId"`
		IncomingID string `json:"incomingId"`
	}
	if err := utils.ParseJSON(r, &body); err != nil || body.FileID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing fileId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := applicationCollection.UpdateOne(ctx,
		bson.M{"_id": appID},
		bson.M{"$pull": bson.M{"supportingDocs": body.FileID}},
	)
	if err != nil {
		log.Printf("UnlinkSupportingDoc: update failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "internal")
		return
	}

	if body.IncomingID != "" {
		if incomingID, idErr := models.NormalizeID(body.IncomingID); idErr == nil {
			_, _ = incomingUnitCollection.UpdateOne(ctx,
				bson.M{"_id": incomingID},
				bson.M{"$pull": bson.M{"supportingDocs": body.FileID}},
			)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok":            true,
		"modifiedCount": res.ModifiedCount,
	})
}
