package handlers

import (
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"

	"github.com/websense/RPL/utils"
)

const maxUploadBytes = 16 << 20 // 16 MiB, matching the form's limit

// UploadSupporting serves POST /api/upload: stores one multipart file in
// GridFS and returns its id for later linking to an application.
func UploadSupporting(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	fileID, err := fileBucket.UploadFromStream(header.Filename, file)
	if err != nil {
		log.Printf("UploadSupporting: gridfs upload failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"fileId":   fileID.Hex(),
		"filename": header.Filename,
	})
}

// DownloadFile serves GET /api/files/{id}: streams a stored supporting
// document back with a content type guessed from its filename.
func DownloadFile(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	stream, err := fileBucket.OpenDownloadStream(oid)
	if err != nil {
		if err == gridfs.ErrFileNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "file not found")
			return
		}
		log.Printf("DownloadFile: open failed for %s: %v", oid.Hex(), err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to open file")
		return
	}
	defer stream.Close()

	filename := stream.GetFile().Name
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)

	if _, err := io.Copy(w, stream); err != nil {
		log.Printf("DownloadFile: stream failed for %s: %v", oid.Hex(), err)
	}
}
